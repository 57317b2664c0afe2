package journal

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// Marshal serializes the whole journal as an XML document.
// pretty indents nested elements; character data is never altered.
func Marshal(j *Journal, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	if pretty {
		enc.Indent("", "  ")
	}
	if err := enc.Encode(j); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Unmarshal parses a document produced by Marshal
func Unmarshal(data []byte) (*Journal, error) {
	var j Journal
	if err := xml.Unmarshal(data, &j); err != nil {
		return nil, err
	}
	if j.Log == nil {
		j.Log = Entries{}
	}
	return &j, nil
}

// MarshalXML writes the entries as children of start
func (es Entries) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := es.encode(e); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

func (es Entries) encode(e *xml.Encoder) error {
	for _, entry := range es {
		start := xml.StartElement{Name: xml.Name{Local: entry.elementName()}}
		if err := e.EncodeElement(entry, start); err != nil {
			return err
		}
	}
	return nil
}

// UnmarshalXML reads log children in document order
func (es *Entries) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	entries, err := decodeEntries(d, true)
	if err != nil {
		return err
	}
	*es = entries
	return nil
}

// decodeEntries consumes child elements up to the enclosing end tag.
// Unknown elements are skipped; phases are only accepted at log level.
func decodeEntries(d *xml.Decoder, allowPhases bool) (Entries, error) {
	entries := Entries{}
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var entry Entry
			switch t.Name.Local {
			case "message":
				entry = &Message{}
			case "test":
				entry = &Test{}
			case "metric":
				entry = &Metric{}
			case "phase":
				if allowPhases {
					entry = &Phase{}
				}
			}
			if entry == nil {
				if err := d.Skip(); err != nil {
					return nil, err
				}
				continue
			}
			if err := d.DecodeElement(entry, &t); err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		case xml.EndElement:
			return entries, nil
		}
	}
}

// MarshalXML writes the phase attributes followed by its children
func (p *Phase) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "phase"}
	start.Attr = []xml.Attr{
		{Name: xml.Name{Local: "name"}, Value: p.Name},
		{Name: xml.Name{Local: "result"}, Value: p.result},
		{Name: xml.Name{Local: "type"}, Value: p.Type},
		{Name: xml.Name{Local: "starttime"}, Value: p.StartTime},
		{Name: xml.Name{Local: "endtime"}, Value: p.endTime},
	}
	if p.score != nil {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "score"}, Value: strconv.Itoa(*p.score)})
	}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := p.Entries.encode(e); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

// UnmarshalXML reads a phase element
func (p *Phase) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "name":
			p.Name = a.Value
		case "result":
			p.result = a.Value
		case "type":
			p.Type = a.Value
		case "starttime":
			p.StartTime = a.Value
		case "endtime":
			p.endTime = a.Value
		case "score":
			n, err := strconv.Atoi(strings.TrimSpace(a.Value))
			if err != nil {
				return fmt.Errorf("phase %q: bad score %q: %w", p.Name, a.Value, err)
			}
			p.score = &n
		}
	}
	entries, err := decodeEntries(d, false)
	if err != nil {
		return err
	}
	p.Entries = entries
	return nil
}

// MarshalXML writes the metric with its value as character data
func (m *Metric) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "metric"}
	start.Attr = []xml.Attr{
		{Name: xml.Name{Local: "type"}, Value: m.Type},
		{Name: xml.Name{Local: "name"}, Value: m.Name},
		{Name: xml.Name{Local: "tolerance"}, Value: formatFloat(m.Tolerance)},
	}
	return e.EncodeElement(formatFloat(m.Value), start)
}

// UnmarshalXML reads a metric element
func (m *Metric) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var raw struct {
		Type      string `xml:"type,attr"`
		Name      string `xml:"name,attr"`
		Tolerance string `xml:"tolerance,attr"`
		Value     string `xml:",chardata"`
	}
	if err := d.DecodeElement(&raw, &start); err != nil {
		return err
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw.Value), 64)
	if err != nil {
		return fmt.Errorf("metric %q: bad value %q: %w", raw.Name, raw.Value, err)
	}
	tolerance, err := strconv.ParseFloat(strings.TrimSpace(raw.Tolerance), 64)
	if err != nil {
		return fmt.Errorf("metric %q: bad tolerance %q: %w", raw.Name, raw.Tolerance, err)
	}
	*m = Metric{Type: raw.Type, Name: raw.Name, Value: value, Tolerance: tolerance}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

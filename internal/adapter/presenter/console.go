package presenter

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

const (
	prefixWidth = 10
	ruleWidth   = 80
)

// Palette maps line prefixes to colors. It is immutable once built.
type Palette struct {
	styles map[string]lipgloss.Style
}

// NewPalette builds the standard palette for r: PASS green, FAIL red,
// INFO blue, WARNING yellow. Colors only show when r writes to a terminal.
func NewPalette(r *lipgloss.Renderer) *Palette {
	color := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}
	return &Palette{styles: map[string]lipgloss.Style{
		"PASS":    color("2"),
		"FAIL":    color("1"),
		"INFO":    color("4"),
		"WARNING": color("3"),
	}}
}

func (p *Palette) paint(prefix string) string {
	if p == nil {
		return prefix
	}
	if s, ok := p.styles[prefix]; ok {
		return s.Render(prefix)
	}
	return prefix
}

// Console writes journal style lines: ":: [  PREFIX  ] :: text"
type Console struct {
	out     io.Writer
	palette *Palette
}

// NewConsole creates a console writing to w, colored when w is a terminal
func NewConsole(w io.Writer) *Console {
	return NewConsoleWithPalette(w, NewPalette(lipgloss.NewRenderer(w)))
}

// NewConsoleWithPalette creates a console with an explicit palette
func NewConsoleWithPalette(w io.Writer, p *Palette) *Console {
	return &Console{out: w, palette: p}
}

// Log prints each line of message with the prefix tag
func (c *Console) Log(message, prefix string) {
	tag := c.tag(prefix)
	for _, line := range strings.Split(message, "\n") {
		fmt.Fprintf(c.out, ":: [%s] :: %s\n", tag, line)
	}
}

// HeadLog prints message framed by rules
func (c *Console) HeadLog(message string) {
	rule := strings.Repeat(":", ruleWidth)
	fmt.Fprintf(c.out, "\n%s\n", rule)
	c.Log(message, "LOG")
	fmt.Fprintf(c.out, "%s\n\n", rule)
}

// Purpose prints the test description wrapped at the rule width
func (c *Console) Purpose(text string) {
	c.HeadLog("Test description")
	fmt.Fprintln(c.out, wrap(text, ruleWidth))
}

// tag centers prefix in the tag field, adding color to the prefix only
func (c *Console) tag(prefix string) string {
	n := utf8.RuneCountInString(prefix)
	if n >= prefixWidth {
		return c.palette.paint(prefix)
	}
	left := (prefixWidth - n) / 2
	right := prefixWidth - n - left
	return strings.Repeat(" ", left) + c.palette.paint(prefix) + strings.Repeat(" ", right)
}

// wrap breaks text on spaces so that lines stay below width runes.
// Existing line breaks are kept.
func wrap(text string, width int) string {
	words := strings.Split(text, " ")

	var b strings.Builder
	b.WriteString(words[0])
	lineLen := tailLen(words[0], 0)
	for _, w := range words[1:] {
		first := w
		if i := strings.IndexByte(w, '\n'); i >= 0 {
			first = w[:i]
		}
		if lineLen+utf8.RuneCountInString(first) >= width {
			b.WriteByte('\n')
			lineLen = 0
		} else {
			b.WriteByte(' ')
			lineLen++
		}
		b.WriteString(w)
		lineLen = tailLen(w, lineLen)
	}
	return b.String()
}

// tailLen returns the length of the current line after appending s
func tailLen(s string, cur int) int {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return utf8.RuneCountInString(s[i+1:])
	}
	return cur + utf8.RuneCountInString(s)
}

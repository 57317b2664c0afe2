package journal

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func sampleJournal(t *testing.T) *Journal {
	t.Helper()
	j := New("42", "mytest", "bash", testNow)
	j.PkgDetails = []string{"bash-5.2.15-1.fc38.x86_64"}
	j.Release = "Fedora release 38 (Thirty Eight)"
	j.Hostname = "builder.example.com"
	j.Arch = "x86_64"
	j.HWCPU = "4 x Intel(R) Xeon(R)"
	j.HWRAM = "7821 MB"
	j.HWHDD = "49.1 GB"
	j.Plugins = []string{"rpms.sh"}
	j.Purpose = "Checks things.\n  Indented line & <markup>\n"

	j.AddMessage("orphan <message>", SeverityInfo)
	j.OpenPhase("Setup", "FAIL", testNow)
	j.AddTest("check config", ResultPass)
	_, err := j.AddMetric("low", "speed", 1.5, 0.25)
	require.NoError(t, err)
	_, err = j.ClosePhase(testNow)
	require.NoError(t, err)
	j.OpenPhase("Run", "WARN", testNow)
	j.AddMessage("  spaced  \n text ", SeverityDebug)
	j.AddTest("run script", ResultFail)
	return j
}

func TestMarshal_RoundTrip(t *testing.T) {
	j := sampleJournal(t)
	opts := []cmp.Option{
		cmpopts.IgnoreUnexported(Journal{}),
		cmp.AllowUnexported(Phase{}),
		cmpopts.IgnoreFields(Journal{}, "XMLName"),
		cmpopts.EquateEmpty(),
	}

	for _, pretty := range []bool{false, true} {
		data, err := Marshal(j, pretty)
		require.NoError(t, err)

		got, err := Unmarshal(data)
		require.NoError(t, err)

		if diff := cmp.Diff(j, got, opts...); diff != "" {
			t.Errorf("round trip (pretty=%v) mismatch (-want +got):\n%s", pretty, diff)
		}
	}
}

func TestMarshal_Layout(t *testing.T) {
	data, err := Marshal(sampleJournal(t), false)
	require.NoError(t, err)
	out := string(data)

	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<BEAKER_TEST><test_id>42</test_id><package>bash</package><pkgdetails>bash-5.2.15-1.fc38.x86_64</pkgdetails>`,
		`<plugin>rpms.sh</plugin>`,
		`<message severity="INFO">orphan &lt;message&gt;</message>`,
		`<phase name="Setup" result="PASS" type="FAIL" starttime="2024-03-01 10:00:00`,
		`score="0"><test message="check config">PASS</test><metric type="low" name="speed" tolerance="0.25">1.5</metric></phase>`,
		`<phase name="Run" result="unfinished" type="WARN"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("marshaled document missing %q\n%s", want, out)
		}
	}
	open := out[strings.Index(out, `<phase name="Run"`):]
	if strings.Contains(open, "score=") {
		t.Errorf("open phase must not carry a score: %s", open)
	}
}

func TestUnmarshal_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"wrong root", `<other><log/></other>`},
		{"truncated", `<BEAKER_TEST><test_id>1</test_id><log><phase name="x"`},
		{"bad metric value", `<BEAKER_TEST><log><metric type="a" name="b" tolerance="1">fast</metric></log></BEAKER_TEST>`},
		{"bad score", `<BEAKER_TEST><log><phase name="p" result="PASS" score="many"></phase></log></BEAKER_TEST>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Unmarshal([]byte(tt.data)); err == nil {
				t.Errorf("Unmarshal(%q) expected error", tt.data)
			}
		})
	}
}

func TestUnmarshal_SkipsUnknownElements(t *testing.T) {
	doc := `<BEAKER_TEST><testname>t</testname><log><note>x</note><phase name="p" result="unfinished"><phase name="nested"/><test message="m">FAIL</test></phase></log></BEAKER_TEST>`
	j, err := Unmarshal([]byte(doc))
	require.NoError(t, err)

	phases := j.Phases()
	require.Len(t, phases, 1)
	require.Len(t, phases[0].Entries, 1)
	require.Equal(t, 1, j.CurrentFailedTests())
}

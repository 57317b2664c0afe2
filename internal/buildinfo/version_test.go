package buildinfo

import "testing"

func stamp(t *testing.T, version, commit, date string) {
	t.Helper()
	oldV, oldC, oldD := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = oldV, oldC, oldD })
	Version, Commit, Date = version, commit, date
}

func TestGetVersion(t *testing.T) {
	tests := []struct {
		set  string
		want string
	}{
		{"", "dev"},
		{"v0.3.0", "v0.3.0"},
	}
	for _, tt := range tests {
		stamp(t, tt.set, "", "")
		if got := GetVersion(); got != tt.want {
			t.Errorf("GetVersion() with Version=%q = %q, want %q", tt.set, got, tt.want)
		}
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name                  string
		version, commit, date string
		want                  string
	}{
		{"unstamped", "", "", "", "dev"},
		{"version only", "v1.0.0", "", "", "v1.0.0"},
		{"with commit", "v1.0.0", "abc1234", "", "v1.0.0 (abc1234)"},
		{"full", "v1.0.0", "abc1234", "2024-05-06", "v1.0.0 (abc1234, 2024-05-06)"},
		{"date without commit", "v1.0.0", "", "2024-05-06", "v1.0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stamp(t, tt.version, tt.commit, tt.date)
			if got := String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

package config

// Config is the resolved configuration shared by all commands
type Config struct {
	// Journal location: <JournalRoot>/<DirPrefix><id>/<FileName>
	JournalRoot string
	DirPrefix   string
	FileName    string

	// Used when a command auto-initializes a missing journal
	DefaultTest    string
	DefaultPackage string

	// Environment snapshot sources
	FrameworkRoot string   // plugins are listed from <FrameworkRoot>/plugin
	ExtraPackages []string // extra package names for the installed-package lookup
	PurposeFile   string
	ReleaseGlob   string

	// Stderr diagnostics level: debug, info, warn or error
	LogLevel string

	// Metadata
	ConfigSource string // "default", "yaml" or "env" (highest layer applied)
	SettingPath  string // YAML file path if one was loaded
}

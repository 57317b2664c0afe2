package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/YoshitsuguKoike/rljournal/internal/app/config"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by LoadSettings
const (
	EnvConfigPath    = "RLJOURNAL_CONFIG"
	EnvJournalRoot   = "RLJOURNAL_ROOT"
	EnvLogLevel      = "RLJOURNAL_LOG_LEVEL"
	EnvTest          = "TEST"
	EnvPackage       = "PACKAGE"
	EnvExtraPackages = "PKGNVR"
	EnvFrameworkRoot = "BEAKERLIB"
)

// RawSettings represents the structure of the YAML settings file.
// Nil fields are filled by applyDefaults.
type RawSettings struct {
	JournalRoot *string `yaml:"journal_root"`
	DirPrefix   *string `yaml:"dir_prefix"`
	FileName    *string `yaml:"file_name"`

	DefaultTest    *string `yaml:"default_test"`
	DefaultPackage *string `yaml:"default_package"`

	FrameworkRoot *string  `yaml:"framework_root"`
	ExtraPackages []string `yaml:"extra_packages"`
	PurposeFile   *string  `yaml:"purpose_file"`
	ReleaseGlob   *string  `yaml:"release_glob"`

	LogLevel *string `yaml:"log_level"`
}

// LoadSettings resolves configuration.
// Priority: environment > YAML file > defaults.
// path may be empty, in which case $RLJOURNAL_CONFIG is used if set.
// A missing file is not an error; a malformed one is.
func LoadSettings(fs afero.Fs, path string, getenv func(string) string) (*config.Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if path == "" {
		path = getenv(EnvConfigPath)
	}

	settings := &RawSettings{}
	configSource := "default"
	settingPath := ""

	if path != "" {
		data, err := afero.ReadFile(fs, path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, settings); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
			configSource = "yaml"
			settingPath = path
		case errors.Is(err, os.ErrNotExist):
			// fall through to defaults
		default:
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	if applyEnv(settings, getenv) {
		configSource = "env"
	}
	applyDefaults(settings)

	return buildConfig(settings, configSource, settingPath), nil
}

// applyEnv overrides settings from the environment and reports whether any
// variable was set.
func applyEnv(settings *RawSettings, getenv func(string) string) bool {
	applied := false
	set := func(dst **string, key string) {
		if v := getenv(key); v != "" {
			*dst = &v
			applied = true
		}
	}
	set(&settings.JournalRoot, EnvJournalRoot)
	set(&settings.LogLevel, EnvLogLevel)
	set(&settings.DefaultTest, EnvTest)
	set(&settings.DefaultPackage, EnvPackage)
	set(&settings.FrameworkRoot, EnvFrameworkRoot)

	if v := getenv(EnvExtraPackages); v != "" {
		settings.ExtraPackages = splitList(v)
		applied = true
	}
	return applied
}

// applyDefaults fills in default values for any nil fields
func applyDefaults(settings *RawSettings) {
	def := func(dst **string, v string) {
		if *dst == nil {
			*dst = &v
		}
	}
	def(&settings.JournalRoot, os.TempDir())
	def(&settings.DirPrefix, "beakerlib-")
	def(&settings.FileName, "journal.xml")
	def(&settings.DefaultTest, "some test")
	def(&settings.DefaultPackage, "some package")
	def(&settings.FrameworkRoot, "")
	def(&settings.PurposeFile, "PURPOSE")
	def(&settings.ReleaseGlob, "/etc/*-release")
	def(&settings.LogLevel, "warn")
}

func buildConfig(settings *RawSettings, configSource, settingPath string) *config.Config {
	return &config.Config{
		JournalRoot:    *settings.JournalRoot,
		DirPrefix:      *settings.DirPrefix,
		FileName:       *settings.FileName,
		DefaultTest:    *settings.DefaultTest,
		DefaultPackage: *settings.DefaultPackage,
		FrameworkRoot:  *settings.FrameworkRoot,
		ExtraPackages:  settings.ExtraPackages,
		PurposeFile:    *settings.PurposeFile,
		ReleaseGlob:    *settings.ReleaseGlob,
		LogLevel:       *settings.LogLevel,
		ConfigSource:   configSource,
		SettingPath:    settingPath,
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

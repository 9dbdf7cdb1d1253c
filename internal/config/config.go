package config

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// Config holds user-adjustable application settings loaded from Settings.ini.
// Vendor protocol constants live in Vendor and are not user-configurable.
type Config struct {
	// Files and directories
	CredentialFile string
	TaskLogDir     string
	ProfileFile    string

	// Notification
	WebhookURL string

	// Pacing (seconds)
	BrowseDelayMin  int
	BrowseDelayMax  int
	StepDelayMin    int
	StepDelayMax    int
	AccountDelayMax int

	// Logging
	LogLevel       string
	LoggingEnabled bool
}

// LoadFromINI loads configuration from a Settings.ini file.
func LoadFromINI(path string) (*Config, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	section := cfg.Section("UserSettings")

	config := &Config{}

	config.CredentialFile = section.Key("credentialFile").MustString("xiaomiconfig.json")
	config.TaskLogDir = section.Key("taskLogDir").MustString("task_logs")
	config.ProfileFile = section.Key("profileFile").MustString("")

	config.WebhookURL = section.Key("webhookURL").MustString("")

	config.BrowseDelayMin = section.Key("browseDelayMin").MustInt(10)
	config.BrowseDelayMax = section.Key("browseDelayMax").MustInt(15)
	config.StepDelayMin = section.Key("stepDelayMin").MustInt(2)
	config.StepDelayMax = section.Key("stepDelayMax").MustInt(4)
	config.AccountDelayMax = section.Key("accountDelayMax").MustInt(15)

	config.LogLevel = section.Key("logLevel").MustString("INFO")
	config.LoggingEnabled = section.Key("loggingEnabled").MustBool(true)

	return config, nil
}

// NewDefaultConfig creates a config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		CredentialFile:  "xiaomiconfig.json",
		TaskLogDir:      "task_logs",
		WebhookURL:      "",
		BrowseDelayMin:  10,
		BrowseDelayMax:  15,
		StepDelayMin:    2,
		StepDelayMax:    4,
		AccountDelayMax: 15,
		LogLevel:        "INFO",
		LoggingEnabled:  true,
	}
}

// SaveToINI saves configuration to an INI file.
func SaveToINI(config *Config, path string) error {
	cfg := ini.Empty()
	section := cfg.Section("UserSettings")

	section.Key("credentialFile").SetValue(config.CredentialFile)
	section.Key("taskLogDir").SetValue(config.TaskLogDir)
	section.Key("profileFile").SetValue(config.ProfileFile)

	section.Key("webhookURL").SetValue(config.WebhookURL)

	section.Key("browseDelayMin").SetValue(fmt.Sprintf("%d", config.BrowseDelayMin))
	section.Key("browseDelayMax").SetValue(fmt.Sprintf("%d", config.BrowseDelayMax))
	section.Key("stepDelayMin").SetValue(fmt.Sprintf("%d", config.StepDelayMin))
	section.Key("stepDelayMax").SetValue(fmt.Sprintf("%d", config.StepDelayMax))
	section.Key("accountDelayMax").SetValue(fmt.Sprintf("%d", config.AccountDelayMax))

	section.Key("logLevel").SetValue(config.LogLevel)
	section.Key("loggingEnabled").SetValue(fmt.Sprintf("%t", config.LoggingEnabled))

	return cfg.SaveTo(path)
}

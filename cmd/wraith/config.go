package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// duration parses YAML durations given as Go duration strings ("30s").
type duration time.Duration

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// AppConfig is the YAML configuration for the wraith CLI.
type AppConfig struct {
	Browser struct {
		Headless        *bool  `yaml:"headless"`
		UserAgent       string `yaml:"userAgent"`
		ViewportWidth   int    `yaml:"viewportWidth"`
		ViewportHeight  int    `yaml:"viewportHeight"`
		IgnoreTLSErrors *bool  `yaml:"ignoreTlsErrors"`
		LoadImages      *bool  `yaml:"loadImages"`
		ExecPath        string `yaml:"execPath"`
		UserDataDir     string `yaml:"userDataDir"`
	} `yaml:"browser"`

	Session struct {
		WaitTimeout  duration `yaml:"waitTimeout"`
		PollInterval duration `yaml:"pollInterval"`
	} `yaml:"session"`

	Display struct {
		Number int `yaml:"number"`
	} `yaml:"display"`

	Mongo struct {
		Enabled  bool   `yaml:"enabled"`
		URI      string `yaml:"uri"`
		Database string `yaml:"database"`
	} `yaml:"mongo"`

	ScriptsDir string `yaml:"scriptsDir"`
}

// LoadAppConfig reads the YAML config file. A missing path yields defaults.
func LoadAppConfig(path string) (*AppConfig, error) {
	cfg := &AppConfig{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

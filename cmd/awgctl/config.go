package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the YAML configuration file. All fields are
// optional; unset fields leave the flag defaults untouched.
type fileConfig struct {
	Device      string        `yaml:"device"`
	WaveDir     string        `yaml:"wave_dir"`
	IOLog       string        `yaml:"iolog"`
	Advertise   *bool         `yaml:"advertise"`
	Interface   string        `yaml:"interface"`
	PollTimeout time.Duration `yaml:"poll_timeout"`
	LogLevel    string        `yaml:"log_level"`
}

// loadConfigFile merges the YAML file into cfg. Flags given explicitly
// on the command line win over file values.
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if fc.Device != "" && !set["device"] {
		cfg.DeviceID = fc.Device
	}
	if fc.WaveDir != "" && !set["wave-dir"] {
		cfg.WaveDir = fc.WaveDir
	}
	if fc.IOLog != "" && !set["iolog"] {
		cfg.IOLogPath = fc.IOLog
	}
	if fc.Advertise != nil && !set["advertise"] {
		cfg.Advertise = *fc.Advertise
	}
	if fc.Interface != "" && !set["iface"] {
		cfg.Interface = fc.Interface
	}
	if fc.PollTimeout != 0 && !set["poll-timeout"] {
		cfg.PollTimeout = fc.PollTimeout
	}
	if fc.LogLevel != "" && !set["log-level"] {
		cfg.LogLevel = fc.LogLevel
	}
	return nil
}

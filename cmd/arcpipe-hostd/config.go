package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML config file format, overridden by any
// CLI flag that was explicitly set.
type fileConfig struct {
	Device        string `yaml:"device"`
	Baud          int    `yaml:"baud"`
	LogLevel      string `yaml:"log_level"`
	Advertise     bool   `yaml:"advertise"`
	AdvertiseName string `yaml:"advertise_name"`
	QueueCapacity int    `yaml:"queue_capacity"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

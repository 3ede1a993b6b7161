package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"usbflash/internal/apperr"
	"usbflash/internal/structures"
)

// LoadConfig loads a YAML file into the given structure.
func LoadConfig(path string, config interface{}) error {
	// Check the file exists first
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return apperr.Errorf(apperr.ArgumentError, "failed to load the config file: %s: file not found", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return apperr.Errorf(apperr.ArgumentError, "failed to load the config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return apperr.Errorf(apperr.ConfigError, "config file format error: %w", err)
	}

	return nil
}

// LoadProvisionConfig loads the provisioning config consumed by the
// flashing pipeline.
func LoadProvisionConfig(path string) (*structures.ProvisionConfig, error) {
	var cfg structures.ProvisionConfig

	if err := LoadConfig(path, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

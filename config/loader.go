package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ApplyOverlay merges an optional YAML overlay file into the settings.
// A missing file is not an error; the argv contract stays four arguments
// and the overlay only carries the operational knobs.
func ApplyOverlay(s *Settings, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return &ConfigError{
			Message: fmt.Sprintf("error reading overlay file %s: %v", path, err),
		}
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return &ConfigError{
			Message: fmt.Sprintf("error parsing overlay file %s: %v", path, err),
		}
	}

	return nil
}

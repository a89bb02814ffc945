package rcconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load builds a Config by starting from Defaults and overlaying a YAML
// file at path, if one exists. A missing file is not an error: the
// process runs on defaults alone. A present-but-invalid file is.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Validate()
		}
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

package discover

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is looked up at the scan root.
const ConfigFileName = ".routemap.yml"

// Config tunes file discovery for one project. Both lists extend the
// built-in defaults rather than replacing them.
type Config struct {
	// Extensions adds source-file extensions beyond .java (e.g. ".kt").
	Extensions []string `yaml:"extensions"`
	// Exclude adds directory names to prune during the walk.
	Exclude []string `yaml:"exclude"`
}

// LoadConfig reads root/.routemap.yml. A missing file is not an error and
// yields the zero Config; a malformed one is reported.
func LoadConfig(root string) (Config, error) {
	var cfg Config
	path := filepath.Join(root, ConfigFileName)
	if !fileExists(path) {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read %s: %w", ConfigFileName, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", ConfigFileName, err)
	}
	return cfg, nil
}

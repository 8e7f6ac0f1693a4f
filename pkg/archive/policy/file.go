package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadOverrides reads retention overrides from a YAML file shaped like:
//
//	trash:
//	  packBundle: {timeLimitDays: 14, maxSize: 50}
//	  deck: {maxSize: 0}
//	history:
//	  packBundle: {timeLimitDays: 180}
func LoadOverrides(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, fmt.Errorf("failed to read retention overrides %q: %w", path, err)
	}

	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Overrides{}, fmt.Errorf("failed to parse retention overrides %q: %w", path, err)
	}
	if err := o.Validate(); err != nil {
		return Overrides{}, fmt.Errorf("invalid retention overrides %q: %w", path, err)
	}
	return o, nil
}

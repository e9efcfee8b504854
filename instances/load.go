package instances

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opentransit/crewd/core/model"
)

// ByName resolves a builtin table by name.
func ByName(name string) (model.Instance, error) {
	switch strings.ToLower(name) {
	case "small", "1":
		return Small(), nil
	case "medium", "2":
		return Medium(), nil
	case "large", "3":
		return Large(), nil
	default:
		return model.Instance{}, fmt.Errorf("unknown instance %q (builtin: small, medium, large)", name)
	}
}

// Load reads a shift table from a JSON or YAML file, chosen by extension.
func Load(path string) (model.Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Instance{}, err
	}
	var in model.Instance
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &in)
	default:
		err = json.Unmarshal(data, &in)
	}
	if err != nil {
		return model.Instance{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if in.Name == "" {
		in.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return in, nil
}

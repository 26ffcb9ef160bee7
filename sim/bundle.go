package sim

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// LoadConfigSpec reads a simulation description from a YAML (.yaml, .yml) or
// TOML (.toml) file. Unknown keys are rejected so typos cannot silently fall
// back to zero values. The result still has to go through NewConfig.
func LoadConfigSpec(path string) (ConfigSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ConfigSpec{}, fmt.Errorf("reading simulation config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return ParseConfigSpecYAML(data)
	case ".toml":
		return ParseConfigSpecTOML(data)
	default:
		return ConfigSpec{}, fmt.Errorf("simulation config %s: unsupported extension %q (want .yaml, .yml or .toml)", path, ext)
	}
}

// ParseConfigSpecYAML decodes a YAML simulation description with strict
// field checking.
func ParseConfigSpecYAML(data []byte) (ConfigSpec, error) {
	var spec ConfigSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return ConfigSpec{}, fmt.Errorf("parsing simulation config: %w", err)
	}
	return spec, nil
}

// ParseConfigSpecTOML decodes a TOML simulation description, rejecting keys
// that do not map onto ConfigSpec.
func ParseConfigSpecTOML(data []byte) (ConfigSpec, error) {
	var spec ConfigSpec
	md, err := toml.Decode(string(data), &spec)
	if err != nil {
		return ConfigSpec{}, fmt.Errorf("parsing simulation config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return ConfigSpec{}, fmt.Errorf("parsing simulation config: unknown keys %v", undecoded)
	}
	return spec, nil
}

package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Read reads and validates a config from a JSON file, or a YAML file when the extension
// is .yaml or .yml.
func Read(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, errors.Wrap(err, "cannot read config file")
	}

	var cfg *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg, err = FromYAML(data)
	default:
		cfg, err = FromJSON(data)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "cannot parse %s", path)
	}
	if err := cfg.Validate(filepath.Base(path)); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromJSON decodes a config from JSON. Unknown fields are rejected.
func FromJSON(data []byte) (*Config, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode config from json")
	}
	return &cfg, nil
}

// FromYAML decodes a config from YAML. Keys are the same as the JSON ones.
func FromYAML(data []byte) (*Config, error) {
	var attributes map[string]interface{}
	if err := yaml.Unmarshal(data, &attributes); err != nil {
		return nil, errors.Wrap(err, "failed to decode config from yaml")
	}
	return FromAttributes(attributes)
}

// FromAttributes decodes a config from a generic attribute map, such as one nested in a
// larger robot config. Unknown fields are rejected.
func FromAttributes(attributes map[string]interface{}) (*Config, error) {
	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      &cfg,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "failed to decode config attributes")
	}
	return &cfg, nil
}

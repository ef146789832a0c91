// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/ava-labs/bridgequeue/utils"
)

// Load reads the config file at [path] over the defaults. JSON and YAML files
// are accepted, by extension. Durations are written as strings such as "10s"
// or as integer nanoseconds. An empty [path] returns the defaults.
func Load(path string) (Config, error) {
	c := NewDefaultConfig()
	if path == "" {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
	case ".yaml", ".yml":
		b, err = yamlToJSON(b)
		if err != nil {
			return Config{}, fmt.Errorf("%w: unable to parse %s", err, path)
		}
	default:
		return Config{}, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err := utils.DecodeConfig(b, &c); err != nil {
		return Config{}, fmt.Errorf("%w: unable to parse %s", err, path)
	}
	return c, nil
}

// yamlToJSON re-encodes a YAML document as JSON so a single set of json tags
// (and raw service sections) covers both formats.
func yamlToJSON(b []byte) ([]byte, error) {
	var v interface{}
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	converted, err := convertYAML(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(converted)
}

// convertYAML replaces the map[interface{}]interface{} values produced by
// yaml.v2 with JSON-encodable maps.
func convertYAML(v interface{}) (interface{}, error) {
	switch v := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(v))
		for k, val := range v {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("%w: non-string key %v", ErrInvalidValue, k)
			}
			converted, err := convertYAML(val)
			if err != nil {
				return nil, err
			}
			m[key] = converted
		}
		return m, nil
	case []interface{}:
		for i, val := range v {
			converted, err := convertYAML(val)
			if err != nil {
				return nil, err
			}
			v[i] = converted
		}
		return v, nil
	default:
		return v, nil
	}
}

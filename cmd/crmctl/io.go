package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// loadFile decodes a JSON or YAML list of records, chosen by file extension.
// A single object is accepted as a list of one.
func loadFile[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	isYAML := isYAMLPath(path)
	var list []T
	if err := unmarshal(isYAML, data, &list); err == nil {
		return list, nil
	}
	var one T
	if err := unmarshal(isYAML, data, &one); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return []T{one}, nil
}

func unmarshal(isYAML bool, data []byte, v any) error {
	if isYAML {
		return yaml.Unmarshal(data, v)
	}
	return json.Unmarshal(data, v)
}

func isYAMLPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// writeOutput renders v as indented JSON or YAML.
func writeOutput(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown format %q (json or yaml)", format)
	}
}

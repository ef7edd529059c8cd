package mapfile

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CurrentVersion is the only supported file version.
const CurrentVersion = "1"

// LoadFile loads and parses a YAML mapping file from the given path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a File. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var f File

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse mapping YAML: %w", err)
	}

	if f.Version == "" {
		f.Version = CurrentVersion
	}

	return &f, nil
}

// Marshal serializes a File to YAML.
func Marshal(f *File) ([]byte, error) {
	return yaml.Marshal(f)
}

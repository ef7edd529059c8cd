package mapfile

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// File is the root of a mapping declaration file.
type File struct {
	Version  string   `yaml:"version" json:"version"`
	Entities []Entity `yaml:"entities" json:"entities"`
}

// Entity declares the mapping of one Go type.
type Entity struct {
	Type       string     `yaml:"type" json:"type"` // reflect.Type.String(), e.g. "app.User"
	Collection string     `yaml:"collection,omitempty" json:"collection,omitempty"`
	AutoMap    bool       `yaml:"automap,omitempty" json:"automap,omitempty"`
	ID         string     `yaml:"id,omitempty" json:"id,omitempty"`
	AutoID     *bool      `yaml:"autoid,omitempty" json:"autoid,omitempty"`
	Include    []string   `yaml:"include,omitempty" json:"include,omitempty"`
	Ignore     []string   `yaml:"ignore,omitempty" json:"ignore,omitempty"`
	Fields     OrderedMap `yaml:"fields,omitempty" json:"fields,omitempty"` // member -> document key
	Unique     []string   `yaml:"unique,omitempty" json:"unique,omitempty"` // members with a unique index
	Indexes    []Index    `yaml:"indexes,omitempty" json:"indexes,omitempty"`
	Refs       OrderedMap `yaml:"refs,omitempty" json:"refs,omitempty"` // member -> collection ("" derives it)
}

// Index flags an already mapped document key.
type Index struct {
	Field  string `yaml:"field" json:"field"`
	Unique bool   `yaml:"unique,omitempty" json:"unique,omitempty"`
}

// Pair is one entry of an OrderedMap.
type Pair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// OrderedMap is a string map that keeps the declaration order of the YAML
// mapping node. Field renames are applied in that order.
type OrderedMap []Pair

// UnmarshalYAML implements custom YAML unmarshaling for OrderedMap.
// Accepts a mapping of scalars; null values decode as "".
func (m *OrderedMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected mapping, got %v", node.Line, node.Kind)
	}
	out := make(OrderedMap, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		var key, val string
		if err := k.Decode(&key); err != nil {
			return err
		}
		if v.Tag != "!!null" {
			if err := v.Decode(&val); err != nil {
				return err
			}
		}
		out = append(out, Pair{Key: key, Value: val})
	}
	*m = out
	return nil
}

// MarshalYAML implements custom YAML marshaling for OrderedMap.
func (m OrderedMap) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, p := range m {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: p.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Value: p.Value},
		)
	}
	return node, nil
}

// MarshalJSON renders the map as a JSON object in declaration order.
func (m OrderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the value for key.
func (m OrderedMap) Get(key string) (string, bool) {
	for _, p := range m {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

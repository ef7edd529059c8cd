package jsonschema

// Schema is a minimal JSON Schema representation used for export.
// Keep this struct small and extend incrementally.
type Schema struct {
	// Core
	Schema      string `json:"$schema,omitempty"`
	Title       string `json:"title,omitempty"`
	Type        string `json:"type,omitempty"`
	Format      string `json:"format,omitempty"`
	Description string `json:"description,omitempty"`
	ReadOnly    bool   `json:"readOnly,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items *Schema `json:"items,omitempty"`

	// Mapping extensions
	Order      []string `json:"x-order,omitempty"`      // document field order
	Unique     bool     `json:"x-unique,omitempty"`     // unique index requested
	AutoID     bool     `json:"x-autoId,omitempty"`     // identifier generated when missing
	Collection string   `json:"x-collection,omitempty"` // collection of the entity or reference target
	Member     string   `json:"x-member,omitempty"`     // originating Go field
}

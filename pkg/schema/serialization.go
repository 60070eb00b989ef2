package schema

import (
	"encoding/json"
	"fmt"
)

type paramJSON struct {
	Type    string `json:"type" yaml:"type"`
	Default any    `json:"default,omitempty" yaml:"default,omitempty"`
	Doc     string `json:"doc,omitempty" yaml:"doc,omitempty"`
}

// MarshalJSON serializes the schema as a map of parameter names to
// {type, default, doc}.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}

	raw := make(map[string]paramJSON, len(s))
	for key, p := range s {
		if p.Type == nil {
			return nil, fmt.Errorf("parameter %s: type is nil", key)
		}
		raw[key] = paramJSON{Type: p.Type.Name(), Default: p.Default, Doc: p.Doc}
	}
	return json.Marshal(raw)
}

// UnmarshalJSON accepts the form written by MarshalJSON, or a bare map of
// parameter names to type strings.
func (s *Schema) UnmarshalJSON(data []byte) error {
	if s == nil {
		return fmt.Errorf("schema: UnmarshalJSON on nil pointer")
	}
	if string(data) == "null" {
		*s = nil
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	parsed := make(Schema, len(raw))
	for key, msg := range raw {
		var p paramJSON
		var typeName string
		if err := json.Unmarshal(msg, &typeName); err == nil {
			p.Type = typeName
		} else if err := json.Unmarshal(msg, &p); err != nil {
			return fmt.Errorf("parameter %s: %w", key, err)
		}
		t, err := ParseType(p.Type)
		if err != nil {
			return fmt.Errorf("parameter %s: %w", key, err)
		}
		param := Param{Type: t, Doc: p.Doc}
		if p.Default != nil {
			if param.Default, err = t.Validate(p.Default); err != nil {
				return fmt.Errorf("parameter %s: default: %w", key, err)
			}
		}
		parsed[key] = param
	}
	*s = parsed
	return nil
}

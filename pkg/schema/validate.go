package schema

import (
	"maps"
	"slices"
)

// Param describes one named parameter.
type Param struct {
	Type Type
	// Default is used when the parameter is absent. Nil makes it required.
	Default any
	Doc     string
}

// Schema maps parameter names to their description.
type Schema map[string]Param

// Names returns the parameter names, sorted.
func (s Schema) Names() []string {
	return slices.Sorted(maps.Keys(s))
}

// Apply validates data against the schema and returns a new map holding the
// canonical value of every parameter, defaults included. Unknown names,
// missing required parameters and bad values are all reported.
func (s Schema) Apply(data map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(s))
	var errs []error

	for _, key := range slices.Sorted(maps.Keys(data)) {
		if _, ok := s[key]; !ok {
			errs = append(errs, &ValidationError{Key: key, Reason: "unknown parameter"})
		}
	}

	for _, key := range s.Names() {
		p := s[key]
		value, ok := data[key]
		if !ok {
			if p.Default == nil {
				errs = append(errs, &ValidationError{Key: key, Reason: "required"})
				continue
			}
			value = p.Default
		}
		v, err := p.Type.Validate(value)
		if err != nil {
			errs = append(errs, &ValidationError{Key: key, Reason: err.Error(), Value: value})
			continue
		}
		out[key] = v
	}

	if len(errs) > 0 {
		return nil, &AggregateError{Errors: errs}
	}
	return out, nil
}

// Parse converts textual values with each parameter's Type. Unknown names
// are kept as text so Apply can report them.
func (s Schema) Parse(text map[string]string) (map[string]any, error) {
	out := make(map[string]any, len(text))
	var errs []error
	for _, key := range slices.Sorted(maps.Keys(text)) {
		p, ok := s[key]
		if !ok {
			out[key] = text[key]
			continue
		}
		v, err := p.Type.Parse(text[key])
		if err != nil {
			errs = append(errs, &ValidationError{Key: key, Reason: err.Error(), Value: text[key]})
			continue
		}
		out[key] = v
	}
	if len(errs) > 0 {
		return nil, &AggregateError{Errors: errs}
	}
	return out, nil
}

// IntParam reads an integer parameter from values returned by Apply.
func IntParam(params map[string]any, key string) int {
	n, _ := toInt(params[key])
	return n
}

// Package schema validates the named parameters of swatches and row patterns.
//
// A Schema maps parameter names to a Param: its Type, an optional default and
// a one-line description. Apply fills defaults, rejects unknown names and
// reports every failure at once:
//
//	s := schema.Schema{
//	    "width":     {Type: schema.IntRange(1, 250), Default: 4},
//	    "rib_width": {Type: schema.IntRange(1, 0)},
//	}
//
//	params, err := s.Apply(map[string]any{"rib_width": 2})
//	// params == {"width": 4, "rib_width": 2}
//
// Values arriving as text (command-line flags, query strings) go through
// Parse first, which converts them with the parameter's Type.
package schema

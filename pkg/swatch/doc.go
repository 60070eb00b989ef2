// Package swatch generates small sample fabrics for trying out the compiler.
//
// Most swatches are row patterns (see package pattern); LaceAndTwist is
// built stitch by stitch through the knitgraph API. Every swatch is also
// registered by name with a parameter schema so the CLI, the HTTP API and
// the MCP server can build them from untyped arguments.
package swatch

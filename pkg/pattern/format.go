package pattern

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/knitout/pkg/knitgraph"
	"gopkg.in/yaml.v3"
)

// Format is a document encoding.
type Format int

const (
	YAML Format = iota
	JSON
)

func (f Format) String() string {
	if f == JSON {
		return "json"
	}
	return "yaml"
}

// FormatOf picks the format from a file extension. Anything but .json is YAML.
func FormatOf(path string) Format {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return JSON
	}
	return YAML
}

// ParseFormat accepts "yaml", "yml" and "json".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "yaml", "yml":
		return YAML, nil
	case "json":
		return JSON, nil
	}
	return YAML, fmt.Errorf("unknown format %q", s)
}

// Decode unmarshals data in the given format.
func Decode(data []byte, f Format, v any) error {
	if f == JSON {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(v)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(v)
}

// Encode marshals v in the given format.
func Encode(v any, f Format) ([]byte, error) {
	if f == JSON {
		return json.MarshalIndent(v, "", "  ")
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Kind is the kind of a document.
type Kind string

const (
	KindGraph Kind = "graph"
	KindRows  Kind = "rows"
)

// Document is anything that can be turned into a knit graph.
type Document interface {
	Kind() Kind
	Title() string
	Graph() (*knitgraph.Graph, error)
}

// Detect reports whether data holds a graph or a row document.
func Detect(data []byte, f Format) (Kind, error) {
	var shape map[string]any
	var err error
	if f == JSON {
		err = json.Unmarshal(data, &shape)
	} else {
		err = yaml.Unmarshal(data, &shape)
	}
	if err != nil {
		return "", fmt.Errorf("failed to parse %s document: %w", f, err)
	}
	switch {
	case shape["rows"] != nil:
		return KindRows, nil
	case shape["loops"] != nil:
		return KindGraph, nil
	}
	return "", ErrUnknownDocument
}

// Parse decodes a document of either kind.
func Parse(data []byte, f Format) (Document, error) {
	kind, err := Detect(data, f)
	if err != nil {
		return nil, err
	}
	var doc Document
	if kind == KindRows {
		doc = &RowDocument{}
	} else {
		doc = &GraphDocument{}
	}
	if err := Decode(data, f, doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s %s document: %w", kind, f, err)
	}
	return doc, nil
}

// Load reads a document file, picking the format from its extension.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern: %w", err)
	}
	return Parse(data, FormatOf(path))
}

// Save writes a document file, picking the format from its extension.
func Save(path string, doc Document) error {
	data, err := Encode(doc, FormatOf(path))
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

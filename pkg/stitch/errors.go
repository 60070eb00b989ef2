package stitch

import "errors"

var (
	// ErrUndefined is returned for names not in the table.
	ErrUndefined = errors.New("undefined symbol")
	// ErrWrongKind is returned when a name resolves to the wrong kind of symbol.
	ErrWrongKind = errors.New("wrong kind of symbol")
)

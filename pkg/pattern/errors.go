package pattern

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownDocument is returned when a document is neither a graph nor a row pattern.
	ErrUnknownDocument = errors.New("unknown document kind")
	// ErrInvalidDocument is returned for structurally invalid documents.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrUnknownStitch is returned for tokens the stitch table cannot resolve.
	ErrUnknownStitch = errors.New("unknown stitch")
	// ErrRowLength is returned when a row does not work exactly the loops available.
	ErrRowLength = errors.New("row does not match the loops on the needles")
	// ErrRowStart is returned when a row's first new loop is not worked into the row before.
	ErrRowStart = errors.New("row must start with a stitch worked into the previous row")
	// ErrVariableName is returned when a variable shadows a stitch.
	ErrVariableName = errors.New("variable name is a stitch")
)

// RowError locates a failure in a row pattern.
type RowError struct {
	Row   int
	Token string
	Err   error
}

func (e *RowError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("row %d, %q: %v", e.Row, e.Token, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

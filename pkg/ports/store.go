package ports

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/knitout/pkg/generator"
)

// ErrArtifactNotFound is returned when no artifact has the requested id.
var ErrArtifactNotFound = errors.New("artifact not found")

// Artifact is a compiled program as it is stored.
type Artifact struct {
	ID string `json:"id"`
	// Name is the title of the document it was compiled from.
	Name string `json:"name"`
	// Source is "graph", "rows" or "swatch:<name>".
	Source string `json:"source"`
	// Digest is the SHA-256 of the input, hex encoded.
	Digest    string          `json:"digest"`
	Knitout   string          `json:"knitout"`
	Stats     generator.Stats `json:"stats"`
	CreatedAt time.Time       `json:"created_at"`
}

// ArtifactStore persists compiled programs.
type ArtifactStore interface {
	// Save persists the artifact under its ID, replacing any earlier one.
	Save(ctx context.Context, a *Artifact) error

	// Load retrieves an artifact.
	// Returns ErrArtifactNotFound if the id is unknown.
	Load(ctx context.Context, id string) (*Artifact, error)

	// Delete removes an artifact. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the ids of every stored artifact.
	List(ctx context.Context) ([]string, error)
}

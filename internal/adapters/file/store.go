package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/knitout/pkg/ports"
)

// Store implements ports.ArtifactStore on the local filesystem.
// Each artifact is a JSON file in BasePath, with its program alongside
// as a .k file that knitout tools can open directly.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".knitout/artifacts".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".knitout", "artifacts")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(id, ext string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("artifact id cannot be empty")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid artifact id %q", id)
	}
	return filepath.Join(s.BasePath, id+ext), nil
}

// Save writes the artifact atomically: temp file, fsync, rename.
func (s *Store) Save(ctx context.Context, a *ports.Artifact) error {
	destPath, err := s.path(a.ID, ".json")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure artifact directory: %w", err)
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}
	if err := s.write(destPath, data); err != nil {
		return err
	}

	programPath, _ := s.path(a.ID, ".k")
	return s.write(programPath, []byte(a.Knitout))
}

func (s *Store) write(destPath string, data []byte) error {
	// same directory, so the rename stays on one filesystem
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-*"+filepath.Ext(destPath))
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// closed before rename for Windows
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// os.Rename does not replace an existing file on Windows
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing artifact for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Load reads an artifact back.
func (s *Store) Load(ctx context.Context, id string) (*ports.Artifact, error) {
	filePath, err := s.path(id, ".json")
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ports.ErrArtifactNotFound
		}
		return nil, fmt.Errorf("failed to read artifact file: %w", err)
	}

	var a ports.Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal artifact: %w", err)
	}
	return &a, nil
}

// Delete removes both files of an artifact.
func (s *Store) Delete(ctx context.Context, id string) error {
	for _, ext := range []string{".json", ".k"} {
		filePath, err := s.path(id, ext)
		if err != nil {
			return err
		}
		if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete artifact file: %w", err)
		}
	}
	return nil
}

// List returns the ids of every artifact file.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, "tmp-") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}

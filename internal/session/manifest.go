package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// manifestFile is the study folder manifest filename.
const manifestFile = "session.json"

// Manifest describes the contents of one study folder.
type Manifest struct {
	Study      string    `json:"study"`
	DesignID   string    `json:"design_id"`
	ResponseID string    `json:"response_id,omitempty"`
	Format     string    `json:"format"`
	Files      []string  `json:"files"`
	CreatedAt  time.Time `json:"created_at"`
}

// ManifestPath returns the manifest path inside dir.
func ManifestPath(dir string) string {
	return filepath.Join(dir, manifestFile)
}

// SaveManifest writes m to dir/session.json. The directory must already exist.
func SaveManifest(m *Manifest, dir string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session manifest: %w", err)
	}

	path := ManifestPath(dir)

	// Write atomically via temp file + rename.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing session manifest temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming session manifest: %w", err)
	}

	return nil
}

// LoadManifest reads dir/session.json. A missing file is reported with an
// error wrapping os.ErrNotExist.
func LoadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(ManifestPath(dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no session manifest in %s: %w", dir, err)
		}
		return nil, fmt.Errorf("reading session manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing session manifest: %w", err)
	}
	return &m, nil
}

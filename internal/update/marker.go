package update

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// MarkerFile is written into the install root once an update has been
// fully extracted and moved into place.
const MarkerFile = ".update-complete"

// Marker records what the last completed update installed.
type Marker struct {
	Source      string    `json:"source"`
	Entries     int       `json:"entries"`
	Digest      string    `json:"digest"` // xxhash64 of the downloaded payload, hex
	Size        int64     `json:"size"`
	CompletedAt time.Time `json:"completed_at"`
}

// MarkerPath returns the marker location inside an install root.
func MarkerPath(dest string) string { return filepath.Join(dest, MarkerFile) }

// ReadMarker loads the completion marker from an install root.
func ReadMarker(dest string) (*Marker, error) {
	b, err := os.ReadFile(MarkerPath(dest))
	if err != nil {
		return nil, err
	}
	var m Marker
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", MarkerFile, err)
	}
	return &m, nil
}

func writeMarker(dest string, m *Marker) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(MarkerPath(dest), b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", MarkerFile, err)
	}
	return nil
}

func removeMarker(dest string) error {
	if err := os.Remove(MarkerPath(dest)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear %s: %w", MarkerFile, err)
	}
	return nil
}

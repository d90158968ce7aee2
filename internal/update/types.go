package update

import (
	"errors"
	"net/http"
)

// Error kinds surfaced by the oracle and the fetcher. Wrapped errors keep
// the underlying cause; test with errors.Is.
var (
	// ErrNotAvailable means the latest version could not be determined.
	ErrNotAvailable = errors.New("latest version not available")
	// ErrNetwork covers connection failures and non-200 responses.
	ErrNetwork = errors.New("network error")
	// ErrMalformed covers unparsable responses and corrupt archives.
	ErrMalformed = errors.New("malformed response")
)

// HTTPDoer interface for HTTP requests (allows mocking in tests).
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// VersionInfo is the body served by the version endpoint.
type VersionInfo struct {
	LatestVersion string `json:"latest_version"`
}

// CheckResult holds the result of an update check
type CheckResult struct {
	CurrentVersion  string `json:"current_version" yaml:"current_version"`
	LatestVersion   string `json:"latest_version,omitempty" yaml:"latest_version,omitempty"`
	Available       bool   `json:"available" yaml:"available"` // false when the server could not be asked
	UpdateAvailable bool   `json:"update_available" yaml:"update_available"`
}

// Progress is emitted once per extracted archive entry.
type Progress struct {
	Percent int    // 0-100, integer-truncated
	Name    string // archive entry just extracted
}

// ProgressFunc receives extraction progress.
type ProgressFunc func(Progress)

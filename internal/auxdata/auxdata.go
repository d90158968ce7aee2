// Package auxdata keeps the client's server-published data files current.
package auxdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/xynnet/client-launcher/internal/update"
)

// FileName is the file written into the client's cache directory.
const FileName = "boostedcreature.json"

// maxBody caps the payload read from the server.
const maxBody = 8 << 20

// Refresher downloads the auxiliary JSON document and stores it for the client.
type Refresher struct {
	http update.HTTPDoer
	url  string
}

// New creates a Refresher fetching url through h.
func New(h update.HTTPDoer, url string) *Refresher {
	if h == nil {
		h = http.DefaultClient
	}
	return &Refresher{http: h, url: url}
}

// URL returns the endpoint the refresher reads.
func (r *Refresher) URL() string { return r.url }

// Refresh fetches the document and writes it, re-indented with four spaces,
// to cacheDir/boostedcreature.json. cacheDir is created when missing. The
// existing file is left untouched unless the new payload is valid JSON.
func (r *Refresher) Refresh(ctx context.Context, cacheDir string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", update.ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", update.ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: GET %s: HTTP %s", update.ErrNetwork, r.url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%w: read body: %w", update.ErrNetwork, err)
	}
	if !json.Valid(body) {
		return fmt.Errorf("%w: %s is not valid JSON", update.ErrMalformed, r.url)
	}

	// Indent keeps the server's key order.
	var out bytes.Buffer
	if err := json.Indent(&out, bytes.TrimSpace(body), "", "    "); err != nil {
		return fmt.Errorf("%w: %w", update.ErrMalformed, err)
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	return writeFile(filepath.Join(cacheDir, FileName), out.Bytes())
}

func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+FileName+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

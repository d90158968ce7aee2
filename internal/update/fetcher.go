package update

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Fetcher downloads an update archive into memory and installs it.
type Fetcher struct {
	http HTTPDoer
	now  func() time.Time
}

// NewFetcher creates a fetcher with a custom HTTP client (nil = download client).
func NewFetcher(h HTTPDoer) *Fetcher {
	if h == nil {
		h = NewDownloadClient(false)
	}
	return &Fetcher{http: h, now: time.Now}
}

// DownloadAndExtract fetches rawURL fully into memory, extracts every entry
// into a staging directory beside dest reporting progress after each one,
// then moves the staged tree over dest and writes the completion marker.
//
// Network failures wrap ErrNetwork; corrupt archives and unsafe entry paths
// wrap ErrMalformed. Failures before the commit leave dest untouched; a
// failure during the commit leaves dest without a completion marker.
func (f *Fetcher) DownloadAndExtract(ctx context.Context, rawURL, dest string, onProgress ProgressFunc) error {
	if dest == "" {
		return fmt.Errorf("destination directory required")
	}
	if onProgress == nil {
		onProgress = func(Progress) {} // no-op
	}

	payload, err := f.download(ctx, rawURL)
	if err != nil {
		return err
	}

	entries, err := openArchive(rawURL, payload)
	if err != nil {
		return fmt.Errorf("%w: open archive: %w", ErrMalformed, err)
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	stage, err := os.MkdirTemp(filepath.Dir(filepath.Clean(dest)), "."+filepath.Base(dest)+".update-*")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(stage)

	n := len(entries)
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.extract(stage); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		onProgress(Progress{Percent: (i + 1) * 100 / n, Name: e.name()})
	}

	// dest is only touched from here on; a marker from a previous run must
	// not vouch for a half-committed tree.
	if err := removeMarker(dest); err != nil {
		return err
	}
	if err := commitStage(stage, dest); err != nil {
		return fmt.Errorf("install update: %w", err)
	}

	return writeMarker(dest, &Marker{
		Source:      rawURL,
		Entries:     n,
		Digest:      fmt.Sprintf("%016x", xxhash.Sum64(payload)),
		Size:        int64(len(payload)),
		CompletedAt: f.now().UTC(),
	})
}

// download reads the whole response body; the payload is never streamed to disk.
func (f *Fetcher) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: download update: %w", ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: download update: HTTP %s", ErrNetwork, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read update body: %w", ErrNetwork, err)
	}
	return data, nil
}

// openArchive picks the archive format from the URL path suffix.
func openArchive(rawURL string, payload []byte) ([]archiveEntry, error) {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	if strings.HasSuffix(strings.ToLower(p), ".tar.lz4") {
		return readTarLz4(payload)
	}
	return readZip(payload)
}

// commitStage moves every staged entry over dest, creating directories as
// needed. Existing files are replaced.
func commitStage(stage, dest string) error {
	return filepath.WalkDir(stage, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(stage, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			if info, statErr := os.Lstat(target); statErr == nil && !info.IsDir() {
				if err := os.Remove(target); err != nil {
					return err
				}
			}
			return os.MkdirAll(target, 0o755)
		}
		if info, statErr := os.Lstat(target); statErr == nil {
			if info.IsDir() {
				if err := os.RemoveAll(target); err != nil {
					return err
				}
			} else if err := os.Remove(target); err != nil {
				return err
			}
		}
		return os.Rename(path, target)
	})
}

// safeJoin joins an archive entry name onto root, rejecting absolute paths
// and anything that escapes root.
func safeJoin(root, name string) (string, error) {
	cleanName := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleanName) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return "", fmt.Errorf("invalid path in archive: %s", name)
	}
	if cleanName == ".." || strings.HasPrefix(cleanName, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid path in archive: %s", name)
	}
	target := filepath.Join(root, cleanName)
	if target != filepath.Clean(root) && !strings.HasPrefix(target, filepath.Clean(root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("path traversal detected: %s", name)
	}
	return target, nil
}

package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/mod/semver"
)

// Oracle asks the update server for the latest published version.
type Oracle struct {
	http HTTPDoer
	url  string
}

// NewOracle creates an oracle querying url through h.
func NewOracle(h HTTPDoer, url string) *Oracle {
	if h == nil {
		h = http.DefaultClient
	}
	return &Oracle{http: h, url: url}
}

// FetchLatest returns the server's latest_version. Every failure is
// reported as ErrNotAvailable wrapping the cause. A body without the field
// reads as "0.0.0".
func (o *Oracle) FetchLatest(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotAvailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := o.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w: %w", ErrNotAvailable, ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %w: HTTP %s", ErrNotAvailable, ErrNetwork, resp.Status)
	}

	var info VersionInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("%w: %w: %w", ErrNotAvailable, ErrMalformed, err)
	}
	if info.LatestVersion == "" {
		return "0.0.0", nil
	}
	return info.LatestVersion, nil
}

// Check compares current with the server's latest version. When the
// server cannot be asked the result has Available=false and the error is
// returned alongside it.
func (o *Oracle) Check(ctx context.Context, current string) (*CheckResult, error) {
	res := &CheckResult{CurrentVersion: current}
	latest, err := o.FetchLatest(ctx)
	if err != nil {
		return res, err
	}
	res.Available = true
	res.LatestVersion = latest
	res.UpdateAvailable = IsStale(current, latest)
	return res, nil
}

// IsStale reports whether remote sorts after local under plain byte-wise
// string ordering. This is deliberately not semver ordering: "10.0.0"
// sorts before "9.0.0".
func IsStale(local, remote string) bool {
	return remote > local
}

// OrderingDiffers reports whether semantic-version ordering would reach a
// different staleness verdict than IsStale. Non-semver strings never differ.
func OrderingDiffers(local, remote string) bool {
	l, r := canonical(local), canonical(remote)
	if !semver.IsValid(l) || !semver.IsValid(r) {
		return false
	}
	return (semver.Compare(r, l) > 0) != IsStale(local, remote)
}

func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}

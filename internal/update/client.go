package update

import (
	"crypto/tls"
	"net/http"
	"time"
)

const userAgent = "client-launcher"

// NewClient returns an HTTP client for small JSON fetches. insecure skips
// certificate validation; the update server is deployed with a self-signed
// certificate.
func NewClient(timeout time.Duration, insecure bool) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: newTransport(insecure),
	}
}

// NewDownloadClient returns a client without an overall timeout for archive
// downloads; only the wait for response headers is bounded.
func NewDownloadClient(insecure bool) *http.Client {
	tr := newTransport(insecure)
	tr.ResponseHeaderTimeout = 30 * time.Second
	return &http.Client{
		Timeout:   0, // No timeout for large downloads
		Transport: tr,
	}
}

func newTransport(insecure bool) *http.Transport {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.IdleConnTimeout = 90 * time.Second
	if insecure {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	return tr
}

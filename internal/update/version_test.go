package update

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsStale(t *testing.T) {
	tests := []struct {
		local  string
		remote string
		want   bool
	}{
		{"1.0.0", "1.0.1", true},
		{"1.0.0", "1.1.0", true},
		{"1.0.0", "1.0.0", false},
		{"1.0.1", "1.0.0", false},
		{"0.0.0", "1.0.0", true},
		// Byte-wise ordering: "10.0.0" < "9.0.0"
		{"9.0.0", "10.0.0", false},
		{"10.0.0", "9.0.0", true},
		{"1.9.0", "1.10.0", false},
		{"", "0.0.1", true},
		{"1.0.0", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.local+"->"+tt.remote, func(t *testing.T) {
			if got := IsStale(tt.local, tt.remote); got != tt.want {
				t.Errorf("IsStale(%q, %q) = %v, want %v", tt.local, tt.remote, got, tt.want)
			}
		})
	}
}

func TestOrderingDiffers(t *testing.T) {
	tests := []struct {
		local  string
		remote string
		want   bool
	}{
		{"1.0.0", "1.0.1", false},
		{"9.0.0", "10.0.0", true},
		{"10.0.0", "9.0.0", true},
		{"1.9.0", "1.10.0", true},
		{"v1.0.0", "v1.0.0", false},
		{"dev", "1.0.0", false},
		{"1.0.0", "latest", false},
	}

	for _, tt := range tests {
		t.Run(tt.local+"->"+tt.remote, func(t *testing.T) {
			if got := OrderingDiffers(tt.local, tt.remote); got != tt.want {
				t.Errorf("OrderingDiffers(%q, %q) = %v, want %v", tt.local, tt.remote, got, tt.want)
			}
		})
	}
}

func TestOracle_FetchLatest(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		want     string
		wantErr  bool
		wantKind error
	}{
		{"ok", http.StatusOK, `{"latest_version":"1.1.0"}`, "1.1.0", false, nil},
		{"missing field", http.StatusOK, `{"other":"x"}`, "0.0.0", false, nil},
		{"server error", http.StatusInternalServerError, `oops`, "", true, ErrNetwork},
		{"not found", http.StatusNotFound, ``, "", true, ErrNetwork},
		{"malformed", http.StatusOK, `not json`, "", true, ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("method = %s, want GET", r.Method)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			got, err := NewOracle(srv.Client(), srv.URL).FetchLatest(context.Background())
			if tt.wantErr {
				if !errors.Is(err, ErrNotAvailable) {
					t.Fatalf("FetchLatest() error = %v, want ErrNotAvailable", err)
				}
				if !errors.Is(err, tt.wantKind) {
					t.Errorf("FetchLatest() error = %v, want kind %v", err, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("FetchLatest() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("FetchLatest() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOracle_FetchLatest_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewOracle(nil, url).FetchLatest(context.Background())
	if !errors.Is(err, ErrNotAvailable) || !errors.Is(err, ErrNetwork) {
		t.Errorf("FetchLatest() error = %v, want ErrNotAvailable+ErrNetwork", err)
	}
}

func TestOracle_FetchLatest_InsecureTLS(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"latest_version":"2.0.0"}`))
	}))
	defer srv.Close()

	// Self-signed certificate must be rejected unless insecure is set.
	if _, err := NewOracle(NewClient(0, false), srv.URL).FetchLatest(context.Background()); err == nil {
		t.Error("expected certificate error with verification enabled")
	}
	got, err := NewOracle(NewClient(0, true), srv.URL).FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("FetchLatest() insecure error = %v", err)
	}
	if got != "2.0.0" {
		t.Errorf("FetchLatest() = %q, want 2.0.0", got)
	}
}

func TestOracle_Check(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"latest_version":"1.1.0"}`))
	}))
	defer srv.Close()
	o := NewOracle(srv.Client(), srv.URL)

	res, err := o.Check(context.Background(), "1.0.0")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !res.Available || !res.UpdateAvailable || res.LatestVersion != "1.1.0" || res.CurrentVersion != "1.0.0" {
		t.Errorf("Check() = %+v", res)
	}

	res, err = o.Check(context.Background(), "1.1.0")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if res.UpdateAvailable {
		t.Error("Check() reported update for equal versions")
	}
}

func TestOracle_Check_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	res, err := NewOracle(srv.Client(), srv.URL).Check(context.Background(), "1.0.0")
	if err == nil {
		t.Fatal("Check() expected error")
	}
	if res == nil || res.Available || res.UpdateAvailable {
		t.Errorf("Check() = %+v, want unavailable result", res)
	}
}

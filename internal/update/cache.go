package update

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const (
	cacheFileName = ".update-check"
	cacheDuration = 10 * time.Minute
)

// CacheEntry stores the last update check result
type CacheEntry struct {
	CheckedAt       time.Time `json:"checked_at"`
	LocalVersion    string    `json:"local_version"`
	LatestVersion   string    `json:"latest_version"`
	UpdateAvailable bool      `json:"update_available"`
}

// GetCachePath returns the path to the cache file
func GetCachePath(workDir string) string {
	return filepath.Join(workDir, cacheFileName)
}

// LoadCache loads the cached update check result
func LoadCache(workDir string) (*CacheEntry, error) {
	data, err := os.ReadFile(GetCachePath(workDir))
	if err != nil {
		return nil, err
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}

	return &entry, nil
}

// SaveCache saves the update check result
func SaveCache(workDir string, entry *CacheEntry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(GetCachePath(workDir), data, 0644)
}

// IsCacheValid returns true if cache is fresh (< 10m old)
func IsCacheValid(entry *CacheEntry) bool {
	return time.Since(entry.CheckedAt) < cacheDuration
}

// SaveResult records a successful check in the cache. Unavailable results
// are not cached.
func SaveResult(workDir string, res *CheckResult) error {
	if res == nil || !res.Available {
		return nil
	}
	return SaveCache(workDir, &CacheEntry{
		CheckedAt:       time.Now(),
		LocalVersion:    res.CurrentVersion,
		LatestVersion:   res.LatestVersion,
		UpdateAvailable: res.UpdateAvailable,
	})
}

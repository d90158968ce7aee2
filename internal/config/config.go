package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	settingsName = "launcher"
	envPrefix    = "CLIENT_LAUNCHER"
)

// Config holds launcher settings: where the update server lives and where
// the launcher keeps its own files. The per-install document (game path,
// executable, installed version) is owned by internal/files, not this type.
type Config struct {
	WorkDir     string        // Directory holding the local config, cache and log
	ConfigFile  string        // Local config document name, relative to WorkDir
	LogFile     string        // Launcher log name, relative to WorkDir
	VersionURL  string        // GET -> {"latest_version": "..."}
	UpdateURL   string        // GET -> update archive (.zip or .tar.lz4)
	AuxDataURL  string        // GET -> boostedcreature.json payload
	Executable  string        // Default client executable name
	HTTPTimeout time.Duration // Per-request timeout for small JSON fetches
	InsecureTLS bool          // Skip certificate validation (update server uses a self-signed cert)
}

// Defaults returns settings aligned with the production update server.
func Defaults() Config {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return Config{
		WorkDir:     wd,
		ConfigFile:  "launcher_config.json",
		LogFile:     "launcher.log",
		VersionURL:  "https://xynnet.com/client-updates/latest_version.json",
		UpdateURL:   "https://xynnet.com/client-updates/update.zip",
		AuxDataURL:  "https://xynnet.com/boostedcreature.json",
		Executable:  "client.exe",
		HTTPTimeout: 30 * time.Second,
		InsecureTLS: true,
	}
}

// Load layers an optional launcher.yaml (searched in workDir, then the
// current directory) and CLIENT_LAUNCHER_* environment variables over
// Defaults. An empty workDir keeps the default (current directory).
func Load(workDir string) (Config, error) {
	d := Defaults()
	if workDir != "" {
		d.WorkDir = workDir
	}

	v := viper.New()
	v.SetConfigName(settingsName)
	v.SetConfigType("yaml")
	v.AddConfigPath(d.WorkDir)
	v.AddConfigPath(".")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("config_file", d.ConfigFile)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("server.version_url", d.VersionURL)
	v.SetDefault("server.update_url", d.UpdateURL)
	v.SetDefault("server.aux_data_url", d.AuxDataURL)
	v.SetDefault("server.insecure_tls", d.InsecureTLS)
	v.SetDefault("http.timeout", d.HTTPTimeout)
	v.SetDefault("client.executable", d.Executable)

	// Settings file is optional; env-only is fine.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read %s settings: %w", settingsName, err)
		}
	}

	cfg := Config{
		WorkDir:     d.WorkDir,
		ConfigFile:  strings.TrimSpace(v.GetString("config_file")),
		LogFile:     strings.TrimSpace(v.GetString("log_file")),
		VersionURL:  strings.TrimSpace(v.GetString("server.version_url")),
		UpdateURL:   strings.TrimSpace(v.GetString("server.update_url")),
		AuxDataURL:  strings.TrimSpace(v.GetString("server.aux_data_url")),
		Executable:  strings.TrimSpace(v.GetString("client.executable")),
		HTTPTimeout: v.GetDuration("http.timeout"),
		InsecureTLS: v.GetBool("server.insecure_tls"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the launcher cannot operate with.
func (c Config) Validate() error {
	if c.ConfigFile == "" {
		return fmt.Errorf("config_file must not be empty")
	}
	if c.Executable == "" {
		return fmt.Errorf("client.executable must not be empty")
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("invalid http.timeout %s", c.HTTPTimeout)
	}
	for name, u := range map[string]string{
		"server.version_url": c.VersionURL,
		"server.update_url":  c.UpdateURL,
	} {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("invalid %s %q (want http[s]://...)", name, u)
		}
	}
	return nil
}

// ConfigPath returns the absolute-or-relative path of the local config document.
func (c Config) ConfigPath() string {
	if filepath.IsAbs(c.ConfigFile) {
		return c.ConfigFile
	}
	return filepath.Join(c.WorkDir, c.ConfigFile)
}

// LogPath returns the path of the launcher log file.
func (c Config) LogPath() string {
	if filepath.IsAbs(c.LogFile) {
		return c.LogFile
	}
	return filepath.Join(c.WorkDir, c.LogFile)
}

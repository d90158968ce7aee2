package process

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Runtime paths the client looks up at startup. All four point into the
// install's bin directory.
const (
	EnvPlatformPluginPath = "QT_QPA_PLATFORM_PLUGIN_PATH"
	EnvQMLImportPath      = "QML2_IMPORT_PATH"
	EnvPluginPath         = "QT_PLUGIN_PATH"
	EnvPath               = "PATH"
)

// BinDir returns the install's bin directory.
func BinDir(installRoot string) string { return filepath.Join(installRoot, "bin") }

// ClientEnv returns base with the client's runtime paths published: three
// variables are set (replacing any inherited value) and the bin directory is
// appended to PATH. base itself is not modified.
func ClientEnv(base []string, installRoot string) []string {
	bin := BinDir(installRoot)
	env := make([]string, 0, len(base)+4)
	env = append(env, base...)

	env = setEnv(env, EnvPlatformPluginPath, filepath.Join(bin, "platforms"))
	env = setEnv(env, EnvQMLImportPath, filepath.Join(bin, "Qt", "QtQuick.2"))
	env = setEnv(env, EnvPluginPath, filepath.Join(bin, "Qt"))

	if i, cur := lookupEnv(env, EnvPath); i >= 0 {
		if cur == "" {
			env[i] = envKey(env[i]) + "=" + bin
		} else {
			env[i] = envKey(env[i]) + "=" + cur + string(os.PathListSeparator) + bin
		}
	} else {
		env = append(env, EnvPath+"="+bin)
	}
	return env
}

func setEnv(env []string, key, value string) []string {
	if i, _ := lookupEnv(env, key); i >= 0 {
		env[i] = envKey(env[i]) + "=" + value
		return env
	}
	return append(env, key+"="+value)
}

// lookupEnv finds key in env; names are case-insensitive on Windows.
func lookupEnv(env []string, key string) (int, string) {
	for i, kv := range env {
		k := envKey(kv)
		if k == key || (runtime.GOOS == "windows" && strings.EqualFold(k, key)) {
			return i, kv[len(k)+1:]
		}
	}
	return -1, ""
}

func envKey(kv string) string {
	if i := strings.IndexByte(kv, '='); i >= 0 {
		return kv[:i]
	}
	return kv
}

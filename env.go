package proxysdk

import (
	"os"
	"strings"
	"sync"
)

// The environment is snapshotted once: hosts freeze the plugin environment
// at VM start, so later mutations of the process environment must not leak
// into plugin behavior.
var (
	envOnce     sync.Once
	envSnapshot map[string]string
)

func snapshotEnv() {
	envSnapshot = make(map[string]string)
	for _, entry := range os.Environ() {
		if key, value, ok := strings.Cut(entry, "="); ok {
			envSnapshot[key] = value
		}
	}
}

// Env returns the value of an environment variable as seen at the first
// lookup. ok is false when the variable was not set.
func Env(key string) (value string, ok bool) {
	envOnce.Do(snapshotEnv)
	value, ok = envSnapshot[key]
	return value, ok
}

// EnvAll returns a copy of the snapshotted environment.
func EnvAll() map[string]string {
	envOnce.Do(snapshotEnv)
	all := make(map[string]string, len(envSnapshot))
	for key, value := range envSnapshot {
		all[key] = value
	}
	return all
}

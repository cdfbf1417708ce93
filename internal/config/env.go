package config

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Centralized environment variable keys used by the app
const (
	EnvAPIKey       = "ASK_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvModel        = "ASK_MODEL"
	EnvBaseURL      = "ASK_BASE_URL"
	EnvTimeout      = "ASK_TIMEOUT"
	EnvDebug        = "ASK_DEBUG"
	EnvListen       = "ASK_LISTEN"
	EnvLogFormat    = "ASK_LOG_FORMAT"
	EnvNoColorASK   = "ASK_NO_COLOR"
	EnvConfig       = "ASK_CONFIG"

	// Common terminal environment variables (non ASK-specific)
	EnvNoColor = "NO_COLOR"
	EnvTerm    = "TERM"
)

// Get returns the raw value for key (empty string if unset).
func Get(key string) string { return os.Getenv(key) }

// Bool reports whether key holds a truthy value. Empty and the usual falsey
// spellings (0, false, no, off) are false; anything else is true.
func Bool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "", "0", "false", "no", "off":
		return false
	}
	return true
}

// WarnUnknownEnv writes a note to w for every ASK_* variable the app does not
// read. It helps catch typos such as ASK_MODLE.
func WarnUnknownEnv(w io.Writer) {
	known := map[string]struct{}{
		EnvAPIKey: {}, EnvModel: {}, EnvBaseURL: {}, EnvTimeout: {}, EnvDebug: {},
		EnvListen: {}, EnvLogFormat: {}, EnvNoColorASK: {}, EnvConfig: {},
	}
	var unknown []string
	for _, entry := range os.Environ() {
		if !strings.HasPrefix(entry, "ASK_") {
			continue
		}
		k := entry
		if i := strings.IndexByte(entry, '='); i >= 0 {
			k = entry[:i]
		}
		if _, ok := known[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return
	}
	sort.Strings(unknown)
	fmt.Fprintln(w, "[ask] Notes about environment variables:")
	for _, k := range unknown {
		fmt.Fprintf(w, "  - %s is not recognized; check for typos or remove it.\n", k)
	}
}

package cli

import (
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/diesi/ask/internal/config"
)

var (
	ColorReset = "\033[0m"
	ColorDim   = "\033[2m"
	ColorRed   = "\033[31m"
	ColorGreen = "\033[32m"

	IconError  = "✗"
	IconPrompt = "➤"
)

func init() {
	if disableColor() {
		disableColors()
	}
}

func disableColor() bool {
	return colorOffByEnv() || !IsTerminal(os.Stdout)
}

// colorOffByEnv honours NO_COLOR (any value, per no-color.org), a truthy
// ASK_NO_COLOR and TERM=dumb.
func colorOffByEnv() bool {
	return config.Get(config.EnvNoColor) != "" || config.Bool(config.EnvNoColorASK) ||
		strings.Contains(strings.ToLower(config.Get(config.EnvTerm)), "dumb")
}

// IsTerminal reports whether v is a file attached to a terminal.
func IsTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// DisableColors can be called at runtime (e.g., for --no-color flag) to clear all escape codes.
func DisableColors() { disableColors() }

func disableColors() {
	ColorReset = ""
	ColorDim = ""
	ColorRed = ""
	ColorGreen = ""
}

package cmd

import (
	"os"
	"runtime"
	"strconv"
)

// ANSI color codes for terminal output.
// These are initialized in init() and may be disabled on certain platforms.
var (
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[0;33m"
	colorCyan   = "\033[0;36m"
	colorDim    = "\033[2m"
	colorBold   = "\033[1m"
	colorReset  = "\033[0m"
)

// colorMode is set by the --color flag on commands that print results.
var colorMode = "auto"

func init() {
	if shouldDisableColors() {
		disableColors()
	}
}

// applyColorMode re-evaluates the color setting after flag parsing.
func applyColorMode() {
	switch colorMode {
	case "always":
		enableColors()
	case "never":
		disableColors()
	default:
		if shouldDisableColors() || !isTTY() {
			disableColors()
		}
	}
}

func enableColors() {
	colorRed = "\033[0;31m"
	colorGreen = "\033[0;32m"
	colorYellow = "\033[0;33m"
	colorCyan = "\033[0;36m"
	colorDim = "\033[2m"
	colorBold = "\033[1m"
	colorReset = "\033[0m"
}

func disableColors() {
	colorRed = ""
	colorGreen = ""
	colorYellow = ""
	colorCyan = ""
	colorDim = ""
	colorBold = ""
	colorReset = ""
}

func shouldDisableColors() bool {
	// Check NO_COLOR environment variable (https://no-color.org/)
	if os.Getenv("NO_COLOR") != "" {
		return true
	}

	// Check TERM=dumb
	if os.Getenv("TERM") == "dumb" {
		return true
	}

	// On Windows, check if ANSI is supported
	if runtime.GOOS == "windows" {
		// Windows Terminal and newer terminals support ANSI
		if os.Getenv("WT_SESSION") != "" {
			return false
		}
		if os.Getenv("TERM_PROGRAM") != "" {
			return false
		}
		// Disable by default on older Windows consoles
		return os.Getenv("ANSICON") == "" && os.Getenv("ConEmuANSI") != "ON"
	}

	return false
}

// isTTY reports whether stdout is attached to a terminal.
func isTTY() bool {
	return getTermWidthIoctl() > 0
}

// getTermWidth returns the terminal width, falling back to $COLUMNS and
// then to 80 columns.
func getTermWidth() int {
	if w := getTermWidthIoctl(); w > 0 {
		return w
	}
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if w, err := strconv.Atoi(cols); err == nil && w > 0 {
			return w
		}
	}
	return 80
}

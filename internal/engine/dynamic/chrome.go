// internal/engine/dynamic/chrome.go
package dynamic

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"
)

// chromeEnvVars are checked in order before the standard install locations
var chromeEnvVars = []string{"QUOTES_CHROME_PATH", "CHROME_PATH"}

// FindChrome locates a Chrome/Chromium executable. An explicit path wins,
// then the environment, then per-OS install locations, then PATH. It returns
// "" when nothing is found, leaving chromedp to try its own default.
func FindChrome(explicit string, logger zerolog.Logger) string {
	if explicit != "" {
		if isExecutable(explicit) {
			return explicit
		}
		logger.Warn().Str("path", explicit).Msg("Configured chrome path is not executable")
	}

	for _, env := range chromeEnvVars {
		if path := os.Getenv(env); path != "" {
			if isExecutable(path) {
				logger.Debug().Str("path", path).Str("env", env).Msg("Chrome found via environment")
				return path
			}
			logger.Warn().Str("path", path).Str("env", env).Msg("Chrome path from environment is not executable")
		}
	}

	for _, path := range candidatePaths() {
		if isExecutable(path) {
			logger.Debug().Str("path", path).Str("os", runtime.GOOS).Msg("Chrome found at standard location")
			return path
		}
	}

	for _, name := range []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser", "chrome", "msedge"} {
		if path, err := exec.LookPath(name); err == nil {
			logger.Debug().Str("path", path).Msg("Chrome found in PATH")
			return path
		}
	}

	logger.Warn().Str("os", runtime.GOOS).Msg("Chrome not found, falling back to chromedp default")
	return ""
}

func candidatePaths() []string {
	home := os.Getenv("HOME")

	switch runtime.GOOS {
	case "darwin":
		paths := []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		}
		if home != "" {
			paths = append(paths, filepath.Join(home, "Applications/Google Chrome.app/Contents/MacOS/Google Chrome"))
		}
		return paths
	case "windows":
		var paths []string
		for _, base := range []string{os.Getenv("ProgramFiles"), os.Getenv("ProgramFiles(x86)"), os.Getenv("LocalAppData")} {
			if base == "" {
				continue
			}
			paths = append(paths,
				filepath.Join(base, "Google", "Chrome", "Application", "chrome.exe"),
				filepath.Join(base, "Chromium", "Application", "chrome.exe"),
			)
		}
		return paths
	default:
		paths := []string{
			"/usr/bin/google-chrome-stable",
			"/usr/bin/google-chrome",
			"/usr/bin/chromium-browser",
			"/usr/bin/chromium",
			"/snap/bin/chromium",
		}
		if home != "" {
			paths = append(paths, filepath.Join(home, ".local/share/flatpak/exports/bin/org.chromium.Chromium"))
		}
		return paths
	}
}

// isExecutable checks if a file exists and is executable
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode()&0111 != 0
}

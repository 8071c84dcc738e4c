package driver

import (
	"os"
	"path/filepath"
)

var artifactMarkers = []string{"LICENSE", "NOTICE", "THIRD_PARTY", "README", "CREDITS"}

// platformDirs are the per-architecture folder names browser builds are
// unpacked into.
var platformDirs = []string{
	"win64",
	"win32",
	"linux64",
	"linux",
	"mac-x64",
	"mac-arm64",
	"chrome-win64",
	"chrome-win32",
	"chrome-win",
	"chrome-linux64",
	"chrome-linux",
	"chrome-mac-x64",
	"chrome-mac-arm64",
	"chrome-mac",
}

// ExecutableNames lists the file names a browser executable may have on goos.
func ExecutableNames(goos string) []string {
	switch goos {
	case "windows":
		return []string{"chrome.exe", "chromium.exe", "msedge.exe"}
	case "darwin":
		return []string{
			"Chromium",
			"Google Chrome",
			filepath.Join("Chromium.app", "Contents", "MacOS", "Chromium"),
			filepath.Join("Google Chrome.app", "Contents", "MacOS", "Google Chrome"),
		}
	default:
		return []string{"chrome", "chromium", "chromium-browser", "google-chrome", "google-chrome-stable", "headless_shell"}
	}
}

// WellKnownPaths lists standard installation locations on goos.
func WellKnownPaths(goos string) []string {
	switch goos {
	case "windows":
		var paths []string
		for _, base := range []string{os.Getenv("ProgramFiles"), os.Getenv("ProgramFiles(x86)"), os.Getenv("LOCALAPPDATA")} {
			if base == "" {
				continue
			}
			paths = append(paths, filepath.Join(base, "Google", "Chrome", "Application", "chrome.exe"))
		}
		return append(paths,
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe`,
		)
	case "darwin":
		return []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		}
	default:
		return []string{
			"/usr/bin/google-chrome",
			"/usr/bin/google-chrome-stable",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/snap/bin/chromium",
			"/opt/google/chrome/chrome",
		}
	}
}

package htmlexport

import (
	"fmt"

	"github.com/go-rod/rod/lib/launcher"
)

// resolveBrowser returns the path of a cached Chromium build, downloading
// one first if needed. The binary is stored in ~/.cache/rod/browser
// (Unix) or %APPDATA%\rod\browser (Windows).
func resolveBrowser() (string, error) {
	path, err := launcher.NewBrowser().Get()
	if err != nil {
		return "", fmt.Errorf("htmlexport: downloading browser: %w", err)
	}
	return path, nil
}

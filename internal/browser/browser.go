package browser

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
)

// Open launches the system browser for an article URL. Only http(s) links
// are allowed; feed content is untrusted input. A BROWSER environment
// variable overrides the platform default.
func Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open URL with scheme %q", u.Scheme)
	}

	if cmd := os.Getenv("BROWSER"); cmd != "" {
		return exec.Command(cmd, rawURL).Start()
	}

	name, args := opener()
	return exec.Command(name, append(args, rawURL)...).Start()
}

func opener() (string, []string) {
	switch runtime.GOOS {
	case "darwin":
		return "open", nil
	case "windows":
		// rundll32 avoids shell interpretation of the URL
		return "rundll32", []string{"url.dll,FileProtocolHandler"}
	default:
		return "xdg-open", nil
	}
}

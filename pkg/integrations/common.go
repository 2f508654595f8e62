package integrations

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shawnoster/bookcover-wallpaper/pkg/buildinfo"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a book, feed or cover doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with a standard timeout for API requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// DefaultHeaders returns the headers sent with every API request.
func DefaultHeaders() map[string]string {
	return map[string]string{"User-Agent": buildinfo.UserAgent()}
}

// UpgradeHTTPS rewrites an http:// URL to https://. Google Books returns
// plain http image links that most clients refuse to follow.
func UpgradeHTTPS(u string) string {
	if rest, ok := strings.CutPrefix(u, "http://"); ok {
		return "https://" + rest
	}
	return u
}

// CleanISBN strips spreadsheet quoting ("=\"0261103342\"") and hyphens from
// an ISBN. The result is empty if nothing but punctuation remains.
func CleanISBN(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "=")
	s = strings.Trim(s, `"`)
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return ""
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != 'X' && r != 'x' {
			return ""
		}
	}
	return strings.ToUpper(s)
}

// parseRetryAfter reads a Retry-After header given in seconds. HTTP-date
// values are ignored.
func parseRetryAfter(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

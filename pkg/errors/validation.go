package errors

import (
	"image/color"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// MaxDimension bounds canvas width and height. A 16K canvas is already
// larger than any real display.
const MaxDimension = 16384

// ValidateDimensions checks that width and height are positive and at most
// MaxDimension.
func ValidateDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidInput, "canvas dimensions must be positive, got %dx%d", width, height)
	}
	if width > MaxDimension || height > MaxDimension {
		return New(ErrCodeInvalidInput, "canvas dimensions exceed %d: %dx%d", MaxDimension, width, height)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	for _, r := range rawURL {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "URL contains invalid characters")
		}
	}

	return nil
}

// goodreadsUserIDRegex matches numeric Goodreads user IDs, optionally followed
// by the profile slug ("12345-jane-doe").
var goodreadsUserIDRegex = regexp.MustCompile(`^[0-9]{1,12}(-[A-Za-z0-9-]+)?$`)

// ValidateGoodreadsUserID validates a Goodreads user ID before it is
// interpolated into a feed URL.
func ValidateGoodreadsUserID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidSource, "goodreads user ID cannot be empty")
	}
	if !goodreadsUserIDRegex.MatchString(id) {
		return New(ErrCodeInvalidSource, "invalid goodreads user ID: %q", id)
	}
	return nil
}

// ValidateDirectory checks that path names an existing, readable directory.
func ValidateDirectory(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "directory path cannot be empty")
	}
	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidPath, "path contains invalid characters")
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return New(ErrCodeInvalidPath, "directory not found: %s", path)
	}
	if err != nil {
		return Wrap(ErrCodeInvalidPath, err, "cannot access %s", path)
	}
	if !info.IsDir() {
		return New(ErrCodeInvalidPath, "not a directory: %s", path)
	}
	return nil
}

// ParseColor parses a background color. Accepted forms are "#rgb",
// "#rrggbb" (leading # optional) and "r,g,b" with decimal components.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return color.NRGBA{}, New(ErrCodeInvalidColor, "color cannot be empty")
	}

	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		if len(parts) != 3 {
			return color.NRGBA{}, New(ErrCodeInvalidColor, "invalid color %q (want r,g,b)", s)
		}
		var rgb [3]uint8
		for i, p := range parts {
			v, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil || v < 0 || v > 255 {
				return color.NRGBA{}, New(ErrCodeInvalidColor, "invalid color component %q in %q", p, s)
			}
			rgb[i] = uint8(v)
		}
		return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xff}, nil
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, New(ErrCodeInvalidColor, "invalid color %q (want #rrggbb)", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, New(ErrCodeInvalidColor, "invalid color %q (want #rrggbb)", s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

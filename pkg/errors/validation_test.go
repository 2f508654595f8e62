package errors

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestValidateDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		wantErr       bool
	}{
		{"full hd", 1920, 1080, false},
		{"single pixel", 1, 1, false},
		{"max", MaxDimension, MaxDimension, false},

		{"zero width", 0, 1080, true},
		{"zero height", 1920, 0, true},
		{"negative", -1920, 1080, true},
		{"too wide", MaxDimension + 1, 1080, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDimensions(tt.width, tt.height)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDimensions(%d, %d) error = %v, wantErr %v", tt.width, tt.height, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateDimensions(%d, %d) returned wrong error code: %v", tt.width, tt.height, err)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://covers.openlibrary.org/b/id/1-L.jpg", false},
		{"http", "http://books.google.com/books/content?id=x", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"file", "file:///etc/passwd", true},
		{"javascript", "javascript:alert(1)", true},
		{"space", "https://example.com/a b.jpg", true},
		{"newline", "https://example.com/\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateGoodreadsUserID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"numeric", "12345678", false},
		{"with slug", "12345678-jane-doe", false},

		{"empty", "", true},
		{"letters", "jane", true},
		{"traversal", "123/../456", true},
		{"query injection", "123?shelf=x", true},
		{"too long", "1234567890123", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGoodreadsUserID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGoodreadsUserID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidSource) {
				t.Errorf("ValidateGoodreadsUserID(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "cover.jpg")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"existing dir", dir, false},

		{"empty", "", true},
		{"missing", filepath.Join(dir, "nope"), true},
		{"file", file, true},
		{"null byte", "covers\x00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDirectory(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDirectory(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidateDirectory(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		input   string
		want    color.NRGBA
		wantErr bool
	}{
		{"#1e1e1e", color.NRGBA{30, 30, 30, 255}, false},
		{"1E1E1E", color.NRGBA{30, 30, 30, 255}, false},
		{"#fff", color.NRGBA{255, 255, 255, 255}, false},
		{"30,30,30", color.NRGBA{30, 30, 30, 255}, false},
		{" 0, 128 ,255 ", color.NRGBA{0, 128, 255, 255}, false},

		{"", color.NRGBA{}, true},
		{"#12345", color.NRGBA{}, true},
		{"#gggggg", color.NRGBA{}, true},
		{"256,0,0", color.NRGBA{}, true},
		{"1,2", color.NRGBA{}, true},
		{"red", color.NRGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseColor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				if !Is(err, ErrCodeInvalidColor) {
					t.Errorf("ParseColor(%q) returned wrong error code: %v", tt.input, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidSource,
		ErrCodeInvalidFormat,
		ErrCodeInvalidPath,
		ErrCodeInvalidColor,
		ErrCodeNotFound,
		ErrCodeNoCovers,
		ErrCodeNetwork,
		ErrCodeTimeout,
		ErrCodeRateLimited,
		ErrCodeDecode,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}

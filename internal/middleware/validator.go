package middleware

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bryanwahyu/interpretlab/internal/domain/core"
)

// Input validation and sanitization utilities

// MaxUploadBytes bounds multipart uploads of model and dataset files.
const MaxUploadBytes int64 = 512 << 20

var clientIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// PathID reads a positive integer id from the chi URL parameter.
func PathID(r *http.Request, param string) (core.ID, error) {
	return core.ParseID(param, chi.URLParam(r, param))
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}

// ValidateClientID validates API client names from config.
func ValidateClientID(client string) error {
	if client == "" {
		return fmt.Errorf("client ID cannot be empty")
	}
	if !clientIDPattern.MatchString(client) {
		return fmt.Errorf("invalid client ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// ValidateAPIKey rejects keys too short to be secrets.
func ValidateAPIKey(key string) error {
	if len(strings.TrimSpace(key)) < 16 {
		return fmt.Errorf("API key must be at least 16 characters")
	}
	return nil
}

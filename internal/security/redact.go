package security

import (
	"net/http"
	"sort"
	"strings"
)

var sensitiveSubstrings = []string{
	"token",
	"password",
	"authorization",
	"apikey",
	"api-key",
	"api_key",
	"secret",
	"signature",
	"cookie",
	"session",
	"jwt",
	"bearer",
	"credential",
}

// RedactHeaders returns a flattened copy of headers with sensitive values
// replaced by "***". Multiple values are joined with ", ".
func RedactHeaders(headers http.Header) map[string]string {
	if headers == nil {
		return nil
	}
	out := make(map[string]string, len(headers))
	for key, values := range headers {
		if IsSensitiveKey(key) {
			out[key] = "***"
			continue
		}
		out[key] = strings.Join(values, ", ")
	}
	return out
}

// IsSensitiveKey reports whether a header or field name likely carries a
// credential.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(strings.TrimSpace(key))
	for _, part := range sensitiveSubstrings {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}

// HeaderNames returns the sorted header names, useful for logging which
// credentials were presented without their values.
func HeaderNames(headers http.Header) []string {
	names := make([]string, 0, len(headers))
	for key := range headers {
		names = append(names, key)
	}
	sort.Strings(names)
	return names
}

package render

import (
	"encoding/base64"
	"errors"
	"strings"
	"text/template"
)

// FuncMap returns the template helpers available in profiles.
func FuncMap(tracker *EnvTracker, lookup LookupFunc) template.FuncMap {
	return template.FuncMap{
		"env": func(key string) string {
			if tracker != nil {
				tracker.markUsed(key)
			}
			value, ok := lookup(key)
			if !ok {
				if tracker != nil {
					tracker.markMissing(key)
				}
				return ""
			}
			return value
		},
		"envOr": func(key, def string) string {
			if tracker != nil {
				tracker.markUsed(key)
			}
			if value, ok := lookup(key); ok && value != "" {
				return value
			}
			return def
		},
		"default": func(def, value string) string {
			if value == "" {
				return def
			}
			return value
		},
		"required": func(message, value string) (string, error) {
			if strings.TrimSpace(value) == "" {
				return "", errors.New(message)
			}
			return value, nil
		},
		"quote": func(value string) string {
			return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value) + `"`
		},
		"b64enc": func(value string) string {
			return base64.StdEncoding.EncodeToString([]byte(value))
		},
		"ternary": func(cond bool, a, b string) string {
			if cond {
				return a
			}
			return b
		},
		"lower":      strings.ToLower,
		"upper":      strings.ToUpper,
		"trimPrefix": strings.TrimPrefix,
		"trimSuffix": strings.TrimSuffix,
		"replace":    strings.ReplaceAll,
	}
}

// Package render expands Go templates in profile files before YAML parsing.
package render

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/template"
)

// LookupFunc resolves an environment variable.
type LookupFunc func(key string) (string, bool)

// MissingEnvError lists variables referenced with env that were not set.
type MissingEnvError struct {
	Names []string
}

func (e *MissingEnvError) Error() string {
	return "missing env vars: " + strings.Join(e.Names, ", ")
}

// EnvTracker records variables referenced during rendering.
type EnvTracker struct {
	missing map[string]struct{}
	used    map[string]struct{}
}

func (t *EnvTracker) markUsed(key string) {
	if t.used == nil {
		t.used = map[string]struct{}{}
	}
	t.used[key] = struct{}{}
}

func (t *EnvTracker) markMissing(key string) {
	if t.missing == nil {
		t.missing = map[string]struct{}{}
	}
	t.missing[key] = struct{}{}
}

// Missing returns the sorted names of unset variables read with env.
func (t *EnvTracker) Missing() []string {
	return sortedKeys(t.missing)
}

// Used returns the sorted names of every variable referenced.
func (t *EnvTracker) Used() []string {
	return sortedKeys(t.used)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// RenderFile reads and renders a template file using the process environment.
func RenderFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return RenderBytes(path, raw)
}

// RenderBytes renders raw using the process environment.
func RenderBytes(name string, raw []byte) ([]byte, error) {
	return RenderBytesEnv(name, raw, os.LookupEnv)
}

// RenderBytesEnv renders raw resolving variables through lookup. All unset
// variables read with env are reported together as a *MissingEnvError.
func RenderBytesEnv(name string, raw []byte, lookup LookupFunc) ([]byte, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	tracker := &EnvTracker{}
	templateName := name
	if strings.TrimSpace(templateName) == "" {
		templateName = "profile"
	}
	tmpl, err := template.New(templateName).Funcs(FuncMap(tracker, lookup)).Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	execErr := tmpl.Execute(&buf, map[string]any{})
	if missing := tracker.Missing(); len(missing) > 0 {
		return nil, &MissingEnvError{Names: missing}
	}
	if execErr != nil {
		return nil, fmt.Errorf("render template: %w", execErr)
	}
	return buf.Bytes(), nil
}

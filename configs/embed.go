// Package configs ships example agent profiles.
package configs

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.yaml
var embeddedProfiles embed.FS

// Names returns the embedded profile filenames, sorted.
func Names() []string {
	entries, err := fs.Glob(embeddedProfiles, "*.yaml")
	if err != nil {
		return nil
	}
	sort.Strings(entries)
	return entries
}

// Load returns the raw (unrendered) embedded profile by filename.
func Load(name string) ([]byte, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("embedded profile name is empty")
	}
	data, err := fs.ReadFile(embeddedProfiles, name)
	if err != nil {
		return nil, fmt.Errorf("read embedded profile %q: %w", name, err)
	}
	return data, nil
}

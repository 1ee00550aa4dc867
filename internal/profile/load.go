package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/codex-k8s/runstep-agent/configs"
	"github.com/codex-k8s/runstep-agent/internal/render"
)

// Load parses YAML bytes into a Profile and validates it. Unknown fields are
// rejected.
func Load(data []byte) (*Profile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Profile
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: document is empty", ErrInvalid)
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadFile renders the template at path with the process environment and
// loads the result.
func LoadFile(path string) (*Profile, error) {
	rendered, err := render.RenderFile(path)
	if err != nil {
		return nil, err
	}
	return Load(rendered)
}

// LoadEmbedded loads one of the example profiles shipped in configs. The
// .yaml suffix is optional.
func LoadEmbedded(name string) (*Profile, error) {
	if !strings.HasSuffix(name, ".yaml") {
		name += ".yaml"
	}
	raw, err := configs.Load(name)
	if err != nil {
		return nil, err
	}
	rendered, err := render.RenderBytes(name, raw)
	if err != nil {
		return nil, err
	}
	return Load(rendered)
}

package site

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed manifest.yaml
var defaultManifest []byte

// Manifest describes the page to build
type Manifest struct {
	Title       string   `yaml:"title"`
	Author      string   `yaml:"author"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
	Path        string   `yaml:"path"`
	// Socket is the websocket endpoint the page connects to
	Socket string `yaml:"socket"`
	Fonts  []Font `yaml:"fonts"`
}

// Font is a web font family to inline into the page head
type Font struct {
	Family   string        `yaml:"family"`
	Variants []FontVariant `yaml:"variants"`
}

// Meta returns the document metadata of the manifest
func (m *Manifest) Meta() Meta {
	return Meta{Author: m.Author, Description: m.Description, Keywords: m.Keywords}
}

// DefaultManifest returns the built-in manifest
func DefaultManifest() (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(defaultManifest, &m); err != nil {
		return nil, fmt.Errorf("failed to parse default manifest: %w", err)
	}
	return &m, nil
}

// LoadManifest loads a manifest file over the defaults. An empty path
// returns the defaults.
func LoadManifest(path string) (*Manifest, error) {
	m, err := DefaultManifest()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return m, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	slog.Info("manifest loaded", "file", path, "title", m.Title, "path", m.Path, "fonts", len(m.Fonts))
	return m, nil
}

// Validate checks required fields and applies defaults
func (m *Manifest) Validate() error {
	if m.Title == "" {
		return fmt.Errorf("manifest title is required")
	}
	if !strings.HasPrefix(m.Path, "/") || !strings.HasSuffix(m.Path, ".html") {
		return fmt.Errorf("manifest path must be absolute and end in .html: %q", m.Path)
	}
	if m.Socket == "" {
		m.Socket = "/ws"
	}

	for i, f := range m.Fonts {
		if f.Family == "" {
			return fmt.Errorf("font %d: family is required", i)
		}
		if len(f.Variants) == 0 {
			m.Fonts[i].Variants = []FontVariant{{Weight: 400}}
		}
		for _, v := range m.Fonts[i].Variants {
			if v.Weight < 100 || v.Weight > 900 {
				return fmt.Errorf("font %s: invalid weight %d", f.Family, v.Weight)
			}
		}
	}
	return nil
}

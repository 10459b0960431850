package site

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var ErrUnsafePath = errors.New("page path escapes the output directory")

// Page is one compiled document and where it is served from
type Page struct {
	Path string
	HTML string
}

// Compile writes every page under outDir
func Compile(outDir string, pages []Page) error {
	for _, p := range pages {
		rel := filepath.FromSlash(strings.TrimPrefix(p.Path, "/"))
		if rel == "" || !filepath.IsLocal(rel) {
			return fmt.Errorf("%w: %q", ErrUnsafePath, p.Path)
		}

		dst := filepath.Join(outDir, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", p.Path, err)
		}
		if err := os.WriteFile(dst, []byte(p.HTML), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", p.Path, err)
		}

		slog.Info("page compiled", "path", p.Path, "file", dst, "bytes", len(p.HTML))
	}
	return nil
}

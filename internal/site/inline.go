package site

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
)

//go:embed assets
var assets embed.FS

// InlineCSS returns the stylesheet at path as a style element
func InlineCSS(fsys fs.FS, path string) (template.HTML, error) {
	return inline(fsys, path, "style")
}

// InlineJS returns the script at path as a script element
func InlineJS(fsys fs.FS, path string) (template.HTML, error) {
	return inline(fsys, path, "script")
}

func inline(fsys fs.FS, path, tag string) (template.HTML, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	src := string(data)
	if strings.Contains(strings.ToLower(src), "</"+tag) {
		return "", fmt.Errorf("%s contains a closing %s tag", path, tag)
	}

	return template.HTML("<" + tag + ">\n" + src + "</" + tag + ">"), nil
}

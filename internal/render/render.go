// Package render turns screen views into panel markup for the page shell.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/microcosm-cc/bluemonday"

	"github.com/terra-clan/code-golf/internal/escape"
	"github.com/terra-clan/code-golf/internal/screen"
)

//go:embed templates/*.html
var templateFS embed.FS

// Panel is the markup of the visible container
type Panel struct {
	Container string
	HTML      string
}

// Renderer renders views with the embedded panel templates
type Renderer struct {
	tmpl   *template.Template
	policy *bluemonday.Policy
}

// New parses the embedded templates
func New() (*Renderer, error) {
	r := &Renderer{policy: bluemonday.UGCPolicy()}

	tmpl, err := template.New("panels").Funcs(template.FuncMap{
		"esc":     r.esc,
		"trusted": r.trusted,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	r.tmpl = tmpl
	return r, nil
}

// esc escapes untrusted text; the result is already safe markup
func (r *Renderer) esc(s string) template.HTML {
	return template.HTML(escape.String(s))
}

// trusted inserts challenge descriptions as markup, minus anything executable
func (r *Renderer) trusted(s string) template.HTML {
	return template.HTML(r.policy.Sanitize(s))
}

// Render renders the active panel of a view
func (r *Renderer) Render(v screen.View) (Panel, error) {
	var name string
	var data any

	switch {
	case v.Home != nil:
		name, data = "home", v.Home
	case v.Detail != nil:
		name, data = "detail", v.Detail
	case v.Board != nil:
		name, data = "leaderboard", v.Board
	case v.LangBoard != nil:
		name, data = "lang_leaderboard", v.LangBoard
	case v.Submit != nil:
		name, data = "submit", v.Submit
	default:
		return Panel{}, fmt.Errorf("view of %s has no panel", v.Screen)
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return Panel{}, fmt.Errorf("failed to render %s: %w", name, err)
	}

	return Panel{Container: v.Container, HTML: buf.String()}, nil
}

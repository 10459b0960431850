package site

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/terra-clan/code-golf/internal/render"
	"github.com/terra-clan/code-golf/internal/screen"
)

const (
	stylesheet = "assets/css/index.css"
	script     = "assets/js/index.js"
)

var bodyTemplate = template.Must(template.New("body").Parse(`{{.CSS}}

<main data-socket="{{.Socket}}">
	<h1>{{.Title}}</h1>
{{range .Containers}}
	<div id="{{.ID}}-container"{{if not .Visible}} class="hidden"{{end}}>
{{- .HTML -}}
	</div>
{{end}}
</main>

{{.JS}}
`))

type container struct {
	ID      string
	Visible bool
	HTML    template.HTML
}

// Build compiles the pages described by m. A nil importer leaves web fonts
// out of the head.
func Build(ctx context.Context, m *Manifest, fonts *FontImporter) ([]Page, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	var head bytes.Buffer
	if fonts != nil {
		for _, f := range m.Fonts {
			style, err := fonts.Import(ctx, f.Family, f.Variants)
			if err != nil {
				return nil, fmt.Errorf("failed to import %s: %w", f.Family, err)
			}
			head.WriteString(string(style))
			head.WriteString("\n")
		}
	}

	body, err := homeBody(m)
	if err != nil {
		return nil, err
	}

	html, err := Shell{Head: template.HTML(head.String())}.Render(m.Title, body, m.Meta())
	if err != nil {
		return nil, err
	}

	slog.Debug("page built", "path", m.Path, "bytes", len(html), "fonts", fonts != nil)
	return []Page{{Path: m.Path, HTML: html}}, nil
}

// homeBody lays out the screen containers with the home panel showing its
// loading state until the browser client connects
func homeBody(m *Manifest) (template.HTML, error) {
	css, err := InlineCSS(assets, stylesheet)
	if err != nil {
		return "", err
	}
	js, err := InlineJS(assets, script)
	if err != nil {
		return "", err
	}

	r, err := render.New()
	if err != nil {
		return "", err
	}
	initial, err := r.Render(screen.Project(screen.Initial(), screen.Data{ListStatus: screen.Loading}))
	if err != nil {
		return "", err
	}

	containers := make([]container, 0, len(screen.Containers))
	for _, id := range screen.Containers {
		c := container{ID: id}
		if id == initial.Container {
			c.Visible = true
			c.HTML = template.HTML(initial.HTML)
		}
		containers = append(containers, c)
	}

	var buf bytes.Buffer
	err = bodyTemplate.Execute(&buf, struct {
		CSS        template.HTML
		JS         template.HTML
		Title      string
		Socket     string
		Containers []container
	}{css, js, m.Title, m.Socket, containers})
	if err != nil {
		return "", fmt.Errorf("failed to render page body: %w", err)
	}
	return template.HTML(buf.String()), nil
}

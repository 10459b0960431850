// Package site compiles the static golf page: the document shell, inlined
// assets and fonts, and the container layout the browser client drives.
package site

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// Meta is the document metadata of a page
type Meta struct {
	Author      string
	Description string
	Keywords    []string
}

// Shell wraps page bodies in a full HTML document sharing one head
type Shell struct {
	Head template.HTML
}

var shellTemplate = template.Must(template.New("shell").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8">
	<meta name="viewport" content="width=device-width, initial-scale=1">
{{- with .Meta.Author}}
	<meta name="author" content="{{.}}">
{{- end}}
{{- with .Meta.Description}}
	<meta name="description" content="{{.}}">
{{- end}}
{{- with .Meta.Keywords}}
	<meta name="keywords" content="{{join . ", "}}">
{{- end}}
	<title>{{.Title}}</title>
	{{.Head}}
</head>
<body>
{{.Body}}
</body>
</html>
`))

// Render renders a full document around body
func (s Shell) Render(title string, body template.HTML, meta Meta) (string, error) {
	var buf bytes.Buffer
	err := shellTemplate.Execute(&buf, struct {
		Title string
		Head  template.HTML
		Body  template.HTML
		Meta  Meta
	}{title, s.Head, body, meta})
	if err != nil {
		return "", fmt.Errorf("failed to render shell: %w", err)
	}
	return buf.String(), nil
}

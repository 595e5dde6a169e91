package renderer

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML converts markdown, GitHub flavored, to an HTML fragment.
func HTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var page = template.Must(template.ParseFS(templates, "page.html"))

// HTMLPage converts markdown into a standalone HTML document.
func HTMLPage(title, source string) (string, error) {
	body, err := HTML(source)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	err = page.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{title, template.HTML(body)})
	return buf.String(), err
}

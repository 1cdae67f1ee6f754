// Package static embeds the HTML pages served by the web UI.
package static

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Page names accepted by Templates.Render.
const (
	IndexPage    = "index.html"
	RegisterPage = "register.html"
)

// Templates renders the embedded pages.
type Templates struct {
	t *template.Template
}

// Load parses the embedded templates. It panics if they are malformed, which
// can only happen when the binary was built from broken sources.
func Load() *Templates {
	return &Templates{t: template.Must(template.ParseFS(templatesFS, "templates/*.html"))}
}

// Render writes the named page using data.
func (t *Templates) Render(w io.Writer, page string, data any) error {
	return t.t.ExecuteTemplate(w, page, data)
}

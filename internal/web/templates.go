// Package web holds the embedded html templates of the client screens.
package web

import (
	"embed"
	"html/template"
	"strconv"

	"github.com/Masterminds/sprig/v3"
)

//go:embed tpl/*.tmpl tpl/pages/*.tmpl
var tplFS embed.FS

// Funcs returns the template helpers available to every screen.
func Funcs() template.FuncMap {
	funcs := sprig.FuncMap()
	funcs["stockLabel"] = stockLabel
	return funcs
}

func stockLabel(count int) string {
	switch {
	case count <= 0:
		return "Out of stock"
	case count == 1:
		return "1 copy left"
	default:
		return strconv.Itoa(count) + " copies"
	}
}

// Templates parses every screen. Each page template is addressed by its
// shell page name ("login", "home", ...), suitable for gin's c.HTML.
func Templates() (*template.Template, error) {
	return template.New("root").Funcs(Funcs()).ParseFS(tplFS, "tpl/*.tmpl", "tpl/pages/*.tmpl")
}

// MustTemplates is Templates for program start-up; it panics on a parse error.
func MustTemplates() *template.Template {
	return template.Must(Templates())
}

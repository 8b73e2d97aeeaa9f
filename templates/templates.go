// Package templates holds the HTML pages served by the web app.
package templates

import (
	"embed"
	"html/template"
)

//go:embed *.html
var files embed.FS

// Parse loads every page; pages are addressed by file name, e.g. "index.html".
func Parse() (*template.Template, error) {
	return template.New("").ParseFS(files, "*.html")
}

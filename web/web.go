// Package web embeds the HTML page templates.
package web

import "embed"

// Templates holds templates/*.html. templates/layout.html wraps every page.
//
//go:embed templates/*.html
var Templates embed.FS

const TemplatesDir = "templates"

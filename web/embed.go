// Package web embeds the dashboard templates and static assets so the
// server ships as a single binary.
package web

import "embed"

//go:embed templates/*.html
var TemplatesFS embed.FS

//go:embed static
var StaticFS embed.FS

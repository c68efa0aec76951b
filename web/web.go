// Package web embeds the page templates served by the presentation server.
package web

import "embed"

//go:embed templates/*.html
var TemplateFiles embed.FS

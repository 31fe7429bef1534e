// Package web embeds the static assets served on the public surface.
package web

import "embed"

// Static embeds the landing page and its css/js assets.
//
//go:embed static
var Static embed.FS

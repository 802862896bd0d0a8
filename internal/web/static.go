// Package web holds the browser assets of the preview server.
package web

import "embed"

//go:embed static
var Static embed.FS

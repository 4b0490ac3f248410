// Package views embeds the HTML templates served by the web controllers.
package views

import "embed"

//go:embed *.html
var FS embed.FS

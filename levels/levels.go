// Package levels embeds the TMX levels shipped with the server.
package levels

import "embed"

// FS holds every *.tmx file of this directory at its root.
//
//go:embed *.tmx
var FS embed.FS

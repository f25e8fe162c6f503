// Package web embeds the browser dashboard served by the API at /.
//
// The dashboard is a single static page that starts scans through the
// REST API and follows their progress on the WebSocket feed.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var dist embed.FS

// DistFS returns a filesystem rooted at the embedded static/ directory.
// This is ready to use with http.FileServerFS or http.FS.
func DistFS() fs.FS {
	sub, err := fs.Sub(dist, "static")
	if err != nil {
		// static/ is compiled in; Sub only fails on an invalid path.
		panic("web.DistFS: " + err.Error())
	}
	return sub
}

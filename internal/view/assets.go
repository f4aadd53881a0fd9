package view

import (
	"embed"
	"io/fs"
)

//go:embed assets
var embeddedAssets embed.FS

// Assets returns the static files served under /assets/.
func Assets() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

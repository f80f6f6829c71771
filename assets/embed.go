package assets

import (
	"embed"
	"io/fs"
)

//go:embed web
var FS embed.FS

// Web returns the browser client rooted at web/.
func Web() fs.FS {
	sub, err := fs.Sub(FS, "web")
	if err != nil {
		panic(err)
	}
	return sub
}

func Index() []byte {
	b, err := FS.ReadFile("web/index.html")
	if err != nil {
		return []byte("<!doctype html><html><body>client missing</body></html>")
	}
	return b
}

// Package assets embeds the built-in views, stylesheet and public files of
// the admin app.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed views css public
var FS embed.FS

// Views holds the built-in layout, error and alert views. They are
// searched after every user view root.
func Views() fs.FS {
	return sub("views")
}

// CSS holds the stylesheets served at the mount root.
func CSS() fs.FS {
	return sub("css")
}

// Public holds the static files served at the mount root.
func Public() fs.FS {
	return sub("public")
}

func sub(dir string) fs.FS {
	fsys, err := fs.Sub(FS, dir)
	if err != nil {
		panic(err)
	}
	return fsys
}

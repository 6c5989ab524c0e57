package sitehandler

import (
	"io/fs"
	"path"
	"strings"

	"github.com/keithlinneman/avatars-web/internal/pathutil"
)

type resolution struct {
	file     string // path inside the snapshot FS, no leading slash
	redirect string // canonical URL path to redirect to
}

// resolvePath maps a URL path onto the snapshot:
//
//	/            -> index.html
//	/dir/        -> dir/index.html
//	/dir         -> 308 to /dir/ when dir/index.html exists
//	/name.ext    -> name.ext
//
// Anything ambiguous or missing resolves to the zero value.
func resolvePath(urlPath string, fsys fs.FS) resolution {
	p := "/" + strings.TrimPrefix(urlPath, "/")
	if pathutil.Ambiguous(p) {
		return resolution{}
	}

	dir := strings.HasSuffix(p, "/")
	clean := path.Clean(p)
	rel := strings.TrimPrefix(clean, "/")

	switch {
	case clean == "/":
		return fileIfExists(fsys, "index.html")
	case dir:
		return fileIfExists(fsys, rel+"/index.html")
	case path.Ext(clean) != "":
		return fileIfExists(fsys, rel)
	case existsFile(fsys, rel+"/index.html"):
		return resolution{redirect: clean + "/"}
	}
	return resolution{}
}

func fileIfExists(fsys fs.FS, name string) resolution {
	if existsFile(fsys, name) {
		return resolution{file: name}
	}
	return resolution{}
}

func existsFile(fsys fs.FS, name string) bool {
	if name == "" || !fs.ValidPath(name) {
		return false
	}
	info, err := fs.Stat(fsys, name)
	return err == nil && !info.IsDir()
}

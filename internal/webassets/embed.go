// Package webassets embeds the seed landing page and the pages served when
// no landing snapshot is available.
package webassets

import (
	"embed"
	"io/fs"
	"strings"

	"github.com/keithlinneman/avatars-web/internal/content"
	"github.com/keithlinneman/avatars-web/internal/xerrors"
)

//go:embed fallback seed
var embedded embed.FS

// FallbackFS holds maintenance.html and 404.html.
func FallbackFS() fs.FS {
	sub, err := fs.Sub(embedded, "fallback")
	if err != nil {
		panic(xerrors.Wrap(err, "webassets: fallback subfs"))
	}
	return sub
}

// SeedSiteFS returns the embedded landing page, or false if it was packaged
// without an index.html.
func SeedSiteFS() (fs.FS, bool) {
	sub, err := fs.Sub(embedded, "seed")
	if err != nil {
		return nil, false
	}
	if _, err := fs.Stat(sub, "index.html"); err != nil {
		return nil, false
	}
	return sub, true
}

// SeedSnapshot wraps the seed page as a validated content snapshot, versioned
// by its VERSION file.
func SeedSnapshot() (content.Snapshot, error) {
	fsys, ok := SeedSiteFS()
	if !ok {
		return content.Snapshot{}, xerrors.New("webassets: seed has no index.html")
	}
	version := "seed"
	if b, err := fs.ReadFile(fsys, "VERSION"); err == nil {
		if v := strings.TrimSpace(string(b)); v != "" {
			version = v
		}
	}
	snap := content.Snapshot{
		FS:   fsys,
		Meta: content.Meta{Version: version, Source: content.SourceSeed},
	}
	if err := content.ValidateSnapshot(&snap, content.DefaultValidationOptions()); err != nil {
		return content.Snapshot{}, xerrors.Wrap(err, "webassets: seed")
	}
	return snap, nil
}

package sitehandler

import (
	"errors"
	"io/fs"

	"github.com/keithlinneman/avatars-web/internal/content"
	"github.com/keithlinneman/avatars-web/internal/log"
	"github.com/keithlinneman/avatars-web/internal/xerrors"
)

// ErrInvalidOptions wraps every construction error returned by New.
var ErrInvalidOptions = errors.New("sitehandler: invalid options")

// SnapshotProvider yields the landing snapshot being served.
type SnapshotProvider interface {
	Get() (*content.Snapshot, bool)
}

type Options struct {
	Logger  log.Logger
	Content SnapshotProvider
	// FallbackFS holds the maintenance page and the last-resort 404.
	FallbackFS fs.FS

	MaintenanceFile string // in FallbackFS, default "maintenance.html"
	Fallback404File string // in FallbackFS, default "404.html"
	Site404File     string // in the snapshot, default "404.html"

	HTMLCacheControl  string // default "no-cache"
	AssetCacheControl string // default "public, max-age=86400"
	OtherCacheControl string // default "public, max-age=3600"
}

func (o *Options) setDefaults() {
	if o.Logger == nil {
		o.Logger = log.Nop()
	}
	o.MaintenanceFile = orDefault(o.MaintenanceFile, "maintenance.html")
	o.Fallback404File = orDefault(o.Fallback404File, "404.html")
	o.Site404File = orDefault(o.Site404File, "404.html")
	o.HTMLCacheControl = orDefault(o.HTMLCacheControl, "no-cache")
	// landing assets keep fixed names (app.js, style.css), so no immutable
	o.AssetCacheControl = orDefault(o.AssetCacheControl, "public, max-age=86400")
	o.OtherCacheControl = orDefault(o.OtherCacheControl, "public, max-age=3600")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func (o *Options) validate() error {
	if o.Content == nil {
		return xerrors.Wrap(ErrInvalidOptions, "Content is nil")
	}
	if o.FallbackFS == nil {
		return xerrors.Wrap(ErrInvalidOptions, "FallbackFS is nil")
	}
	// the maintenance page is the only thing served without a snapshot
	if !existsFile(o.FallbackFS, o.MaintenanceFile) {
		return xerrors.Wrapf(ErrInvalidOptions, "missing %q in fallback FS", o.MaintenanceFile)
	}
	return nil
}

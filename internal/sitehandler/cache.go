package sitehandler

import (
	"path"
	"strings"
)

// cacheControlForFile picks a policy by extension. Extensionless names are
// treated as HTML.
func cacheControlForFile(name string, o Options) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".htm", "":
		return o.HTMLCacheControl
	case ".css", ".js", ".mjs", ".map",
		".png", ".jpg", ".jpeg", ".webp", ".gif", ".svg", ".ico",
		".woff", ".woff2", ".ttf":
		return o.AssetCacheControl
	default:
		return o.OtherCacheControl
	}
}

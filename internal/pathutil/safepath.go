// Package pathutil holds the path checks shared by the landing page resolver
// and the bundle extractor.
package pathutil

import "strings"

// HasDotSegments reports whether any "/"-separated segment is "." or "..".
func HasDotSegments(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg == "." || seg == ".." {
			return true
		}
	}
	return false
}

// Ambiguous reports whether p carries a NUL byte, a backslash, or a dot
// segment. Such paths are refused outright rather than cleaned.
func Ambiguous(p string) bool {
	return strings.ContainsAny(p, "\x00\\") || HasDotSegments(p)
}

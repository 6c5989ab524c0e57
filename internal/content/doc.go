// Package content manages the landing page served at "/".
//
// The process starts from an embedded seed snapshot. When a bundle source is
// configured, a [Loader] reads the current bundle SHA-256 from SSM, downloads
// the matching tar.gz from S3, checks its digest and optional KMS signature,
// extracts it into memory and hands the [Snapshot] to the [Manager].
//
// Extraction enforces size limits (compressed, per file, total) and rejects
// absolute paths, traversal and anything that is not a regular file.
package content

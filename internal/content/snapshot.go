package content

import (
	"io/fs"
	"time"
)

// Source records where the active landing content came from.
type Source string

const (
	SourceUnknown Source = "unknown"
	SourceSeed    Source = "seed" // embedded in the binary
	SourceS3      Source = "s3"
)

// Snapshot is one immutable landing bundle.
type Snapshot struct {
	FS       fs.FS
	Meta     Meta
	LoadedAt time.Time
}

type Meta struct {
	Version    string    `json:"version,omitempty"`
	SHA256     string    `json:"sha256,omitempty"`
	Source     Source    `json:"source,omitempty"`
	VerifiedAt time.Time `json:"verified_at,omitempty"`
	Signed     bool      `json:"signed,omitempty"`
}

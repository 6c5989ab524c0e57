package content

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"path"
	"strings"
	"testing/fstest"

	"github.com/keithlinneman/avatars-web/internal/pathutil"
	"github.com/keithlinneman/avatars-web/internal/xerrors"
)

const (
	// maxBundleSize caps the compressed bundle downloaded from S3.
	maxBundleSize int64 = 20 * 1024 * 1024

	// maxSignatureSize caps the detached signature object.
	maxSignatureSize int64 = 16 * 1024

	maxSingleFile   int64 = 5 * 1024 * 1024
	maxTotalExtract int64 = 50 * 1024 * 1024
)

// readWithHash reads r up to maxSize bytes and returns the data with its
// hex SHA-256.
func readWithHash(r io.Reader, maxSize int64) ([]byte, string, error) {
	h := sha256.New()
	tr := io.TeeReader(io.LimitReader(r, maxSize+1), h)

	data, err := io.ReadAll(tr)
	if err != nil {
		return nil, "", xerrors.Wrap(err, "read bundle")
	}
	if int64(len(data)) > maxSize {
		return nil, "", xerrors.Newf("content exceeds max size (limit %d bytes)", maxSize)
	}
	return data, hex.EncodeToString(h.Sum(nil)), nil
}

// extractTarGzToMem extracts a tar.gz archive into an in-memory filesystem.
// Only regular files are accepted; directories are implied by file paths.
func extractTarGzToMem(data []byte) (fs.FS, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, xerrors.Wrap(err, "open gzip")
	}
	defer gr.Close()

	mfs := make(fstest.MapFS)
	tr := tar.NewReader(gr)
	var total int64

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, xerrors.Wrap(err, "read tar header")
		}

		name, err := cleanArchivePath(hdr.Name)
		if err != nil {
			return nil, err
		}
		if name == "" {
			continue
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			continue
		case tar.TypeReg:
			if hdr.Size > maxSingleFile {
				return nil, xerrors.Newf("file %s exceeds max size (%d > %d)", name, hdr.Size, maxSingleFile)
			}
			body, err := io.ReadAll(io.LimitReader(tr, maxSingleFile+1))
			if err != nil {
				return nil, xerrors.Wrapf(err, "read %s", name)
			}
			if int64(len(body)) > maxSingleFile {
				return nil, xerrors.Newf("file %s exceeds max size after read", name)
			}
			total += int64(len(body))
			if total > maxTotalExtract {
				return nil, xerrors.Newf("total extracted size exceeds limit (%d bytes)", maxTotalExtract)
			}
			mfs[name] = &fstest.MapFile{
				Data: body,
				Mode: hdr.FileInfo().Mode().Perm(),
			}
		default:
			return nil, xerrors.Newf("unsupported file type in archive: %s (type=%d)", name, hdr.Typeflag)
		}
	}

	return mfs, nil
}

// cleanArchivePath normalizes an archive entry name. It returns "" for the
// archive root and an error for absolute or escaping paths.
func cleanArchivePath(name string) (string, error) {
	if strings.ContainsRune(name, 0) || strings.ContainsRune(name, '\\') {
		return "", xerrors.Newf("ambiguous archive path: %q", name)
	}
	if path.IsAbs(name) {
		return "", xerrors.Newf("absolute path in archive: %s", name)
	}
	clean := path.Clean(strings.TrimPrefix(name, "./"))
	if clean == "." {
		return "", nil
	}
	if pathutil.HasDotSegments(clean) {
		return "", xerrors.Newf("path traversal in archive: %s", name)
	}
	if !fs.ValidPath(clean) {
		return "", xerrors.Newf("invalid path in archive: %s", name)
	}
	return clean, nil
}

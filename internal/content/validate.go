package content

import (
	"io/fs"
	"slices"

	"github.com/keithlinneman/avatars-web/internal/xerrors"
)

const indexFile = "index.html"

// ValidationOptions tunes ValidateSnapshot. The zero value only insists on a
// non-empty index.html.
type ValidationOptions struct {
	MinFiles      int      // 0 disables the count
	RequiredFiles []string // non-empty regular files besides index.html
}

// DefaultValidationOptions wants the page and the script that populates the
// avatar pickers.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{MinFiles: 2, RequiredFiles: []string{"app.js"}}
}

// ValidateSnapshot rejects a bundle that would break the landing page. It
// stops at the first problem.
func ValidateSnapshot(snap *Snapshot, opts ValidationOptions) error {
	switch {
	case snap == nil:
		return xerrors.New("validate: snapshot is nil")
	case snap.FS == nil:
		return xerrors.New("validate: snapshot has nil filesystem")
	}

	for _, name := range slices.Concat([]string{indexFile}, opts.RequiredFiles) {
		if err := requireFile(snap.FS, name); err != nil {
			return err
		}
	}
	if opts.MinFiles <= 0 {
		return nil
	}
	n, err := countFiles(snap.FS)
	if err != nil {
		return xerrors.Wrap(err, "validate: counting files")
	}
	if n < opts.MinFiles {
		return xerrors.Newf("validate: bundle has %d files, minimum is %d", n, opts.MinFiles)
	}
	return nil
}

func requireFile(fsys fs.FS, name string) error {
	info, err := fs.Stat(fsys, name)
	switch {
	case err != nil:
		return xerrors.Wrapf(err, "validate: required file %s", name)
	case !info.Mode().IsRegular():
		return xerrors.Newf("validate: %s is not a regular file", name)
	case info.Size() == 0:
		return xerrors.Newf("validate: %s is empty", name)
	}
	return nil
}

func countFiles(fsys fs.FS) (int, error) {
	n := 0
	err := fs.WalkDir(fsys, ".", func(_ string, d fs.DirEntry, err error) error {
		if err == nil && d.Type().IsRegular() {
			n++
		}
		return err
	})
	return n, err
}

package filesystem

import (
	"path/filepath"

	"github.com/arthur-debert/modkeeper/pkg/errors"
	"github.com/arthur-debert/modkeeper/pkg/types"
)

// CopyFile copies a regular file, creating the destination directory.
func CopyFile(fsys types.FS, src, dst string) error {
	data, err := fsys.ReadFile(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", src)
	}
	if err := fsys.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(dst))
	}
	if err := fsys.WriteFile(dst, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", dst)
	}
	return nil
}

// MoveFile renames src to dst, falling back to copy and delete when a rename
// is not possible (for example across devices).
func MoveFile(fsys types.FS, src, dst string) error {
	if err := fsys.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(dst))
	}
	if err := fsys.Rename(src, dst); err == nil {
		return nil
	}
	if err := CopyFile(fsys, src, dst); err != nil {
		return err
	}
	if err := fsys.Remove(src); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove %s after copy", src)
	}
	return nil
}

// Exists reports whether path exists.
func Exists(fsys types.FS, path string) bool {
	_, err := fsys.Stat(path)
	return err == nil
}

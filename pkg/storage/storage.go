package storage

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/modkeeper/pkg/errors"
	"github.com/arthur-debert/modkeeper/pkg/filesystem"
	"github.com/arthur-debert/modkeeper/pkg/logging"
	"github.com/arthur-debert/modkeeper/pkg/paths"
	"github.com/arthur-debert/modkeeper/pkg/semver"
	"github.com/arthur-debert/modkeeper/pkg/types"
)

// InfoFileName is the metadata file every mod carries.
const InfoFileName = "info.json"

// Locations is the subset of paths.Paths storage needs.
type Locations interface {
	ModsDir() string
	FactorioDir(factorioVersion string) string
}

// Info is the content of a mod's info.json.
type Info struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	Title           string `json:"title,omitempty"`
	Author          string `json:"author,omitempty"`
	Description     string `json:"description,omitempty"`
	FactorioVersion string `json:"factorio_version,omitempty"`
}

// Storage is the accessor for mod files.
type Storage struct {
	fs     types.FS
	paths  Locations
	logger zerolog.Logger
}

// New creates a Storage rooted at the mods directory of locations.
func New(fs types.FS, locations Locations) *Storage {
	return &Storage{
		fs:     fs,
		paths:  locations,
		logger: logging.GetLogger("storage"),
	}
}

// Place writes a downloaded archive under the Factorio version directory and
// returns its location. An existing file is never overwritten.
func (s *Storage) Place(factorioVersion, fileName string, data []byte) (string, error) {
	if fileName == "" || fileName != filepath.Base(fileName) {
		return "", errors.Newf(errors.ErrInvalidInput, "invalid archive name %q", fileName)
	}
	dir := s.paths.FactorioDir(factorioVersion)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", dir)
	}

	target := filepath.Join(dir, fileName)
	if filesystem.Exists(s.fs, target) {
		return "", errors.Newf(errors.ErrAlreadyExists, "%s already exists", target)
	}

	tmp := target + ".part"
	if err := s.fs.WriteFile(tmp, data, 0644); err != nil {
		return "", errors.Wrapf(err, errors.ErrStorage, "failed to write %s", tmp)
	}
	if err := s.fs.Rename(tmp, target); err != nil {
		_ = s.fs.Remove(tmp)
		return "", errors.Wrapf(err, errors.ErrStorage, "failed to place %s", target)
	}

	s.logger.Debug().Str("path", target).Int("bytes", len(data)).Msg("Archive placed")
	return target, nil
}

// Import copies or moves an archive from outside the mods directory into the
// directory for factorioVersion.
func (s *Storage) Import(source, factorioVersion string, move bool) (string, error) {
	target := filepath.Join(s.paths.FactorioDir(factorioVersion), filepath.Base(source))
	if filesystem.Exists(s.fs, target) {
		return "", errors.Newf(errors.ErrAlreadyExists, "%s already exists", target)
	}
	var err error
	if move {
		err = filesystem.MoveFile(s.fs, source, target)
	} else {
		err = filesystem.CopyFile(s.fs, source, target)
	}
	if err != nil {
		return "", err
	}
	return target, nil
}

// Extract unpacks archive into a sibling directory named after the archive
// and returns that directory. The archive's top-level folder is stripped.
func (s *Storage) Extract(archive string) (string, error) {
	reader, err := s.openZip(archive)
	if err != nil {
		return "", err
	}

	dest := strings.TrimSuffix(archive, filepath.Ext(archive))
	if filesystem.Exists(s.fs, dest) {
		return "", errors.Newf(errors.ErrAlreadyExists, "%s already exists", dest)
	}
	root := commonRoot(reader.File)

	for _, f := range reader.File {
		rel := strings.TrimPrefix(f.Name, root)
		if rel == "" || strings.HasSuffix(rel, "/") {
			continue
		}
		clean := path.Clean(rel)
		if clean == ".." || strings.HasPrefix(clean, "../") || path.IsAbs(clean) {
			_ = s.fs.RemoveAll(dest)
			return "", errors.Newf(errors.ErrStorage, "archive %s contains unsafe path %q", archive, f.Name)
		}
		target := filepath.Join(dest, filepath.FromSlash(clean))

		data, err := readZipFile(f)
		if err != nil {
			_ = s.fs.RemoveAll(dest)
			return "", errors.Wrapf(err, errors.ErrStorage, "failed to read %s from %s", f.Name, archive)
		}
		if err := s.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
			_ = s.fs.RemoveAll(dest)
			return "", errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(target))
		}
		if err := s.fs.WriteFile(target, data, 0644); err != nil {
			_ = s.fs.RemoveAll(dest)
			return "", errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", target)
		}
	}

	s.logger.Debug().Str("archive", archive).Str("dir", dest).Msg("Archive extracted")
	return dest, nil
}

// Delete removes a mod's archive or directory.
func (s *Storage) Delete(location string) error {
	if location == "" {
		return nil
	}
	if err := s.fs.RemoveAll(location); err != nil {
		return errors.Wrapf(err, errors.ErrStorage, "failed to delete %s", location)
	}
	return nil
}

// ReadInfo builds a Mod from the info.json of an archive or directory.
// defaultFactorioVersion applies when info.json omits factorio_version.
func (s *Storage) ReadInfo(location, defaultFactorioVersion string) (*types.Mod, error) {
	stat, err := s.fs.Stat(location)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileNotFound, "mod %s not found", location)
	}

	var raw []byte
	packed := !stat.IsDir()
	if packed {
		reader, err := s.openZip(location)
		if err != nil {
			return nil, err
		}
		raw, err = findInfo(reader)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrModInvalid, "archive %s has no readable %s", location, InfoFileName)
		}
	} else {
		raw, err = s.fs.ReadFile(filepath.Join(location, InfoFileName))
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrModInvalid, "directory %s has no %s", location, InfoFileName)
		}
	}

	var info Info
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, errors.Wrapf(err, errors.ErrModInvalid, "invalid %s in %s", InfoFileName, location)
	}
	mod, err := info.Mod(defaultFactorioVersion)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrModInvalid, "invalid mod %s", location)
	}
	mod.Location = location
	mod.Packed = packed
	return mod, nil
}

// Mod converts info into an inactive Mod.
func (i Info) Mod(defaultFactorioVersion string) (*types.Mod, error) {
	if i.Name == "" {
		return nil, errors.New(errors.ErrModInvalid, "info has no name")
	}
	version, err := semver.ParseVersion(i.Version)
	if err != nil {
		return nil, err
	}
	raw := i.FactorioVersion
	if raw == "" {
		raw = defaultFactorioVersion
	}
	fv, err := semver.FactorioVersion(raw)
	if err != nil {
		return nil, err
	}
	return &types.Mod{
		Name:            i.Name,
		Title:           i.Title,
		Author:          i.Author,
		Description:     i.Description,
		Version:         version,
		FactorioVersion: fv,
	}, nil
}

// Scan reads every mod under the mods directory. Entries that are not mods
// are logged and skipped.
func (s *Storage) Scan() ([]*types.Mod, error) {
	root := s.paths.ModsDir()
	dirs, err := s.fs.ReadDir(root)
	if err != nil {
		if !filesystem.Exists(s.fs, root) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrStorage, "failed to read %s", root)
	}

	var mods []*types.Mod
	for _, dir := range dirs {
		if !dir.IsDir() {
			continue
		}
		fv, err := semver.FactorioVersion(dir.Name())
		if err != nil {
			continue
		}
		entries, err := s.fs.ReadDir(filepath.Join(root, dir.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrStorage, "failed to read %s", dir.Name())
		}
		for _, entry := range entries {
			location := filepath.Join(root, dir.Name(), entry.Name())
			if !entry.IsDir() && !strings.EqualFold(filepath.Ext(entry.Name()), paths.ArchiveExtension) {
				continue
			}
			mod, err := s.ReadInfo(location, fv)
			if err != nil {
				s.logger.Warn().Err(err).Str("path", location).Msg("Skipping unreadable mod")
				continue
			}
			mods = append(mods, mod)
		}
	}

	s.logger.Debug().Int("mods", len(mods)).Msg("Storage scanned")
	return mods, nil
}

func (s *Storage) openZip(archive string) (*zip.Reader, error) {
	data, err := s.fs.ReadFile(archive)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", archive)
	}
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrModInvalid, "%s is not a zip archive", archive)
	}
	return reader, nil
}

func findInfo(reader *zip.Reader) ([]byte, error) {
	for _, f := range reader.File {
		if path.Base(f.Name) == InfoFileName && strings.Count(strings.Trim(f.Name, "/"), "/") <= 1 {
			return readZipFile(f)
		}
	}
	return nil, errors.Newf(errors.ErrNotFound, "%s not found", InfoFileName)
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}

// commonRoot returns the single top-level folder shared by every entry,
// including its trailing slash, or "".
func commonRoot(files []*zip.File) string {
	root := ""
	for _, f := range files {
		i := strings.Index(f.Name, "/")
		if i < 0 {
			return ""
		}
		top := f.Name[:i+1]
		if root == "" {
			root = top
		} else if root != top {
			return ""
		}
	}
	return root
}

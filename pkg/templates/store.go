package templates

import (
	"encoding/json"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/modkeeper/pkg/errors"
	"github.com/arthur-debert/modkeeper/pkg/logging"
	"github.com/arthur-debert/modkeeper/pkg/types"
)

// Locations is the subset of paths.Paths the file store needs.
type Locations interface {
	ModsDir() string
	ModListPath(factorioVersion string) string
	ModpacksPath() string
}

type modpacksFile struct {
	Modpacks []ModpackTemplate `toml:"modpacks"`
}

type fileStore struct {
	fs     types.FS
	paths  Locations
	logger zerolog.Logger
}

// NewFileStore creates a Store writing into the mods and data directories.
func NewFileStore(fs types.FS, paths Locations) Store {
	return &fileStore{
		fs:     fs,
		paths:  paths,
		logger: logging.GetLogger("templates"),
	}
}

func (s *fileStore) Save(lists ModLists, modpacks []ModpackTemplate) error {
	for _, fv := range lists.Versions() {
		data, err := json.MarshalIndent(lists[fv], "", "  ")
		if err != nil {
			return errors.Wrapf(err, errors.ErrTemplateSave, "failed to encode mod list for %s", fv)
		}
		if err := s.write(s.paths.ModListPath(fv), data); err != nil {
			return err
		}
	}

	if err := s.resetOrphans(lists); err != nil {
		return err
	}

	data, err := toml.Marshal(modpacksFile{Modpacks: modpacks})
	if err != nil {
		return errors.Wrap(err, errors.ErrTemplateSave, "failed to encode modpacks")
	}
	if err := s.write(s.paths.ModpacksPath(), data); err != nil {
		return err
	}

	s.logger.Debug().Int("factorioVersions", len(lists)).Int("modpacks", len(modpacks)).Msg("Templates saved")
	return nil
}

func (s *fileStore) Load() (ModLists, []ModpackTemplate, error) {
	lists := make(ModLists)

	entries, err := s.fs.ReadDir(s.paths.ModsDir())
	if err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			path := s.paths.ModListPath(entry.Name())
			data, err := s.fs.ReadFile(path)
			if err != nil {
				continue
			}
			var list ModList
			if err := json.Unmarshal(data, &list); err != nil {
				return nil, nil, errors.Wrapf(err, errors.ErrTemplateLoad, "invalid mod list %s", path)
			}
			lists[entry.Name()] = list
		}
	}

	var file modpacksFile
	data, err := s.fs.ReadFile(s.paths.ModpacksPath())
	if err == nil {
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, nil, errors.Wrapf(err, errors.ErrTemplateLoad, "invalid modpack file %s", s.paths.ModpacksPath())
		}
	}

	return lists, file.Modpacks, nil
}

// resetOrphans rewrites mod lists on disk whose Factorio version no longer
// has any mod, leaving only the base mod enabled.
func (s *fileStore) resetOrphans(lists ModLists) error {
	entries, err := s.fs.ReadDir(s.paths.ModsDir())
	if err != nil {
		return nil
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		fv := entry.Name()
		if _, ok := lists[fv]; ok {
			continue
		}
		path := s.paths.ModListPath(fv)
		if _, err := s.fs.Stat(path); err != nil {
			continue
		}
		data, err := json.MarshalIndent(EmptyModList(), "", "  ")
		if err != nil {
			return errors.Wrapf(err, errors.ErrTemplateSave, "failed to encode mod list for %s", fv)
		}
		if err := s.write(path, data); err != nil {
			return err
		}
		s.logger.Debug().Str("factorioVersion", fv).Msg("Mod list reset")
	}
	return nil
}

// write replaces path through a temporary sibling so readers never see a
// partial file.
func (s *fileStore) write(path string, data []byte) error {
	if err := s.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrTemplateSave, "failed to create %s", filepath.Dir(path))
	}
	tmp := path + ".tmp"
	if err := s.fs.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrTemplateSave, "failed to write %s", tmp)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return errors.Wrapf(err, errors.ErrTemplateSave, "failed to replace %s", path)
	}
	return nil
}

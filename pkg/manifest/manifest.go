package manifest

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/modkeeper/pkg/errors"
	"github.com/arthur-debert/modkeeper/pkg/semver"
	"github.com/arthur-debert/modkeeper/pkg/types"
)

// Extension is the default manifest file extension.
const Extension = ".fmp"

// Format selects a manifest encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// FormatFor picks the encoding from a file extension. Unknown extensions are
// read as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}

// ModEntry names one mod, optionally pinned to a version.
type ModEntry struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// ModpackEntry is one modpack with its member mods and nested modpacks.
type ModpackEntry struct {
	Name     string     `json:"name" yaml:"name"`
	Mods     []ModEntry `json:"mods,omitempty" yaml:"mods,omitempty"`
	Modpacks []string   `json:"modpacks,omitempty" yaml:"modpacks,omitempty"`
}

// Manifest is the portable description.
type Manifest struct {
	// IncludeVersionInfo pins every entry that carries a version. Without
	// it entries resolve to the latest release.
	IncludeVersionInfo bool           `json:"include_version_info" yaml:"include_version_info"`
	Mods               []ModEntry     `json:"mods" yaml:"mods"`
	Modpacks           []ModpackEntry `json:"modpacks" yaml:"modpacks"`
}

// Requirement is a resolved manifest mod entry. A zero Version means
// "latest".
type Requirement struct {
	Name    string
	Version semver.Version
}

// Pinned reports whether the requirement names an exact version.
func (r Requirement) Pinned() bool {
	return !r.Version.IsZero()
}

func (r Requirement) String() string {
	if r.Pinned() {
		return r.Name + "@" + r.Version.String()
	}
	return r.Name
}

// Decode parses data in format and validates it.
func Decode(data []byte, format Format) (*Manifest, error) {
	var m Manifest
	var err error
	switch format {
	case YAML:
		err = yaml.Unmarshal(data, &m)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&m)
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifest, "invalid %s manifest", format)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Encode renders m in format.
func Encode(m *Manifest, format Format) ([]byte, error) {
	var data []byte
	var err error
	switch format {
	case YAML:
		data, err = yaml.Marshal(m)
	default:
		data, err = json.MarshalIndent(m, "", "  ")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrManifest, "failed to encode manifest")
	}
	return data, nil
}

// ReadFile loads a manifest, choosing the encoding by extension.
func ReadFile(fs types.FS, path string) (*Manifest, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileNotFound, "failed to read manifest %s", path)
	}
	m, err := Decode(data, FormatFor(path))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifest, "manifest %s", path)
	}
	return m, nil
}

// WriteFile stores a manifest, choosing the encoding by extension.
func WriteFile(fs types.FS, path string, m *Manifest) error {
	data, err := Encode(m, FormatFor(path))
	if err != nil {
		return err
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(path))
	}
	if err := fs.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write manifest %s", path)
	}
	return nil
}

// Validate checks names and, when versions are in use, that they parse.
func (m *Manifest) Validate() error {
	check := func(e ModEntry, where string) error {
		if strings.TrimSpace(e.Name) == "" {
			return errors.Newf(errors.ErrManifest, "%s has a mod without a name", where)
		}
		if m.IncludeVersionInfo && e.Version != "" {
			if _, err := semver.ParseVersion(e.Version); err != nil {
				return errors.Wrapf(err, errors.ErrManifest, "%s: mod %s has invalid version %q", where, e.Name, e.Version)
			}
		}
		return nil
	}

	for _, e := range m.Mods {
		if err := check(e, "manifest"); err != nil {
			return err
		}
	}
	seen := make(map[string]bool)
	for _, p := range m.Modpacks {
		if strings.TrimSpace(p.Name) == "" {
			return errors.New(errors.ErrManifest, "manifest has a modpack without a name")
		}
		if seen[p.Name] {
			return errors.Newf(errors.ErrManifest, "modpack %q is listed twice", p.Name)
		}
		seen[p.Name] = true
		for _, e := range p.Mods {
			if err := check(e, "modpack "+p.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// Requirement converts an entry under the manifest's pinning rule.
func (m *Manifest) Requirement(e ModEntry) Requirement {
	req := Requirement{Name: strings.TrimSpace(e.Name)}
	if m.IncludeVersionInfo && e.Version != "" {
		req.Version, _ = semver.ParseVersion(e.Version)
	}
	return req
}

// Requirements returns every distinct mod the manifest needs, top-level
// entries first, then modpack members in order.
func (m *Manifest) Requirements() []Requirement {
	var out []Requirement
	seen := make(map[string]bool)
	add := func(e ModEntry) {
		req := m.Requirement(e)
		if key := req.String(); !seen[key] {
			seen[key] = true
			out = append(out, req)
		}
	}
	for _, e := range m.Mods {
		add(e)
	}
	for _, p := range m.Modpacks {
		for _, e := range p.Mods {
			add(e)
		}
	}
	return out
}

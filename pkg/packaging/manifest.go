package packaging

import (
	"io/fs"
	"time"

	"github.com/arthur-debert/instkit/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ManifestVersion is the manifest layout written by this package
const ManifestVersion = 1

// Manifest records what a build wrote into a volume set: the packs and,
// for every file, its logical offset in the decompressed stream.
type Manifest struct {
	Version int        `yaml:"version"`
	BuildID string     `yaml:"build_id"`
	Created time.Time  `yaml:"created"`
	Volumes int        `yaml:"volumes"`
	Size    int64      `yaml:"size"`
	Packs   []PackInfo `yaml:"packs"`
	Entries []Entry    `yaml:"entries"`
}

// PackInfo is the install-time view of a built pack
type PackInfo struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name,omitempty"`
	Condition string `yaml:"condition,omitempty"`
	Optional  bool   `yaml:"optional,omitempty"`
	Files     int    `yaml:"files"`
	Size      int64  `yaml:"size"`
}

// Entry locates one packaged file in the logical stream
type Entry struct {
	Pack     string      `yaml:"pack"`
	Path     string      `yaml:"path"`
	Mode     fs.FileMode `yaml:"mode"`
	Offset   int64       `yaml:"offset"`
	Size     int64       `yaml:"size"`
	Checksum string      `yaml:"checksum,omitempty"`
}

// Pack returns the pack with the given id
func (m *Manifest) Pack(id string) (PackInfo, bool) {
	for _, p := range m.Packs {
		if p.ID == id {
			return p, true
		}
	}
	return PackInfo{}, false
}

// PackIDs returns the pack ids in build order
func (m *Manifest) PackIDs() []string {
	ids := make([]string, len(m.Packs))
	for i, p := range m.Packs {
		ids[i] = p.ID
	}
	return ids
}

// Validate checks the manifest is usable for extraction: entries must be
// laid out back to back in offset order within the stream size.
func (m *Manifest) Validate() error {
	if m.Version != ManifestVersion {
		return errors.Newf(errors.ErrManifest, "unsupported manifest version %d", m.Version)
	}
	if m.Volumes < 1 {
		return errors.Newf(errors.ErrManifest, "manifest lists %d volumes", m.Volumes)
	}
	packs := make(map[string]bool, len(m.Packs))
	for _, p := range m.Packs {
		packs[p.ID] = true
	}

	var next int64
	for _, e := range m.Entries {
		if !packs[e.Pack] {
			return errors.Newf(errors.ErrManifest, "entry %s belongs to unknown pack %q", e.Path, e.Pack)
		}
		if e.Offset < next || e.Size < 0 {
			return errors.Newf(errors.ErrManifest, "entry %s overlaps the previous entry", e.Path).
				WithDetail("offset", e.Offset)
		}
		next = e.Offset + e.Size
	}
	if next > m.Size {
		return errors.Newf(errors.ErrManifest, "entries end at %d past stream size %d", next, m.Size)
	}
	return nil
}

// WriteManifest stores m as YAML at path
func WriteManifest(fsys afero.Fs, path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return errors.Wrap(err, errors.ErrManifest, "failed to encode manifest")
	}
	if err := afero.WriteFile(fsys, path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to write manifest %s", path)
	}
	return nil
}

// ReadManifest loads and validates the manifest at path
func ReadManifest(fsys afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "failed to read manifest %s", path)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifest, "failed to parse manifest %s", path)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

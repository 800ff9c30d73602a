package packaging

import (
	"path/filepath"

	"github.com/arthur-debert/instkit/pkg/errors"
	"github.com/arthur-debert/instkit/pkg/rules"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Pack describes one pack to build: a directory whose files are installed
// together, optionally gated by a condition.
type Pack struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name,omitempty"`
	Dir       string   `yaml:"dir"`
	Condition string   `yaml:"condition,omitempty"`
	Optional  bool     `yaml:"optional,omitempty"`
	Exclude   []string `yaml:"exclude,omitempty"`
}

// DisplayName returns the name, or the id when no name is set
func (p Pack) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// RulesPack returns the metadata the condition engine registers for p
func (p Pack) RulesPack() rules.Pack {
	return rules.Pack{ID: p.ID, Name: p.DisplayName(), Condition: p.Condition}
}

// Definition is the layout of a pack definition file
type Definition struct {
	Packs []Pack `yaml:"packs"`
}

// LoadPacks reads a YAML pack definition file. Relative pack directories
// are resolved against the file's directory.
func LoadPacks(fs afero.Fs, path string) ([]Pack, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "failed to read pack definitions %s", path)
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, errors.Wrapf(err, errors.ErrPackInvalid, "failed to parse pack definitions %s", path)
	}

	root := filepath.Dir(path)
	seen := make(map[string]bool, len(def.Packs))
	for i := range def.Packs {
		p := &def.Packs[i]
		if p.ID == "" {
			return nil, errors.Newf(errors.ErrPackInvalid, "pack %d has no id", i+1)
		}
		if seen[p.ID] {
			return nil, errors.Newf(errors.ErrPackInvalid, "duplicate pack id %q", p.ID)
		}
		seen[p.ID] = true
		if p.Dir == "" {
			p.Dir = p.ID
		}
		if !filepath.IsAbs(p.Dir) {
			p.Dir = filepath.Join(root, p.Dir)
		}
	}
	return def.Packs, nil
}

// RulesPacks converts pack definitions for rules.WithPacks
func RulesPacks(packs []Pack) []rules.Pack {
	out := make([]rules.Pack, len(packs))
	for i, p := range packs {
		out[i] = p.RulesPack()
	}
	return out
}

package volume

import (
	"path/filepath"

	"github.com/arthur-debert/instkit/pkg/errors"
	"github.com/arthur-debert/instkit/pkg/logging"
	"github.com/spf13/afero"
)

// Locator resolves a missing or corrupt volume to the path of a usable file.
// Implementations may block, e.g. while asking the user to insert a disc.
// Returning an error aborts the read.
type Locator interface {
	Volume(expectedPath string, corrupt bool) (string, error)
}

// LocatorFunc adapts a function to the Locator interface
type LocatorFunc func(expectedPath string, corrupt bool) (string, error)

// Volume calls f
func (f LocatorFunc) Volume(expectedPath string, corrupt bool) (string, error) {
	return f(expectedPath, corrupt)
}

// SearchLocator looks for a volume's file name in a list of directories,
// typically the mount points of removable media. Each candidate is offered
// once; when none is left the volume is reported as not found.
type SearchLocator struct {
	fs    afero.Fs
	dirs  []string
	tried map[string]bool
}

// NewSearchLocator creates a SearchLocator over dirs
func NewSearchLocator(fs afero.Fs, dirs ...string) *SearchLocator {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &SearchLocator{
		fs:    fs,
		dirs:  dirs,
		tried: make(map[string]bool),
	}
}

// Volume returns the first untried directory holding a file with the expected name
func (l *SearchLocator) Volume(expectedPath string, corrupt bool) (string, error) {
	logger := logging.GetLogger("volume.locator")
	l.tried[filepath.Clean(expectedPath)] = true

	name := filepath.Base(expectedPath)
	for _, dir := range l.dirs {
		candidate := filepath.Clean(filepath.Join(dir, name))
		if l.tried[candidate] {
			continue
		}
		l.tried[candidate] = true
		if _, err := l.fs.Stat(candidate); err != nil {
			continue
		}
		logger.Info().
			Str("expected", expectedPath).
			Str("found", candidate).
			Bool("corrupt", corrupt).
			Msg("Located substitute volume")
		return candidate, nil
	}

	code := errors.ErrVolumeNotFound
	if corrupt {
		code = errors.ErrCorruptVolume
	}
	return "", errors.Newf(code, "no usable copy of volume %s in search paths", name).
		WithDetail("path", expectedPath).
		WithDetail("searched", l.dirs)
}

package packaging

import (
	"io"
	"path/filepath"
	"time"

	"github.com/arthur-debert/instkit/pkg/errors"
	"github.com/arthur-debert/instkit/pkg/internal/hashutil"
	"github.com/arthur-debert/instkit/pkg/logging"
	"github.com/arthur-debert/instkit/pkg/paths"
	"github.com/arthur-debert/instkit/pkg/volume"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// BuilderOption configures a Builder
type BuilderOption func(*Builder)

// WithBuilderFS sets the filesystem packs are read from and volumes written to
func WithBuilderFS(fsys afero.Fs) BuilderOption {
	return func(b *Builder) { b.fs = fsys }
}

// WithVolumeOptions passes options to the volume writer
func WithVolumeOptions(opts ...volume.WriterOption) BuilderOption {
	return func(b *Builder) { b.volumeOpts = append(b.volumeOpts, opts...) }
}

// Builder writes packs into one spanning volume set plus a manifest
type Builder struct {
	fs         afero.Fs
	base       string
	volumeOpts []volume.WriterOption
	now        func() time.Time
	logger     zerolog.Logger
}

// NewBuilder creates a builder writing volumes at base, base.1, ...
func NewBuilder(base string, opts ...BuilderOption) *Builder {
	b := &Builder{
		fs:     afero.NewOsFs(),
		base:   base,
		now:    time.Now,
		logger: logging.GetLogger("packaging.builder"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ManifestPath returns where Build writes the manifest
func (b *Builder) ManifestPath() string {
	return paths.ManifestPath(b.base)
}

// Build writes every file of every pack, in pack order, into the volume
// set and records its logical offset. When the build fails, every volume
// it created and the manifest are removed.
func (b *Builder) Build(packs []Pack) (m *Manifest, err error) {
	done := logging.LogOperationStart(b.logger, "build")
	defer done()

	if dir := filepath.Dir(b.base); dir != "." {
		if err := b.fs.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, errors.ErrIO, "failed to create output directory %s", dir)
		}
	}

	opts := append([]volume.WriterOption{volume.WithWriterFS(b.fs)}, b.volumeOpts...)
	w, err := volume.NewWriter(b.base, opts...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = w.Close()
			b.cleanup(w.Paths())
		}
	}()

	m = &Manifest{
		Version: ManifestVersion,
		BuildID: uuid.NewString(),
		Created: b.now().UTC().Truncate(time.Second),
	}

	scanner := NewScanner(b.fs)
	for _, p := range packs {
		files, err := scanner.ScanPack(p)
		if err != nil {
			return nil, err
		}

		info := PackInfo{ID: p.ID, Name: p.Name, Condition: p.Condition, Optional: p.Optional}
		for _, f := range files {
			entry, err := b.writeFile(w, p, f)
			if err != nil {
				return nil, err
			}
			m.Entries = append(m.Entries, entry)
			info.Files++
			info.Size += entry.Size
		}
		m.Packs = append(m.Packs, info)

		b.logger.Info().
			Str("pack", p.ID).
			Int("files", info.Files).
			Int64("size", info.Size).
			Msg("Pack written")
	}

	if err = w.Close(); err != nil {
		return nil, err
	}
	m.Volumes = w.Volumes()
	m.Size = w.Written()

	if err = WriteManifest(b.fs, b.ManifestPath(), m); err != nil {
		return nil, err
	}

	b.logger.Info().
		Int("volumes", m.Volumes).
		Int("entries", len(m.Entries)).
		Int64("size", m.Size).
		Msg("Build complete")
	return m, nil
}

func (b *Builder) writeFile(w *volume.Writer, p Pack, f FileInfo) (Entry, error) {
	src := filepath.Join(p.Dir, filepath.FromSlash(f.Path))
	in, err := b.fs.Open(src)
	if err != nil {
		return Entry{}, errors.Wrapf(err, errors.ErrIO, "failed to open %s", src)
	}
	defer func() { _ = in.Close() }()

	entry := Entry{Pack: p.ID, Path: f.Path, Mode: f.Mode, Offset: w.Written()}
	sum := hashutil.NewWriter()
	n, err := io.Copy(w, io.TeeReader(in, sum))
	if err != nil {
		return Entry{}, errors.Wrapf(err, errors.ErrIO, "failed to package %s", src)
	}
	entry.Size = n
	entry.Checksum = sum.Sum()

	b.logger.Trace().
		Str("pack", p.ID).
		Str("path", f.Path).
		Int64("offset", entry.Offset).
		Int64("size", n).
		Msg("File written")
	return entry, nil
}

// cleanup removes a partial build
func (b *Builder) cleanup(volumes []string) {
	for _, path := range append(volumes, b.ManifestPath()) {
		if err := b.fs.Remove(path); err != nil && !isNotExist(b.fs, path) {
			b.logger.Warn().Err(err).Str("path", path).Msg("Failed to remove partial output")
		}
	}
	b.logger.Debug().Int("volumes", len(volumes)).Msg("Removed partial build")
}

func isNotExist(fsys afero.Fs, path string) bool {
	ok, err := afero.Exists(fsys, path)
	return err == nil && !ok
}

package packaging

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/instkit/pkg/errors"
	"github.com/arthur-debert/instkit/pkg/internal/hashutil"
	"github.com/arthur-debert/instkit/pkg/logging"
	"github.com/arthur-debert/instkit/pkg/volume"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// ExtractorOption configures an Extractor
type ExtractorOption func(*Extractor)

// WithExtractorFS sets the filesystem volumes are read from and files written to
func WithExtractorFS(fsys afero.Fs) ExtractorOption {
	return func(e *Extractor) { e.fs = fsys }
}

// WithExtractorLocator sets the locator asked for missing or corrupt volumes
func WithExtractorLocator(l volume.Locator) ExtractorOption {
	return func(e *Extractor) { e.locator = l }
}

// Extractor restores packs from a volume set using its manifest
type Extractor struct {
	fs       afero.Fs
	base     string
	manifest *Manifest
	locator  volume.Locator
	logger   zerolog.Logger
}

// ExtractResult summarizes an extraction
type ExtractResult struct {
	Packs []string
	Files int
	Bytes int64
}

// NewExtractor creates an extractor for the volume set at base
func NewExtractor(base string, m *Manifest, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		fs:       afero.NewOsFs(),
		base:     base,
		manifest: m,
		logger:   logging.GetLogger("packaging.extractor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract writes the files of the given packs below target. Entries are read
// in offset order, skipping over files of packs that are not requested.
func (e *Extractor) Extract(target string, packIDs []string) (*ExtractResult, error) {
	done := logging.LogOperationStart(e.logger, "extract")
	defer done()

	wanted := make(map[string]bool, len(packIDs))
	for _, id := range packIDs {
		if _, ok := e.manifest.Pack(id); !ok {
			return nil, errors.Newf(errors.ErrPackNotFound, "pack %q is not in the manifest", id).
				WithDetail("available", e.manifest.PackIDs())
		}
		wanted[id] = true
	}

	var entries []Entry
	for _, entry := range e.manifest.Entries {
		if wanted[entry.Pack] {
			entries = append(entries, entry)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Offset < entries[j].Offset })

	result := &ExtractResult{Packs: packIDs}
	if len(entries) == 0 {
		return result, nil
	}

	opts := []volume.ReaderOption{volume.WithReaderFS(e.fs)}
	if e.locator != nil {
		opts = append(opts, volume.WithLocator(e.locator))
	}
	r, err := volume.NewReader(e.base, e.manifest.Volumes, opts...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	for _, entry := range entries {
		if err := e.seek(r, entry.Offset); err != nil {
			return nil, err
		}
		if err := e.extractEntry(r, target, entry); err != nil {
			return nil, err
		}
		result.Files++
		result.Bytes += entry.Size
	}

	e.logger.Info().
		Strs("packs", packIDs).
		Int("files", result.Files).
		Int64("bytes", result.Bytes).
		Msg("Extraction complete")
	return result, nil
}

// seek skips forward to a logical offset
func (e *Extractor) seek(r *volume.Reader, offset int64) error {
	gap := offset - r.FilePointer()
	if gap < 0 {
		return errors.Newf(errors.ErrManifest, "entry offset %d is behind stream position %d", offset, r.FilePointer())
	}
	if gap == 0 {
		return nil
	}
	n, err := r.Skip(gap)
	if err != nil {
		return err
	}
	if n != gap {
		return errors.Newf(errors.ErrCorruptVolume, "stream ended at %d before offset %d", r.FilePointer(), offset)
	}
	return nil
}

func (e *Extractor) extractEntry(r *volume.Reader, target string, entry Entry) error {
	dest, err := destination(target, entry.Path)
	if err != nil {
		return err
	}
	if err := e.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to create directory for %s", dest)
	}

	mode := entry.Mode.Perm()
	if mode == 0 {
		mode = 0644
	}
	out, err := e.fs.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to create %s", dest)
	}

	sum := hashutil.NewWriter()
	n, err := io.CopyN(io.MultiWriter(out, sum), r, entry.Size)
	closeErr := out.Close()
	if err != nil {
		if err == io.EOF {
			return errors.Newf(errors.ErrCorruptVolume, "stream ended inside %s after %d of %d bytes", entry.Path, n, entry.Size)
		}
		return err
	}
	if closeErr != nil {
		return errors.Wrapf(closeErr, errors.ErrIO, "failed to write %s", dest)
	}
	if entry.Checksum != "" && sum.Sum() != entry.Checksum {
		return errors.Newf(errors.ErrCorruptVolume, "checksum mismatch for %s", entry.Path).
			WithDetail("expected", entry.Checksum).
			WithDetail("actual", sum.Sum())
	}

	e.logger.Trace().Str("pack", entry.Pack).Str("path", entry.Path).Msg("File extracted")
	return nil
}

// destination joins a manifest path below target, refusing paths that
// would escape it
func destination(target, rel string) (string, error) {
	if rel == "" || path.IsAbs(rel) || strings.Contains(rel, "\\") || path.Clean(rel) != rel {
		return "", errors.Newf(errors.ErrManifest, "invalid entry path %q", rel)
	}
	for _, part := range strings.Split(rel, "/") {
		if part == ".." {
			return "", errors.Newf(errors.ErrManifest, "entry path %q escapes the target", rel)
		}
	}
	return filepath.Join(target, filepath.FromSlash(rel)), nil
}

package volume

import (
	"os"

	"github.com/arthur-debert/instkit/pkg/errors"
	"github.com/arthur-debert/instkit/pkg/logging"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// WriterOption configures a Writer
type WriterOption func(*writerConfig)

type writerConfig struct {
	fs               afero.Fs
	maxVolumeSize    int64
	firstVolumeSpace int64
	level            int
}

// WithWriterFS sets the filesystem volumes are created on
func WithWriterFS(fs afero.Fs) WriterOption {
	return func(c *writerConfig) { c.fs = fs }
}

// WithMaxVolumeSize sets the byte budget of each volume file, magic number included
func WithMaxVolumeSize(size int64) WriterOption {
	return func(c *writerConfig) { c.maxVolumeSize = size }
}

// WithFirstVolumeReserve keeps size bytes of the first volume free, e.g. for
// data burned onto the first disc outside of the stream.
func WithFirstVolumeReserve(size int64) WriterOption {
	return func(c *writerConfig) { c.firstVolumeSpace = size }
}

// WithCompressionLevel sets the gzip compression level
func WithCompressionLevel(level int) WriterOption {
	return func(c *writerConfig) { c.level = level }
}

// Writer is the write side of a spanning stream. Bytes written are gzip
// compressed and the compressed bytes are partitioned across volume files.
type Writer struct {
	split   *splitWriter
	gz      *gzip.Writer
	written int64
	closed  bool
	logger  zerolog.Logger
}

// NewWriter creates the first volume at path and returns a Writer for the stream.
func NewWriter(path string, opts ...WriterOption) (*Writer, error) {
	cfg := writerConfig{
		fs:            afero.NewOsFs(),
		maxVolumeSize: DefaultMaxVolumeSize,
		level:         gzip.DefaultCompression,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.maxVolumeSize <= MagicNumberLength+1 {
		return nil, errors.Newf(errors.ErrConfigValid,
			"max volume size %d must exceed %d bytes", cfg.maxVolumeSize, MagicNumberLength+1).
			WithDetail("maxVolumeSize", cfg.maxVolumeSize)
	}
	if cfg.firstVolumeSpace < 0 || cfg.firstVolumeSpace >= cfg.maxVolumeSize-MagicNumberLength {
		return nil, errors.Newf(errors.ErrConfigValid,
			"first volume reserve %d leaves no payload in a volume of %d bytes", cfg.firstVolumeSpace, cfg.maxVolumeSize).
			WithDetail("firstVolumeReserve", cfg.firstVolumeSpace)
	}

	magic, err := NewMagicNumber()
	if err != nil {
		return nil, err
	}

	logger := logging.GetLogger("volume.writer")
	split := &splitWriter{
		fs:      cfg.fs,
		base:    path,
		maxSize: cfg.maxVolumeSize,
		reserve: cfg.firstVolumeSpace,
		magic:   magic,
		logger:  logger,
	}
	if err := split.open(0); err != nil {
		return nil, err
	}

	gz, err := gzip.NewWriterLevel(split, cfg.level)
	if err != nil {
		_ = split.Close()
		return nil, errors.Wrapf(err, errors.ErrConfigValid, "invalid compression level %d", cfg.level)
	}

	logger.Debug().
		Str("path", path).
		Int64("maxVolumeSize", cfg.maxVolumeSize).
		Int64("firstVolumeReserve", cfg.firstVolumeSpace).
		Msg("Opened spanning stream for writing")

	return &Writer{split: split, gz: gz, logger: logger}, nil
}

// Write compresses p into the stream, creating new volumes as needed
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errors.New(errors.ErrIO, "write to closed stream")
	}
	n, err := w.gz.Write(p)
	w.written += int64(n)
	return n, err
}

// Flush pushes pending compressed data down to the current volume without
// ending the stream.
func (w *Writer) Flush() error {
	if w.closed {
		return nil
	}
	if err := w.gz.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrIO, "flush failed")
	}
	return nil
}

// Close writes the gzip footer and closes the current volume. Only the first
// call has an effect.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	gzErr := w.gz.Close()
	splitErr := w.split.Close()
	if gzErr != nil {
		return errors.Wrap(gzErr, errors.ErrIO, "failed to finalize compressed stream")
	}
	if splitErr != nil {
		return splitErr
	}

	w.logger.Debug().
		Int("volumes", w.Volumes()).
		Int64("written", w.written).
		Msg("Closed spanning stream")
	return nil
}

// Volumes reports how many volume files have been created so far
func (w *Writer) Volumes() int {
	return w.split.index + 1
}

// Paths returns the paths of all volume files created so far
func (w *Writer) Paths() []string {
	out := make([]string, len(w.split.created))
	copy(out, w.split.created)
	return out
}

// Written returns the number of logical (uncompressed) bytes accepted
func (w *Writer) Written() int64 {
	return w.written
}

// Magic returns the stream's magic number
func (w *Writer) Magic() []byte {
	out := make([]byte, len(w.split.magic))
	copy(out, w.split.magic)
	return out
}

// splitWriter partitions raw bytes across volume files
type splitWriter struct {
	fs      afero.Fs
	base    string
	maxSize int64
	reserve int64
	magic   []byte

	file    afero.File
	index   int
	current int64
	created []string
	logger  zerolog.Logger
}

// capacity returns how many more bytes fit into the current volume
func (s *splitWriter) capacity() int64 {
	avail := s.maxSize - s.current
	if s.index == 0 {
		avail -= s.reserve
	}
	return avail
}

func (s *splitWriter) Write(p []byte) (int, error) {
	if s.file == nil {
		return 0, errors.New(errors.ErrIO, "write to closed volume")
	}

	total := 0
	for len(p) > 0 {
		avail := s.capacity()
		if avail <= 0 {
			if err := s.next(); err != nil {
				return total, err
			}
			continue
		}

		chunk := p
		if int64(len(chunk)) > avail {
			chunk = chunk[:avail]
		}
		n, err := s.file.Write(chunk)
		total += n
		s.current += int64(n)
		if err != nil {
			return total, errors.Wrapf(err, errors.ErrIO, "failed to write volume %s", Path(s.base, s.index))
		}
		p = p[n:]
	}
	return total, nil
}

// next closes the current volume and opens the following one
func (s *splitWriter) next() error {
	if err := s.closeFile(); err != nil {
		return err
	}
	return s.open(s.index + 1)
}

// open creates volume index and writes the magic number header
func (s *splitWriter) open(index int) error {
	path := Path(s.base, index)
	f, err := s.fs.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to create volume %s", path)
	}
	s.created = append(s.created, path)

	if _, err := f.Write(s.magic); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, errors.ErrIO, "failed to write header of volume %s", path)
	}

	s.file = f
	s.index = index
	s.current = int64(len(s.magic))

	s.logger.Debug().Int("volume", index).Str("path", path).Msg("Opened volume")
	return nil
}

func (s *splitWriter) closeFile() error {
	if s.file == nil {
		return nil
	}
	path := s.file.Name()
	err := s.file.Close()
	s.file = nil
	if err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to close volume %s", path)
	}
	return nil
}

func (s *splitWriter) Close() error {
	return s.closeFile()
}

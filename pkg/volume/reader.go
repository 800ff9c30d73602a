package volume

import (
	"io"
	"os"

	"github.com/arthur-debert/instkit/pkg/errors"
	"github.com/arthur-debert/instkit/pkg/logging"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// ReaderOption configures a Reader
type ReaderOption func(*readerConfig)

type readerConfig struct {
	fs      afero.Fs
	locator Locator
}

// WithReaderFS sets the filesystem volumes are read from
func WithReaderFS(fs afero.Fs) ReaderOption {
	return func(c *readerConfig) { c.fs = fs }
}

// WithLocator sets the collaborator consulted when a volume is missing or corrupt
func WithLocator(l Locator) ReaderOption {
	return func(c *readerConfig) { c.locator = l }
}

// Reader is the read side of a spanning stream
type Reader struct {
	span    *spanReader
	gz      *gzip.Reader
	pos     int64
	closed  bool
	oneByte [1]byte
}

// NewReader opens the first volume at path of a stream made of volumes files.
func NewReader(path string, volumes int, opts ...ReaderOption) (*Reader, error) {
	cfg := readerConfig{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(&cfg)
	}

	if volumes < 1 {
		return nil, errors.Newf(errors.ErrConfigValid, "volume count must be at least 1, got %d", volumes)
	}

	f, err := cfg.fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrVolumeNotFound, "first volume %s not found", path).
				WithDetail("path", path)
		}
		return nil, errors.Wrapf(err, errors.ErrIO, "failed to open volume %s", path)
	}

	magic, ok := readMagic(f)
	if !ok {
		_ = f.Close()
		return nil, errors.Newf(errors.ErrCorruptVolume, "volume %s is too short to hold a magic number", path).
			WithDetail("path", path)
	}

	span := &spanReader{
		fs:      cfg.fs,
		base:    path,
		volumes: volumes,
		magic:   magic,
		file:    f,
		locator: cfg.locator,
		logger:  logging.GetLogger("volume.reader"),
	}

	gz, err := gzip.NewReader(span)
	if err != nil {
		_ = span.Close()
		return nil, span.failure(err, "invalid compressed stream header")
	}

	span.logger.Debug().Str("path", path).Int("volumes", volumes).Msg("Opened spanning stream for reading")
	return &Reader{span: span, gz: gz}, nil
}

// Read reads decompressed bytes, advancing across volumes as needed
func (r *Reader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, errors.New(errors.ErrIO, "read from closed stream")
	}
	n, err := r.gz.Read(p)
	r.pos += int64(n)
	if err != nil && err != io.EOF {
		return n, r.span.failure(err, "failed to read compressed stream")
	}
	return n, err
}

// ReadByte reads a single decompressed byte
func (r *Reader) ReadByte() (byte, error) {
	for {
		n, err := r.Read(r.oneByte[:])
		if n == 1 {
			return r.oneByte[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// Skip discards up to n logical bytes and returns how many were skipped.
// Reaching the end of the stream early is not an error.
func (r *Reader) Skip(n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	skipped, err := io.CopyN(io.Discard, r, n)
	if err == io.EOF {
		return skipped, nil
	}
	return skipped, err
}

// FilePointer returns the number of logical bytes consumed across all volumes
func (r *Reader) FilePointer() int64 {
	return r.pos
}

// Volumes returns the expected number of volumes
func (r *Reader) Volumes() int {
	return r.span.volumes
}

// CurrentVolume returns the zero-based index of the volume being read
func (r *Reader) CurrentVolume() int {
	return r.span.index
}

// Close releases the open volume
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.span.Close()
}

// spanReader concatenates the payloads of consecutive volumes
type spanReader struct {
	fs      afero.Fs
	base    string
	volumes int
	index   int
	magic   []byte
	file    afero.File
	locator Locator
	err     error
	logger  zerolog.Logger
}

func (s *spanReader) Read(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	for {
		if s.file == nil {
			return 0, io.EOF
		}
		n, err := s.file.Read(p)
		if n > 0 {
			return n, nil
		}
		if err == nil {
			continue
		}
		if err != io.EOF {
			s.err = errors.Wrapf(err, errors.ErrIO, "failed to read volume %s", Path(s.base, s.index))
			return 0, s.err
		}
		if s.index >= s.volumes-1 {
			return 0, io.EOF
		}
		if err := s.advance(); err != nil {
			s.err = err
			return 0, err
		}
	}
}

// advance replaces the current volume with the next one, consulting the
// locator when the expected file is missing or corrupt.
func (s *spanReader) advance() error {
	expected := Path(s.base, s.index+1)
	candidate := expected

	for {
		f, code := s.openVolume(candidate)
		if f != nil {
			if err := s.file.Close(); err != nil {
				s.logger.Warn().Err(err).Int("volume", s.index).Msg("Failed to close previous volume")
			}
			s.file = f
			s.index++
			s.logger.Debug().Int("volume", s.index).Str("path", candidate).Msg("Advanced to next volume")
			return nil
		}

		corrupt := code == errors.ErrCorruptVolume
		s.logger.Warn().
			Str("path", candidate).
			Bool("corrupt", corrupt).
			Msg("Volume unavailable")

		if s.locator == nil {
			if corrupt {
				return errors.Newf(errors.ErrCorruptVolume, "volume %s is corrupt", candidate).
					WithDetail("path", candidate).
					WithDetail("index", s.index+1)
			}
			return errors.Newf(errors.ErrVolumeNotFound, "volume %s not found", candidate).
				WithDetail("path", candidate).
				WithDetail("index", s.index+1)
		}

		next, err := s.locator.Volume(expected, corrupt)
		if err != nil {
			if errors.GetErrorCode(err) != errors.ErrUnknown {
				return err
			}
			return errors.Wrapf(err, code, "could not locate volume %s", expected)
		}
		candidate = next
	}
}

// openVolume opens path and validates its magic number. On failure it
// returns the error code describing why the volume cannot be used.
func (s *spanReader) openVolume(path string) (afero.File, errors.ErrorCode) {
	if _, err := s.fs.Stat(path); err != nil {
		return nil, errors.ErrVolumeNotFound
	}
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, errors.ErrCorruptVolume
	}
	magic, ok := readMagic(f)
	if !ok || !sameMagic(magic, s.magic) {
		_ = f.Close()
		return nil, errors.ErrCorruptVolume
	}
	return f, ""
}

// failure prefers the error recorded while spanning volumes over whatever
// the decompressor made of it.
func (s *spanReader) failure(err error, message string) error {
	if s.err != nil {
		return s.err
	}
	if errors.GetErrorCode(err) != errors.ErrUnknown {
		return err
	}
	if err == gzip.ErrHeader || err == gzip.ErrChecksum || err == io.ErrUnexpectedEOF {
		return errors.Wrap(err, errors.ErrCorruptVolume, message)
	}
	return errors.Wrap(err, errors.ErrIO, message)
}

func (s *spanReader) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	if err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to close volume %s", Path(s.base, s.index))
	}
	return nil
}

package volume

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/arthur-debert/instkit/pkg/errors"
)

const (
	// MagicNumberLength is the size of the prefix shared by all volumes of a stream
	MagicNumberLength = 10

	// DefaultMaxVolumeSize fits one volume on a CD
	DefaultMaxVolumeSize int64 = 650 * 1000 * 1000
)

// NewMagicNumber returns a random magic number for a new stream
func NewMagicNumber() ([]byte, error) {
	magic := make([]byte, MagicNumberLength)
	if _, err := rand.Read(magic); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to generate magic number")
	}
	return magic, nil
}

// readMagic reads the magic number at the start of r. ok is false when fewer
// than MagicNumberLength bytes could be read.
func readMagic(r io.Reader) (magic []byte, ok bool) {
	magic = make([]byte, MagicNumberLength)
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, false
	}
	return magic, true
}

func sameMagic(a, b []byte) bool {
	return len(a) == MagicNumberLength && bytes.Equal(a, b)
}

// Path returns the file name of the volume with the given zero-based index
func Path(base string, index int) string {
	if index == 0 {
		return base
	}
	return fmt.Sprintf("%s.%d", base, index)
}

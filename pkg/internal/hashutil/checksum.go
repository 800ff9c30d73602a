package hashutil

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"io"

	"github.com/spf13/afero"
)

// Prefix names the algorithm in every checksum string
const Prefix = "sha256:"

// Writer accumulates the checksum of everything written to it
type Writer struct {
	h hash.Hash
}

// NewWriter returns an empty checksum writer
func NewWriter() *Writer {
	return &Writer{h: sha256.New()}
}

// Write never fails
func (w *Writer) Write(p []byte) (int, error) {
	return w.h.Write(p)
}

// Sum returns the checksum of the data written so far
func (w *Writer) Sum() string {
	return fmt.Sprintf("%s%x", Prefix, w.h.Sum(nil))
}

// Checksum reads r to the end and returns its checksum
func Checksum(r io.Reader) (string, error) {
	w := NewWriter()
	if _, err := io.Copy(w, r); err != nil {
		return "", err
	}
	return w.Sum(), nil
}

// FileChecksum calculates the checksum of a file
func FileChecksum(fs afero.Fs, path string) (string, error) {
	file, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = file.Close()
	}()
	return Checksum(file)
}

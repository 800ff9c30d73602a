// Test Type: Property Test
// Description: Round trip and position invariants over generated payloads and volume sizes

package volume

import (
	"bytes"
	"io"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/spf13/afero"
)

// TestRoundTripProperty verifies write-then-read returns the original bytes.
// Property: Read(Write(data, M)) == data for any data and M > magic+1
func TestRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("spanned payload survives a round trip", prop.ForAll(
		func(data []byte, maxSize int64, reserve int64) bool {
			if reserve >= maxSize-MagicNumberLength {
				reserve = 0
			}
			fs := afero.NewMemMapFs()
			w, err := NewWriter(testBase, WithWriterFS(fs), WithMaxVolumeSize(maxSize), WithFirstVolumeReserve(reserve))
			if err != nil {
				return false
			}
			if _, err := w.Write(data); err != nil {
				return false
			}
			if err := w.Close(); err != nil {
				return false
			}

			r, err := NewReader(testBase, w.Volumes(), WithReaderFS(fs))
			if err != nil {
				return false
			}
			defer func() { _ = r.Close() }()
			got, err := io.ReadAll(r)
			if err != nil {
				return false
			}
			return bytes.Equal(data, got) && r.FilePointer() == int64(len(data))
		},
		gen.SliceOf(gen.UInt8()),
		gen.Int64Range(MagicNumberLength+2, 200),
		gen.Int64Range(0, 40),
	))

	properties.TestingRun(t)
}

// TestFilePointerProperty verifies the logical offset after arbitrary reads.
// Property: FilePointer() == bytes consumed, whatever the volume boundaries
func TestFilePointerProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	data := randomBytes(2048, 42)
	fs := afero.NewMemMapFs()
	w := writeStream(t, fs, data, WithMaxVolumeSize(48))

	properties.Property("file pointer tracks consumed bytes", prop.ForAll(
		func(chunks []int) bool {
			r, err := NewReader(testBase, w.Volumes(), WithReaderFS(fs))
			if err != nil {
				return false
			}
			defer func() { _ = r.Close() }()

			var consumed int64
			for i, size := range chunks {
				if i%2 == 0 {
					buf := make([]byte, size)
					n, err := io.ReadFull(r, buf)
					if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
						return false
					}
					if !bytes.Equal(buf[:n], data[consumed:consumed+int64(n)]) {
						return false
					}
					consumed += int64(n)
				} else {
					n, err := r.Skip(int64(size))
					if err != nil {
						return false
					}
					consumed += n
				}
				if r.FilePointer() != consumed {
					return false
				}
			}
			return consumed <= int64(len(data))
		},
		gen.SliceOf(gen.IntRange(0, 300)),
	))

	properties.TestingRun(t)
}

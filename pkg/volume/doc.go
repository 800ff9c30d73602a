// Package volume implements a multi-volume spanning stream: one logical,
// gzip-compressed byte stream stored across a sequence of size-bounded files.
//
// # Layout
//
// Volumes share a base path. The first volume uses the base path itself, the
// following ones append a numeric suffix:
//
//	data.pak      volume 0
//	data.pak.1    volume 1
//	data.pak.2    volume 2
//
// Every volume starts with the same 10-byte magic number, generated once per
// stream. The remainder of each file is a slice of the gzip member that wraps
// the logical payload, so concatenating all volumes minus their magic prefix
// yields one valid gzip stream.
//
// # Writing
//
// Writer compresses through gzip into a splitting layer that opens the next
// volume only when the current one is full. The first volume may reserve free
// space for out-of-band data.
//
// # Reading
//
// Reader decompresses over a spanning layer that advances through the volumes.
// When the next volume is missing or its magic number does not match, an
// optional Locator is asked for a substitute path; without one the read fails
// with a CORRUPT_VOLUME or VOLUME_NOT_FOUND error. FilePointer always reports
// the logical (decompressed) offset across the whole span.
package volume

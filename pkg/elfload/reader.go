package elfload

import "bytes"

// newReaderAt adapts a raw byte slice to the io.ReaderAt debug/elf's
// NewFile wants, so callers can load from an in-memory []byte (e.g.
// bytes already read off disk or embedded for testing) rather than
// being forced through debug/elf.Open's own file-path-only entry
// point.
func newReaderAt(raw []byte) *bytes.Reader {
	return bytes.NewReader(raw)
}

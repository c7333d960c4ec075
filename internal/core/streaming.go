package core

// streaming.go provides streaming readers that clean CSV input before it
// reaches encoding/csv:
//
//   - BOMSkippingReader: drops a leading UTF-8 BOM (0xEF 0xBB 0xBF)
//   - UTF8Sanitizer: replaces invalid UTF-8 bytes with '?'
//
// Use CleanCSVReader to apply both in the correct order.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BOMSkippingReader wraps an io.Reader and skips the UTF-8 BOM if present.
type BOMSkippingReader struct {
	br      *bufio.Reader
	checked bool
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{br: bufio.NewReader(r)}
}

// Read implements io.Reader. The BOM check happens on the first call.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		head, err := r.br.Peek(len(utf8BOM))
		if bytes.Equal(head, utf8BOM) {
			_, _ = r.br.Discard(len(utf8BOM))
		} else if err != nil && err != io.EOF && len(head) == 0 {
			return 0, err
		}
	}
	return r.br.Read(p)
}

// UTF8Sanitizer wraps an io.Reader and replaces each invalid UTF-8 byte
// with '?'. Multi-byte sequences split across reads are reassembled, so
// memory use stays bounded by the buffer size.
type UTF8Sanitizer struct {
	br  *bufio.Reader
	buf []byte // sanitized bytes not yet returned
}

// NewUTF8Sanitizer creates a streaming UTF-8 sanitizer.
func NewUTF8Sanitizer(r io.Reader) *UTF8Sanitizer {
	return &UTF8Sanitizer{br: bufio.NewReader(r)}
}

// Read implements io.Reader.
func (s *UTF8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	var err error
	for len(s.buf) < len(p) {
		var (
			r    rune
			size int
		)
		r, size, err = s.br.ReadRune()
		if err != nil {
			break
		}
		if r == utf8.RuneError && size == 1 {
			s.buf = append(s.buf, '?')
			continue
		}
		s.buf = utf8.AppendRune(s.buf, r)
	}

	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	if n > 0 {
		return n, nil
	}
	return 0, err
}

// CleanCSVReader strips a BOM and then sanitizes UTF-8.
func CleanCSVReader(r io.Reader) io.Reader {
	return NewUTF8Sanitizer(NewBOMSkippingReader(r))
}

package core

// streaming.go provides the reader chain applied to uploaded CSV bytes
// before decoding:
//
//   - SizeLimitReader: fails once more than the allowed bytes are read
//   - BOMSkippingReader: drops a leading UTF-8 BOM written by Excel
//   - UTF8Sanitizer: replaces invalid UTF-8 with U+FFFD
//
// Use WrapForDecoding to apply all three in the correct order.

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// ErrInputTooLarge is returned by SizeLimitReader once the limit is passed.
var ErrInputTooLarge = errors.New("file too large")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SizeLimitReader reads at most Limit bytes from R and returns
// ErrInputTooLarge if R has more.
type SizeLimitReader struct {
	R     io.Reader
	Limit int64
	n     int64
}

func (l *SizeLimitReader) Read(p []byte) (int, error) {
	if l.n > l.Limit {
		return 0, fmt.Errorf("%w: more than %d bytes", ErrInputTooLarge, l.Limit)
	}
	// Allow one byte past the limit so an exact-size input still sees EOF.
	if remaining := l.Limit - l.n + 1; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := l.R.Read(p)
	l.n += int64(n)
	if l.n > l.Limit {
		return 0, fmt.Errorf("%w: more than %d bytes", ErrInputTooLarge, l.Limit)
	}
	return n, err
}

// BOMSkippingReader drops a UTF-8 byte order mark at the start of the stream.
type BOMSkippingReader struct {
	br      *bufio.Reader
	checked bool
}

// NewBOMSkippingReader wraps r.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{br: bufio.NewReader(r)}
}

func (b *BOMSkippingReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		head, err := b.br.Peek(len(utf8BOM))
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, err
		}
		if bytes.Equal(head, utf8BOM) {
			b.br.Discard(len(utf8BOM))
		}
	}
	return b.br.Read(p)
}

// UTF8Sanitizer replaces invalid UTF-8 sequences with U+FFFD as it reads.
// A multi-byte rune split across reads is held back until complete.
type UTF8Sanitizer struct {
	r       io.Reader
	in      []byte
	out     bytes.Buffer
	pending []byte
	err     error
}

// NewUTF8Sanitizer wraps r.
func NewUTF8Sanitizer(r io.Reader) *UTF8Sanitizer {
	return &UTF8Sanitizer{r: r, in: make([]byte, 32*1024)}
}

func (s *UTF8Sanitizer) Read(p []byte) (int, error) {
	for s.out.Len() == 0 && s.err == nil {
		n, err := s.r.Read(s.in)
		s.err = err
		data := append(s.pending, s.in[:n]...)
		s.pending = nil
		atEOF := err != nil
		s.sanitize(data, atEOF)
	}
	if s.out.Len() > 0 {
		return s.out.Read(p)
	}
	return 0, s.err
}

func (s *UTF8Sanitizer) sanitize(data []byte, atEOF bool) {
	for len(data) > 0 {
		if data[0] < utf8.RuneSelf {
			s.out.WriteByte(data[0])
			data = data[1:]
			continue
		}
		if !atEOF && !utf8.FullRune(data) {
			s.pending = append([]byte(nil), data...)
			return
		}
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			s.out.WriteRune(utf8.RuneError)
		} else {
			s.out.Write(data[:size])
		}
		data = data[size:]
	}
}

// WrapForDecoding applies the size limit, BOM removal and UTF-8 sanitizing.
// The limit counts raw input bytes.
func WrapForDecoding(r io.Reader, limit int64) io.Reader {
	limited := &SizeLimitReader{R: r, Limit: limit}
	return NewUTF8Sanitizer(NewBOMSkippingReader(limited))
}

package sheet

// textreader.go holds the io.Reader wrappers applied to CSV uploads before
// parsing:
//
//   - bomReader drops a leading UTF-8 BOM (0xEF 0xBB 0xBF) written by Excel
//   - utf8Sanitizer replaces invalid UTF-8 bytes with '?' as it streams
//   - limitedReader fails once more than the allowed number of bytes is read
//
// Use wrapCSV to apply them in order.

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// ErrFileTooLarge is returned once an upload exceeds its byte limit.
var ErrFileTooLarge = errors.New("file too large")

// bomReader skips a UTF-8 BOM at the start of the stream.
type bomReader struct {
	r       io.Reader
	checked bool
	head    []byte
}

func newBOMReader(r io.Reader) *bomReader {
	return &bomReader{r: r}
}

func (b *bomReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		var buf [3]byte
		n, err := io.ReadFull(b.r, buf[:])
		switch {
		case n == 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF:
		case n > 0:
			b.head = append(b.head, buf[:n]...)
		}
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return 0, err
		}
	}

	if len(b.head) > 0 {
		n := copy(p, b.head)
		b.head = b.head[n:]
		return n, nil
	}
	return b.r.Read(p)
}

// utf8Sanitizer rewrites invalid UTF-8 in place. A multi-byte sequence
// split across reads is held back until the next call.
type utf8Sanitizer struct {
	r       io.Reader
	pending []byte
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{r: r, pending: make([]byte, 0, utf8.UTFMax)}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	offset := copy(p, s.pending)
	s.pending = s.pending[:0]

	n, err := s.r.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}

	return s.sanitize(p[:n], err == io.EOF), err
}

func (s *utf8Sanitizer) sanitize(data []byte, atEOF bool) int {
	write := 0
	for read := 0; read < len(data); {
		if data[read] < utf8.RuneSelf {
			data[write] = data[read]
			write++
			read++
			continue
		}

		if !atEOF && !utf8.FullRune(data[read:]) {
			s.pending = append(s.pending, data[read:]...)
			return write
		}

		r, size := utf8.DecodeRune(data[read:])
		if r == utf8.RuneError && size == 1 {
			data[write] = '?'
			write++
			read++
			continue
		}
		copy(data[write:], data[read:read+size])
		write += size
		read += size
	}
	return write
}

// limitedReader counts bytes and fails with ErrFileTooLarge past max.
// A max of zero disables the limit.
type limitedReader struct {
	r    io.Reader
	max  int64
	read int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.read += int64(n)
	if l.max > 0 && l.read > l.max {
		return n, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, l.max)
	}
	return n, err
}

// wrapCSV prepares a CSV stream for encoding/csv. charset names a legacy
// encoding ("windows-1252", "shift_jis", ...) to decode from; empty or
// utf-8 means the input is already UTF-8.
func wrapCSV(r io.Reader, charset string, maxBytes int64) (io.Reader, error) {
	r = &limitedReader{r: r, max: maxBytes}

	charset = strings.TrimSpace(charset)
	if charset != "" && !strings.EqualFold(charset, "utf-8") && !strings.EqualFold(charset, "utf8") {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
		}
		r = transform.NewReader(r, enc.NewDecoder())
	}

	return newUTF8Sanitizer(newBOMReader(r)), nil
}

// Package text provides the plain text archive format.
//
// The stream is a line of space separated tokens, read back positionally. Numbers
// are decimal, bools are 0 or 1, and strings are written as their byte length
// followed by a space and the raw bytes, so they may hold any content. []byte
// values are written like strings holding their base64 encoding.
package text

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/zoobzio/pantry"
	"github.com/zoobzio/pantry/base64"
	"github.com/zoobzio/pantry/internal/tree"
)

// ContentType is the MIME type of the format.
const ContentType = "text/plain"

const (
	maxToken = 64
	chunk    = 64 << 10
)

// textFormat implements pantry.Format for the text encoding.
type textFormat struct{}

// New returns the text format.
func New() pantry.Format {
	return &textFormat{}
}

// ContentType returns the MIME type for the text format.
func (f *textFormat) ContentType() string {
	return ContentType
}

// NewWriter returns a writer producing a token stream on w.
func (f *textFormat) NewWriter(w io.Writer) pantry.Writer {
	return &writer{out: bufio.NewWriter(w)}
}

// NewReader returns a reader consuming a token stream from r.
func (f *textFormat) NewReader(r io.Reader) (pantry.Reader, error) {
	return &reader{in: bufio.NewReader(r)}, nil
}

type writer struct {
	out    *bufio.Writer
	tokens int
}

func (w *writer) ContentType() string { return ContentType }

func (w *writer) token(s string) error {
	if w.tokens > 0 {
		if err := w.out.WriteByte(' '); err != nil {
			return err
		}
	}
	w.tokens++
	_, err := w.out.WriteString(s)
	return err
}

func (w *writer) BeginObject(string) error { return nil }
func (w *writer) EndObject() error         { return nil }

func (w *writer) BeginArray(_ string, size int) error {
	return w.token(strconv.Itoa(size))
}

func (w *writer) EndArray() error { return nil }

func (w *writer) WriteBool(_ string, v bool) error {
	if v {
		return w.token("1")
	}
	return w.token("0")
}

func (w *writer) WriteInt(_ string, v int64) error {
	return w.token(strconv.FormatInt(v, 10))
}

func (w *writer) WriteUint(_ string, v uint64) error {
	return w.token(strconv.FormatUint(v, 10))
}

func (w *writer) WriteFloat(_ string, v float64, bits int) error {
	switch {
	case math.IsNaN(v):
		return w.token("nan")
	case math.IsInf(v, 1):
		return w.token("inf")
	case math.IsInf(v, -1):
		return w.token("-inf")
	}
	return w.token(strconv.FormatFloat(v, 'g', -1, bits))
}

func (w *writer) WriteString(_ string, v string) error {
	if err := w.token(strconv.Itoa(len(v))); err != nil {
		return err
	}
	if err := w.out.WriteByte(' '); err != nil {
		return err
	}
	_, err := w.out.WriteString(v)
	return err
}

func (w *writer) WriteBytes(name string, v []byte) error {
	return w.WriteString(name, base64.Std.EncodeToString(v))
}

// Close ends the line and flushes.
func (w *writer) Close() error {
	if err := w.out.WriteByte('\n'); err != nil {
		return err
	}
	return w.out.Flush()
}

type reader struct {
	in *bufio.Reader
}

func (r *reader) ContentType() string { return ContentType }

func (r *reader) malformed(err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return pantry.NewFormatError(ContentType, err)
}

func space(c byte) bool {
	return c == ' ' || c == '\n' || c == '\t' || c == '\r'
}

// token reads the next whitespace delimited token.
func (r *reader) token() (string, error) {
	var c byte
	var err error
	for {
		if c, err = r.in.ReadByte(); err != nil {
			return "", r.malformed(err)
		}
		if !space(c) {
			break
		}
	}

	buf := []byte{c}
	for {
		c, err = r.in.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", r.malformed(err)
		}
		if space(c) {
			if err := r.in.UnreadByte(); err != nil {
				return "", r.malformed(err)
			}
			break
		}
		if len(buf) == maxToken {
			return "", r.malformed(fmt.Errorf("token longer than %d bytes", maxToken))
		}
		buf = append(buf, c)
	}
	return string(buf), nil
}

func (r *reader) number(s string, err error) error {
	if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
		return fmt.Errorf("%w: %s", pantry.ErrOverflow, s)
	}
	return r.malformed(err)
}

func (r *reader) length() (int, error) {
	tok, err := r.token()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(tok)
	if err != nil || n < 0 {
		return 0, r.malformed(fmt.Errorf("invalid length %q", tok))
	}
	return n, nil
}

func (r *reader) BeginObject(string) error { return nil }
func (r *reader) EndObject() error         { return nil }

func (r *reader) BeginArray(string) (int, error) {
	return r.length()
}

func (r *reader) EndArray() error { return nil }

func (r *reader) ReadBool(string) (bool, error) {
	tok, err := r.token()
	if err != nil {
		return false, err
	}
	switch tok {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, r.malformed(fmt.Errorf("invalid bool %q", tok))
}

func (r *reader) ReadInt(string) (int64, error) {
	tok, err := r.token()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, r.number(tok, err)
	}
	return v, nil
}

func (r *reader) ReadUint(string) (uint64, error) {
	tok, err := r.token()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(tok, 10, 64)
	if err != nil {
		return 0, r.number(tok, err)
	}
	return v, nil
}

func (r *reader) ReadFloat(_ string, bits int) (float64, error) {
	tok, err := r.token()
	if err != nil {
		return 0, err
	}
	if v, ok := tree.ParseSpecialFloat(tok); ok {
		return v, nil
	}
	v, err := strconv.ParseFloat(tok, bits)
	if err != nil {
		return 0, r.number(tok, err)
	}
	return v, nil
}

func (r *reader) ReadString(string) (string, error) {
	n, err := r.length()
	if err != nil {
		return "", err
	}
	sep, err := r.in.ReadByte()
	if err != nil {
		return "", r.malformed(err)
	}
	if sep != ' ' {
		return "", r.malformed(fmt.Errorf("expected a space after string length, got %q", sep))
	}

	buf := make([]byte, 0, min(n, chunk))
	for len(buf) < n {
		step := min(n-len(buf), chunk)
		start := len(buf)
		buf = append(buf, make([]byte, step)...)
		if _, err := io.ReadFull(r.in, buf[start:]); err != nil {
			return "", r.malformed(err)
		}
	}
	return string(buf), nil
}

func (r *reader) ReadBytes(name string) ([]byte, error) {
	s, err := r.ReadString(name)
	if err != nil {
		return nil, err
	}
	b, err := base64.Std.DecodeString(s)
	if err != nil {
		return nil, r.malformed(err)
	}
	return b, nil
}

func (r *reader) Close() error { return nil }

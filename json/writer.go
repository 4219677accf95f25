package json

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/zoobzio/pantry"
	"github.com/zoobzio/pantry/base64"
)

const hex = "0123456789abcdef"

// writer streams a pretty printed JSON document.
type writer struct {
	out    *bufio.Writer
	indent int
	frames []frame
	err    error
	closed bool
}

// frame is an open object or array and the number of members written to it.
type frame struct {
	array bool
	count int
}

func newWriter(w io.Writer, indent int) *writer {
	jw := &writer{
		out:    bufio.NewWriter(w),
		indent: indent,
		frames: []frame{{}},
	}
	jw.out.WriteByte('{')
	return jw
}

func (w *writer) ContentType() string { return ContentType }

// prefix starts a new member: separator, newline, indentation and key.
func (w *writer) prefix(name string) {
	f := &w.frames[len(w.frames)-1]
	if f.count > 0 {
		w.out.WriteByte(',')
	}
	f.count++
	w.newline(len(w.frames))
	if !f.array {
		w.quote(name)
		w.out.WriteString(": ")
	}
}

func (w *writer) newline(depth int) {
	w.out.WriteByte('\n')
	w.out.WriteString(strings.Repeat(" ", depth*w.indent))
}

func (w *writer) begin(name string, array bool, open byte) error {
	if w.err != nil {
		return w.err
	}
	w.prefix(name)
	w.out.WriteByte(open)
	w.frames = append(w.frames, frame{array: array})
	return nil
}

func (w *writer) end(array bool, closing byte) error {
	if w.err != nil {
		return w.err
	}
	if len(w.frames) < 2 || w.frames[len(w.frames)-1].array != array {
		return errors.New("json: unbalanced end of container")
	}
	f := w.frames[len(w.frames)-1]
	w.frames = w.frames[:len(w.frames)-1]
	if f.count > 0 {
		w.newline(len(w.frames))
	}
	w.out.WriteByte(closing)
	return nil
}

func (w *writer) BeginObject(name string) error { return w.begin(name, false, '{') }

func (w *writer) EndObject() error { return w.end(false, '}') }

func (w *writer) BeginArray(name string, _ int) error { return w.begin(name, true, '[') }

func (w *writer) EndArray() error { return w.end(true, ']') }

func (w *writer) raw(name, text string) error {
	if w.err != nil {
		return w.err
	}
	w.prefix(name)
	w.out.WriteString(text)
	return nil
}

func (w *writer) WriteBool(name string, v bool) error {
	return w.raw(name, strconv.FormatBool(v))
}

func (w *writer) WriteInt(name string, v int64) error {
	return w.raw(name, strconv.FormatInt(v, 10))
}

func (w *writer) WriteUint(name string, v uint64) error {
	return w.raw(name, strconv.FormatUint(v, 10))
}

func (w *writer) WriteFloat(name string, v float64, bits int) error {
	switch {
	case math.IsNaN(v):
		return w.WriteString(name, "nan")
	case math.IsInf(v, 1):
		return w.WriteString(name, "inf")
	case math.IsInf(v, -1):
		return w.WriteString(name, "-inf")
	}
	return w.raw(name, strconv.FormatFloat(v, 'g', -1, bits))
}

func (w *writer) WriteString(name string, v string) error {
	if w.err != nil {
		return w.err
	}
	if !utf8.ValidString(v) {
		return fmt.Errorf("%w: json string is not valid UTF-8", pantry.ErrUnsupportedType)
	}
	w.prefix(name)
	w.quote(v)
	return nil
}

func (w *writer) WriteBytes(name string, v []byte) error {
	if w.err != nil {
		return w.err
	}
	w.prefix(name)
	w.out.WriteByte('"')
	w.out.WriteString(base64.Std.EncodeToString(v))
	w.out.WriteByte('"')
	return nil
}

// quote writes s as a JSON string literal.
func (w *writer) quote(s string) {
	w.out.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			w.out.WriteString(`\"`)
		case '\\':
			w.out.WriteString(`\\`)
		case '/':
			w.out.WriteString(`\/`)
		case '\b':
			w.out.WriteString(`\b`)
		case '\f':
			w.out.WriteString(`\f`)
		case '\n':
			w.out.WriteString(`\n`)
		case '\r':
			w.out.WriteString(`\r`)
		case '\t':
			w.out.WriteString(`\t`)
		default:
			if c < 0x20 {
				w.out.WriteString(`\u00`)
				w.out.WriteByte(hex[c>>4])
				w.out.WriteByte(hex[c&0xf])
				continue
			}
			w.out.WriteByte(c)
		}
	}
	w.out.WriteByte('"')
}

// Close writes the closing brace of the root object and flushes.
func (w *writer) Close() error {
	if w.closed {
		return w.err
	}
	w.closed = true
	if w.err != nil {
		return w.err
	}
	if len(w.frames) != 1 {
		w.err = errors.New("json: document closed with open containers")
		return w.err
	}
	if w.frames[0].count > 0 {
		w.out.WriteByte('\n')
	}
	w.out.WriteString("}\n")
	if err := w.out.Flush(); err != nil {
		w.err = fmt.Errorf("%w: %w", pantry.ErrIO, err)
	}
	return w.err
}

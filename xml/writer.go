package xml

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/zoobzio/pantry"
	"github.com/zoobzio/pantry/base64"
)

const (
	prolog   = `<?xml version="1.0"?>`
	rootName = "serialization"
)

// writer streams an indented XML document.
type writer struct {
	out    *bufio.Writer
	indent int
	frames []frame
	err    error
	closed bool
}

// frame is an open element.
type frame struct {
	name  string
	array bool
	count int
}

func newWriter(w io.Writer, indent int) *writer {
	xw := &writer{
		out:    bufio.NewWriter(w),
		indent: indent,
		frames: []frame{{name: rootName}},
	}
	xw.out.WriteString(prolog)
	xw.out.WriteString("\n<" + rootName + ">")
	return xw
}

func (w *writer) ContentType() string { return ContentType }

// open starts a child element of the innermost frame and returns its name.
func (w *writer) open(name string, attr string) (string, error) {
	if w.err != nil {
		return "", w.err
	}
	f := &w.frames[len(w.frames)-1]
	if name == "" || f.array {
		name = "value" + strconv.Itoa(f.count)
	}
	if !validName(name) {
		return "", fmt.Errorf("%w: %q is not an XML element name", pantry.ErrInvalidName, name)
	}
	f.count++

	w.newline(len(w.frames))
	w.out.WriteByte('<')
	w.out.WriteString(name)
	w.out.WriteString(attr)
	w.out.WriteByte('>')
	return name, nil
}

func (w *writer) newline(depth int) {
	w.out.WriteByte('\n')
	w.out.WriteString(strings.Repeat(" ", depth*w.indent))
}

func (w *writer) begin(name string, array bool) error {
	name, err := w.open(name, "")
	if err != nil {
		return err
	}
	w.frames = append(w.frames, frame{name: name, array: array})
	return nil
}

func (w *writer) end(array bool) error {
	if w.err != nil {
		return w.err
	}
	if len(w.frames) < 2 || w.frames[len(w.frames)-1].array != array {
		return errors.New("xml: unbalanced end of element")
	}
	f := w.frames[len(w.frames)-1]
	w.frames = w.frames[:len(w.frames)-1]
	if f.count > 0 {
		w.newline(len(w.frames))
	}
	w.out.WriteString("</" + f.name + ">")
	return nil
}

func (w *writer) BeginObject(name string) error { return w.begin(name, false) }

func (w *writer) EndObject() error { return w.end(false) }

func (w *writer) BeginArray(name string, _ int) error { return w.begin(name, true) }

func (w *writer) EndArray() error { return w.end(true) }

// leaf writes a text-only element.
func (w *writer) leaf(name, text, attr string) error {
	name, err := w.open(name, attr)
	if err != nil {
		return err
	}
	escape(w.out, text)
	w.out.WriteString("</" + name + ">")
	return nil
}

func (w *writer) WriteBool(name string, v bool) error {
	return w.leaf(name, strconv.FormatBool(v), "")
}

func (w *writer) WriteInt(name string, v int64) error {
	return w.leaf(name, strconv.FormatInt(v, 10), "")
}

func (w *writer) WriteUint(name string, v uint64) error {
	return w.leaf(name, strconv.FormatUint(v, 10), "")
}

func (w *writer) WriteFloat(name string, v float64, bits int) error {
	switch {
	case math.IsNaN(v):
		return w.leaf(name, "nan", "")
	case math.IsInf(v, 1):
		return w.leaf(name, "inf", "")
	case math.IsInf(v, -1):
		return w.leaf(name, "-inf", "")
	}
	return w.leaf(name, strconv.FormatFloat(v, 'g', -1, bits), "")
}

func (w *writer) WriteString(name string, v string) error {
	if !representable(v) {
		return w.leaf(name, base64.Std.EncodeToString([]byte(v)), ` encoding="base64"`)
	}
	return w.leaf(name, v, "")
}

func (w *writer) WriteBytes(name string, v []byte) error {
	return w.leaf(name, base64.Std.EncodeToString(v), "")
}

// Close closes the root element and flushes.
func (w *writer) Close() error {
	if w.closed {
		return w.err
	}
	w.closed = true
	if w.err != nil {
		return w.err
	}
	if len(w.frames) != 1 {
		w.err = errors.New("xml: document closed with open elements")
		return w.err
	}
	if w.frames[0].count > 0 {
		w.out.WriteByte('\n')
	}
	w.out.WriteString("</" + rootName + ">\n")
	if err := w.out.Flush(); err != nil {
		w.err = fmt.Errorf("%w: %w", pantry.ErrIO, err)
	}
	return w.err
}

// escape writes s with the five predefined entities.
func escape(out *bufio.Writer, s string) {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '&':
			out.WriteString("&amp;")
		case '<':
			out.WriteString("&lt;")
		case '>':
			out.WriteString("&gt;")
		case '"':
			out.WriteString("&quot;")
		case '\'':
			out.WriteString("&apos;")
		default:
			out.WriteByte(c)
		}
	}
}

// representable reports whether s survives as XML character data. Parsers
// normalize \r, and XML 1.0 excludes most control characters.
func representable(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		switch {
		case r == '\t' || r == '\n':
		case r < 0x20 || r == '\r':
			return false
		case r >= 0xD800 && r <= 0xDFFF, r == 0xFFFE, r == 0xFFFF:
			return false
		}
	}
	return true
}

// validName reports whether s is an XML element name without a namespace prefix.
func validName(s string) bool {
	if s == "" || strings.HasPrefix(strings.ToLower(s), "xml") {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && (r == '-' || r == '.' || unicode.IsDigit(r)):
		default:
			return false
		}
	}
	return true
}

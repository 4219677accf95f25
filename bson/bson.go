// Package bson provides the BSON archive format.
//
// The saved values are the elements of one BSON document. Objects are embedded
// documents and arrays are BSON arrays, so the document can be stored in MongoDB
// or inspected with any BSON tool. Integers are int64, uint64 values above the
// int64 range are decimal strings, and []byte values are binary elements.
// Strings that are not valid UTF-8 are binary elements of subtype 0x80.
package bson

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/zoobzio/pantry"
	"github.com/zoobzio/pantry/base64"
	"github.com/zoobzio/pantry/internal/tree"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContentType is the MIME type of the format.
const ContentType = "application/bson"

// Binary subtypes.
const (
	generic   byte = 0x00
	rawString byte = 0x80 // bytes of a non UTF-8 string
)

// maxDepth bounds nesting while converting untrusted input.
const maxDepth = 10000

// bsonFormat implements pantry.Format for BSON.
type bsonFormat struct{}

// New returns the BSON format.
func New() pantry.Format {
	return &bsonFormat{}
}

// ContentType returns the MIME type for BSON.
func (f *bsonFormat) ContentType() string {
	return ContentType
}

// NewWriter returns a writer producing one BSON document on w.
func (f *bsonFormat) NewWriter(w io.Writer) pantry.Writer {
	return &writer{out: w, frames: []*frame{{}}}
}

// NewReader decodes the BSON document on r.
func (f *bsonFormat) NewReader(r io.Reader) (pantry.Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pantry.ErrIO, err)
	}
	var doc bson.D
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, pantry.NewFormatError(ContentType, err)
	}
	root, err := convert("", doc, 0)
	if err != nil {
		return nil, pantry.NewFormatError(ContentType, err)
	}
	return tree.NewReader(ContentType, root), nil
}

// frame is an open document or array.
type frame struct {
	name  string
	array bool
	doc   bson.D
	items bson.A
}

func (f *frame) add(name string, v any) {
	if f.array {
		f.items = append(f.items, v)
		return
	}
	f.doc = append(f.doc, bson.E{Key: name, Value: v})
}

func (f *frame) value() any {
	if f.array {
		if f.items == nil {
			return bson.A{}
		}
		return f.items
	}
	if f.doc == nil {
		return bson.D{}
	}
	return f.doc
}

// writer collects the document and marshals it on Close.
type writer struct {
	out    io.Writer
	frames []*frame
	closed bool
}

func (w *writer) ContentType() string { return ContentType }

func (w *writer) add(name string, v any) error {
	if w.closed {
		return pantry.ErrClosed
	}
	w.frames[len(w.frames)-1].add(name, v)
	return nil
}

func (w *writer) begin(name string, array bool) error {
	if w.closed {
		return pantry.ErrClosed
	}
	w.frames = append(w.frames, &frame{name: name, array: array})
	return nil
}

func (w *writer) end(array bool) error {
	if len(w.frames) < 2 || w.frames[len(w.frames)-1].array != array {
		return errors.New("bson: unbalanced end of container")
	}
	f := w.frames[len(w.frames)-1]
	w.frames = w.frames[:len(w.frames)-1]
	return w.add(f.name, f.value())
}

func (w *writer) BeginObject(name string) error { return w.begin(name, false) }

func (w *writer) EndObject() error { return w.end(false) }

func (w *writer) BeginArray(name string, _ int) error { return w.begin(name, true) }

func (w *writer) EndArray() error { return w.end(true) }

func (w *writer) WriteBool(name string, v bool) error { return w.add(name, v) }

func (w *writer) WriteInt(name string, v int64) error { return w.add(name, v) }

func (w *writer) WriteUint(name string, v uint64) error {
	if v > math.MaxInt64 {
		return w.add(name, strconv.FormatUint(v, 10))
	}
	return w.add(name, int64(v))
}

func (w *writer) WriteFloat(name string, v float64, _ int) error { return w.add(name, v) }

func (w *writer) WriteString(name string, v string) error {
	if !utf8.ValidString(v) {
		return w.add(name, primitive.Binary{Subtype: rawString, Data: []byte(v)})
	}
	return w.add(name, v)
}

func (w *writer) WriteBytes(name string, v []byte) error {
	return w.add(name, primitive.Binary{Subtype: generic, Data: v})
}

// Close marshals the document.
func (w *writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if len(w.frames) != 1 {
		return errors.New("bson: document closed with open containers")
	}
	data, err := bson.Marshal(w.frames[0].value())
	if err != nil {
		return err
	}
	if _, err := w.out.Write(data); err != nil {
		return fmt.Errorf("%w: %w", pantry.ErrIO, err)
	}
	return nil
}

// convert turns a decoded BSON value into a tree node.
func convert(name string, v any, depth int) (*tree.Node, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("nesting deeper than %d", maxDepth)
	}

	n := &tree.Node{Name: name, Kind: tree.Scalar}
	switch v := v.(type) {
	case bson.D:
		n.Kind = tree.Object
		for _, e := range v {
			child, err := convert(e.Key, e.Value, depth+1)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
		}
	case bson.A:
		n.Kind = tree.Array
		for _, item := range v {
			child, err := convert("", item, depth+1)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
		}
	case string:
		n.Text = v
		n.Quoted = true
	case int32:
		n.Text = strconv.FormatInt(int64(v), 10)
	case int64:
		n.Text = strconv.FormatInt(v, 10)
	case float64:
		n.Text = strconv.FormatFloat(v, 'g', -1, 64)
		n.Exact = &v
	case bool:
		n.Text = strconv.FormatBool(v)
	case primitive.Binary:
		n.Text = base64.Std.EncodeToString(v.Data)
		n.Binary = true
	case nil:
		n.Kind = tree.Null
	default:
		return nil, fmt.Errorf("element %q: unsupported BSON type %T", name, v)
	}
	return n, nil
}

package tree

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/zoobzio/pantry"
	"github.com/zoobzio/pantry/base64"
)

// Reader implements pantry.Reader over a parsed document.
type Reader struct {
	contentType string
	frames      []*cursor
}

// cursor is an open container.
type cursor struct {
	node *Node
	next int
	list bool
}

// NewReader returns a Reader positioned inside root, which holds the top-level
// members of the document.
func NewReader(contentType string, root *Node) *Reader {
	return &Reader{
		contentType: contentType,
		frames:      []*cursor{{node: root}},
	}
}

// ContentType returns the MIME type of the document.
func (r *Reader) ContentType() string { return r.contentType }

// take returns the next member: the next item of an array, or the member called
// name of an object.
func (r *Reader) take(name string) (*Node, error) {
	f := r.frames[len(r.frames)-1]
	children := f.node.Children

	if f.list {
		if f.next >= len(children) {
			return nil, r.malformed("array %q has only %d items", f.node.Name, len(children))
		}
		n := children[f.next]
		f.next++
		return n, nil
	}

	// Members are usually read in the order they were written.
	if f.next < len(children) && (name == "" || children[f.next].Name == name) {
		n := children[f.next]
		f.next++
		return n, nil
	}
	for i, n := range children {
		if n.Name == name {
			f.next = i + 1
			return n, nil
		}
	}
	return nil, pantry.MissingField(name)
}

func (r *Reader) open(name string, list bool) (*Node, error) {
	n, err := r.take(name)
	if err != nil {
		return nil, err
	}
	if !n.container() {
		return nil, r.malformed("%q is a %s, want a container", name, n.Kind)
	}
	r.frames = append(r.frames, &cursor{node: n, list: list})
	return n, nil
}

func (r *Reader) pop() error {
	if len(r.frames) < 2 {
		return r.malformed("unbalanced end of container")
	}
	r.frames = r.frames[:len(r.frames)-1]
	return nil
}

func (r *Reader) BeginObject(name string) error {
	_, err := r.open(name, false)
	return err
}

func (r *Reader) EndObject() error { return r.pop() }

func (r *Reader) BeginArray(name string) (int, error) {
	n, err := r.open(name, true)
	if err != nil {
		return 0, err
	}
	return len(n.Children), nil
}

func (r *Reader) EndArray() error { return r.pop() }

// scalar returns the text of the next member.
func (r *Reader) scalar(name string) (*Node, error) {
	n, err := r.take(name)
	if err != nil {
		return nil, err
	}
	if !n.leaf() {
		return nil, r.malformed("%q is a %s, want a scalar", name, n.Kind)
	}
	return n, nil
}

func (r *Reader) ReadBool(name string) (bool, error) {
	n, err := r.scalar(name)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(n.Text) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, r.malformed("%q: invalid bool %q", name, n.Text)
}

func (r *Reader) ReadInt(name string) (int64, error) {
	n, err := r.scalar(name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(n.Text, 10, 64)
	if err != nil {
		return 0, r.number(name, err)
	}
	return v, nil
}

func (r *Reader) ReadUint(name string) (uint64, error) {
	n, err := r.scalar(name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(n.Text, 10, 64)
	if err != nil {
		return 0, r.number(name, err)
	}
	return v, nil
}

func (r *Reader) ReadFloat(name string, bits int) (float64, error) {
	n, err := r.scalar(name)
	if err != nil {
		return 0, err
	}
	if n.Exact != nil {
		return *n.Exact, nil
	}
	if v, ok := ParseSpecialFloat(n.Text); ok {
		return v, nil
	}
	v, err := strconv.ParseFloat(n.Text, bits)
	if err != nil {
		return 0, r.number(name, err)
	}
	return v, nil
}

func (r *Reader) ReadString(name string) (string, error) {
	n, err := r.scalar(name)
	if err != nil {
		return "", err
	}
	if !n.Binary {
		return n.Text, nil
	}
	b, err := base64.Std.DecodeString(n.Text)
	if err != nil {
		return "", r.malformed("%q: %v", name, err)
	}
	return string(b), nil
}

func (r *Reader) ReadBytes(name string) ([]byte, error) {
	n, err := r.scalar(name)
	if err != nil {
		return nil, err
	}
	b, err := base64.Std.DecodeString(strings.TrimSpace(n.Text))
	if err != nil {
		return nil, r.malformed("%q: %v", name, err)
	}
	return b, nil
}

// Close releases the tree.
func (r *Reader) Close() error {
	r.frames = nil
	return nil
}

func (r *Reader) number(name string, err error) error {
	if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
		return fmt.Errorf("%w: %q: %s", pantry.ErrOverflow, name, ne.Num)
	}
	return r.malformed("%q: %v", name, err)
}

func (r *Reader) malformed(format string, args ...any) error {
	return pantry.NewFormatError(r.contentType, fmt.Errorf(format, args...))
}

// ParseSpecialFloat recognizes the spellings of NaN and the infinities used by the
// text formats: nan, inf, -inf, and the YAML forms .nan, .inf, -.inf.
func ParseSpecialFloat(s string) (float64, bool) {
	switch strings.ToLower(s) {
	case "nan", ".nan":
		return math.NaN(), true
	case "inf", "+inf", ".inf", "+.inf", "infinity":
		return math.Inf(1), true
	case "-inf", "-.inf", "-infinity":
		return math.Inf(-1), true
	}
	return 0, false
}

package yaml

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/zoobzio/pantry"
	"github.com/zoobzio/pantry/base64"
	"gopkg.in/yaml.v3"
)

// writer collects a node tree and encodes it on Close.
type writer struct {
	out    io.Writer
	indent int
	root   *yaml.Node
	stack  []*yaml.Node
	closed bool
	err    error
}

func newWriter(w io.Writer, indent int) *writer {
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	return &writer{
		out:    w,
		indent: indent,
		root:   root,
		stack:  []*yaml.Node{root},
	}
}

func (w *writer) ContentType() string { return ContentType }

// add appends n to the innermost container under name.
func (w *writer) add(name string, n *yaml.Node) error {
	if w.closed {
		return pantry.ErrClosed
	}
	parent := w.stack[len(w.stack)-1]
	if parent.Kind == yaml.MappingNode {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}
		parent.Content = append(parent.Content, key, n)
		return nil
	}
	parent.Content = append(parent.Content, n)
	return nil
}

func (w *writer) begin(name string, n *yaml.Node) error {
	if err := w.add(name, n); err != nil {
		return err
	}
	w.stack = append(w.stack, n)
	return nil
}

func (w *writer) end(kind yaml.Kind) error {
	if len(w.stack) < 2 || w.stack[len(w.stack)-1].Kind != kind {
		return errors.New("yaml: unbalanced end of container")
	}
	w.stack = w.stack[:len(w.stack)-1]
	return nil
}

func (w *writer) BeginObject(name string) error {
	return w.begin(name, &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"})
}

func (w *writer) EndObject() error { return w.end(yaml.MappingNode) }

func (w *writer) BeginArray(name string, size int) error {
	return w.begin(name, &yaml.Node{
		Kind:    yaml.SequenceNode,
		Tag:     "!!seq",
		Content: make([]*yaml.Node, 0, min(max(size, 0), 1024)),
	})
}

func (w *writer) EndArray() error { return w.end(yaml.SequenceNode) }

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func (w *writer) WriteBool(name string, v bool) error {
	return w.add(name, scalar("!!bool", strconv.FormatBool(v)))
}

func (w *writer) WriteInt(name string, v int64) error {
	return w.add(name, scalar("!!int", strconv.FormatInt(v, 10)))
}

func (w *writer) WriteUint(name string, v uint64) error {
	return w.add(name, scalar("!!int", strconv.FormatUint(v, 10)))
}

func (w *writer) WriteFloat(name string, v float64, bits int) error {
	var text string
	switch {
	case math.IsNaN(v):
		text = ".nan"
	case math.IsInf(v, 1):
		text = ".inf"
	case math.IsInf(v, -1):
		text = "-.inf"
	default:
		text = strconv.FormatFloat(v, 'g', -1, bits)
		if !strings.ContainsAny(text, ".e") {
			// Keep integral values resolving as floats.
			text += ".0"
		}
	}
	return w.add(name, scalar("!!float", text))
}

func (w *writer) WriteString(name string, v string) error {
	if !utf8.ValidString(v) {
		return w.add(name, scalar("!!binary", base64.Std.EncodeToString([]byte(v))))
	}
	n := scalar("!!str", v)
	n.Style = yaml.DoubleQuotedStyle
	return w.add(name, n)
}

func (w *writer) WriteBytes(name string, v []byte) error {
	return w.add(name, scalar("!!binary", base64.Std.EncodeToString(v)))
}

// Close encodes the document.
func (w *writer) Close() error {
	if w.closed {
		return w.err
	}
	w.closed = true
	if len(w.stack) != 1 {
		w.err = errors.New("yaml: document closed with open containers")
		return w.err
	}

	enc := yaml.NewEncoder(w.out)
	enc.SetIndent(w.indent)
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{w.root}}
	if err := enc.Encode(doc); err != nil {
		w.err = fmt.Errorf("%w: %w", pantry.ErrIO, err)
		return w.err
	}
	if err := enc.Close(); err != nil {
		w.err = fmt.Errorf("%w: %w", pantry.ErrIO, err)
	}
	return w.err
}

package json

import (
	"errors"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/zoobzio/pantry/internal/tree"
)

// maxDepth bounds nesting while parsing untrusted input.
const maxDepth = 10000

func newReader(root *tree.Node) *tree.Reader {
	return tree.NewReader(ContentType, root)
}

// parse reads one JSON document into a tree, keeping member order.
func parse(api jsoniter.API, data []byte) (*tree.Node, error) {
	iter := jsoniter.ParseBytes(api, data)
	if iter.WhatIsNext() != jsoniter.ObjectValue {
		return nil, errors.New("document root must be an object")
	}

	root, err := node(iter, "", 0)
	if err != nil {
		return nil, err
	}

	if next := iter.WhatIsNext(); next != jsoniter.InvalidValue {
		return nil, errors.New("trailing data after document root")
	}
	if iter.Error != nil && !errors.Is(iter.Error, io.EOF) {
		return nil, iter.Error
	}
	return root, nil
}

func node(iter *jsoniter.Iterator, name string, depth int) (*tree.Node, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("nesting deeper than %d", maxDepth)
	}

	n := &tree.Node{Name: name}
	switch iter.WhatIsNext() {
	case jsoniter.ObjectValue:
		n.Kind = tree.Object
		for key := iter.ReadObject(); key != ""; key = iter.ReadObject() {
			child, err := node(iter, key, depth+1)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
		}
	case jsoniter.ArrayValue:
		n.Kind = tree.Array
		for iter.ReadArray() {
			child, err := node(iter, "", depth+1)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
		}
	case jsoniter.StringValue:
		n.Kind = tree.Scalar
		n.Quoted = true
		n.Text = iter.ReadString()
	case jsoniter.NumberValue:
		n.Kind = tree.Scalar
		n.Text = iter.ReadNumber().String()
	case jsoniter.BoolValue:
		n.Kind = tree.Scalar
		if iter.ReadBool() {
			n.Text = "true"
		} else {
			n.Text = "false"
		}
	case jsoniter.NilValue:
		iter.ReadNil()
		n.Kind = tree.Null
	default:
		if iter.Error != nil {
			return nil, iter.Error
		}
		return nil, errors.New("invalid value")
	}

	if iter.Error != nil && !errors.Is(iter.Error, io.EOF) {
		return nil, iter.Error
	}
	return n, nil
}

package yaml

import (
	"errors"
	"fmt"

	"github.com/zoobzio/pantry/internal/tree"
	"gopkg.in/yaml.v3"
)

func newReader(root *tree.Node) *tree.Reader {
	return tree.NewReader(ContentType, root)
}

// convert turns a decoded document into a tree rooted at its top-level mapping.
func convert(doc *yaml.Node) (*tree.Node, error) {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return nil, errors.New("expected a single document")
	}
	top := doc.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("document root must be a mapping, got %s", top.ShortTag())
	}
	return node("", top, 0)
}

// maxDepth bounds nesting, aliases included.
const maxDepth = 10000

func node(name string, y *yaml.Node, depth int) (*tree.Node, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("nesting deeper than %d", maxDepth)
	}

	n := &tree.Node{Name: name}
	switch y.Kind {
	case yaml.MappingNode:
		n.Kind = tree.Object
		if len(y.Content)%2 != 0 {
			return nil, fmt.Errorf("line %d: odd mapping content", y.Line)
		}
		for i := 0; i < len(y.Content); i += 2 {
			key := y.Content[i]
			if key.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping key must be a scalar", key.Line)
			}
			child, err := node(key.Value, y.Content[i+1], depth+1)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
		}
	case yaml.SequenceNode:
		n.Kind = tree.Array
		for _, item := range y.Content {
			child, err := node("", item, depth+1)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
		}
	case yaml.ScalarNode:
		switch y.ShortTag() {
		case "!!null":
			n.Kind = tree.Null
		case "!!binary":
			n.Kind = tree.Scalar
			n.Binary = true
			n.Text = y.Value
		default:
			n.Kind = tree.Scalar
			n.Text = y.Value
			n.Quoted = y.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0
		}
	case yaml.AliasNode:
		if y.Alias == nil {
			return nil, fmt.Errorf("line %d: unresolved alias", y.Line)
		}
		return node(name, y.Alias, depth+1)
	default:
		return nil, fmt.Errorf("line %d: unexpected node", y.Line)
	}
	return n, nil
}

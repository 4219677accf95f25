// Package tree holds the document tree shared by the self-describing formats and
// a pantry.Reader that walks it.
//
// The json, xml, yaml and bson packages parse a whole document into a Node tree and hand
// it to NewReader. Members are found by name inside objects and by position inside
// arrays.
package tree

// Kind classifies a Node.
type Kind int

const (
	// Scalar is a leaf carrying Text.
	Scalar Kind = iota
	// Object is a container of named children.
	Object
	// Array is a container of unnamed children.
	Array
	// Element is a container whose kind the source format cannot tell (an XML
	// element). It reads as an object, an array, or, when it has no children,
	// a scalar holding its whitespace text.
	Element
	// Null is an explicit null value.
	Null
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Object:
		return "object"
	case Array:
		return "array"
	case Element:
		return "element"
	case Null:
		return "null"
	default:
		return "unknown"
	}
}

// Node is one value of a parsed document.
type Node struct {
	Name     string
	Kind     Kind
	Text     string   // scalar text; numbers keep their source spelling
	Binary   bool     // Text is the base64 encoding of the value
	Quoted   bool     // Text came from a string literal
	Exact    *float64 // IEEE value from a binary source, kept bit for bit
	Children []*Node  // object members or array items, in document order
}

// container reports whether n can be opened as an object or array.
func (n *Node) container() bool {
	switch n.Kind {
	case Object, Array, Element:
		return true
	}
	return false
}

// leaf reports whether n can be read as a scalar.
func (n *Node) leaf() bool {
	return n.Kind == Scalar || (n.Kind == Element && len(n.Children) == 0)
}

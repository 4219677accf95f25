package xml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/zoobzio/pantry/internal/tree"
)

// maxDepth bounds element nesting in untrusted input.
const maxDepth = 10000

func newReader(root *tree.Node) *tree.Reader {
	return tree.NewReader(ContentType, root)
}

// parse reads an XML document into a tree rooted at its <serialization> element.
func parse(data []byte) (*tree.Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, errors.New("document has no root element")
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != rootName {
			return nil, fmt.Errorf("root element is <%s>, want <%s>", start.Name.Local, rootName)
		}
		root, err := element(dec, start, 0)
		if err != nil {
			return nil, err
		}
		return root, trailing(dec)
	}
}

// element reads the content of start up to its end tag.
func element(dec *xml.Decoder, start xml.StartElement, depth int) (*tree.Node, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("nesting deeper than %d", maxDepth)
	}
	n := &tree.Node{Name: start.Name.Local, Kind: tree.Element}
	for _, attr := range start.Attr {
		if attr.Name.Local == "encoding" && attr.Value == "base64" {
			n.Binary = true
		}
	}

	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("element <%s> is not closed", n.Name)
			}
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := element(dec, t, depth+1)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			// Character data between child elements is indentation. A childless
			// element of only whitespace may still be an empty container.
			if len(n.Children) == 0 {
				n.Text = text.String()
				if strings.TrimSpace(n.Text) != "" {
					n.Kind = tree.Scalar
				}
			}
			return n, nil
		}
	}
}

// trailing checks that only comments, processing instructions and whitespace
// follow the root element.
func trailing(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return fmt.Errorf("second root element <%s>", t.Name.Local)
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return errors.New("character data after root element")
			}
		}
	}
}

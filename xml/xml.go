// Package xml provides the XML archive format.
//
// Documents carry a <serialization> root element holding the saved values. Every
// member is an element named after its member name; array items are named value0,
// value1, ... in order:
//
//	<?xml version="1.0"?>
//	<serialization>
//	    <value0>
//	        <version>0</version>
//	        <x>1</x>
//	    </value0>
//	</serialization>
//
// Strings XML 1.0 cannot carry are written in base64 with encoding="base64".
package xml

import (
	"fmt"
	"io"

	"github.com/zoobzio/pantry"
)

// ContentType is the MIME type of the format.
const ContentType = "application/xml"

// Option configures the format.
type Option func(*xmlFormat)

// WithIndent sets the number of spaces per nesting level. The default is 4.
func WithIndent(n int) Option {
	return func(f *xmlFormat) {
		if n >= 0 {
			f.indent = n
		}
	}
}

// xmlFormat implements pantry.Format for XML.
type xmlFormat struct {
	indent int
}

// New returns the XML format.
func New(opts ...Option) pantry.Format {
	f := &xmlFormat{indent: 4}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ContentType returns the MIME type for XML.
func (f *xmlFormat) ContentType() string {
	return ContentType
}

// NewWriter returns a writer producing an XML document on w.
func (f *xmlFormat) NewWriter(w io.Writer) pantry.Writer {
	return newWriter(w, f.indent)
}

// NewReader parses the XML document on r.
func (f *xmlFormat) NewReader(r io.Reader) (pantry.Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pantry.ErrIO, err)
	}
	root, err := parse(data)
	if err != nil {
		return nil, pantry.NewFormatError(ContentType, err)
	}
	return newReader(root), nil
}

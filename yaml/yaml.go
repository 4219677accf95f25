// Package yaml provides the YAML archive format.
//
// The document is a mapping of the saved values. Strings are double quoted, []byte
// values use the !!binary tag and non-finite floats are .nan, .inf and -.inf.
// The document is built as a yaml.v3 node tree and written when the archive closes.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/zoobzio/pantry"
	"gopkg.in/yaml.v3"
)

// ContentType is the MIME type of the format.
const ContentType = "application/yaml"

// Option configures the format.
type Option func(*yamlFormat)

// WithIndent sets the number of spaces per nesting level. The default is 4.
func WithIndent(n int) Option {
	return func(f *yamlFormat) {
		if n > 0 {
			f.indent = n
		}
	}
}

// yamlFormat implements pantry.Format for YAML.
type yamlFormat struct {
	indent int
}

// New returns the YAML format.
func New(opts ...Option) pantry.Format {
	f := &yamlFormat{indent: 4}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ContentType returns the MIME type for YAML.
func (f *yamlFormat) ContentType() string {
	return ContentType
}

// NewWriter returns a writer producing a YAML document on w.
func (f *yamlFormat) NewWriter(w io.Writer) pantry.Writer {
	return newWriter(w, f.indent)
}

// NewReader parses the YAML document on r.
func (f *yamlFormat) NewReader(r io.Reader) (pantry.Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pantry.ErrIO, err)
	}

	var doc yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty document")
		}
		return nil, pantry.NewFormatError(ContentType, err)
	}

	root, err := convert(&doc)
	if err != nil {
		return nil, pantry.NewFormatError(ContentType, err)
	}
	return newReader(root), nil
}

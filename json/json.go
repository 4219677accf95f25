// Package json provides the JSON archive format.
//
// Documents are pretty printed with one top-level object holding the saved values:
//
//	{
//	    "value0": {
//	        "version": 0,
//	        "x": 1,
//	        "y": 2
//	    }
//	}
//
// Members appear in the order they were saved. []byte values are base64 strings and
// non-finite floats are the strings "nan", "inf" and "-inf".
package json

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/zoobzio/pantry"
)

// ContentType is the MIME type of the format.
const ContentType = "application/json"

// Option configures the format.
type Option func(*jsonFormat)

// WithIndent sets the number of spaces per nesting level. The default is 4.
func WithIndent(n int) Option {
	return func(f *jsonFormat) {
		if n >= 0 {
			f.indent = n
		}
	}
}

// jsonFormat implements pantry.Format for JSON.
type jsonFormat struct {
	indent int
	api    jsoniter.API
}

// New returns the JSON format.
func New(opts ...Option) pantry.Format {
	f := &jsonFormat{
		indent: 4,
		api:    jsoniter.Config{UseNumber: true}.Froze(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ContentType returns the MIME type for JSON.
func (f *jsonFormat) ContentType() string {
	return ContentType
}

// NewWriter returns a writer producing a JSON document on w.
func (f *jsonFormat) NewWriter(w io.Writer) pantry.Writer {
	return newWriter(w, f.indent)
}

// NewReader parses the JSON document on r.
func (f *jsonFormat) NewReader(r io.Reader) (pantry.Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pantry.ErrIO, err)
	}
	root, err := parse(f.api, data)
	if err != nil {
		return nil, pantry.NewFormatError(ContentType, err)
	}
	return newReader(root), nil
}

package pantry

import (
	"bytes"
	"context"
	"io"
)

// Format provides content-type aware archive backends.
type Format interface {
	// ContentType returns the MIME type for this format (e.g., "application/json").
	ContentType() string

	// NewWriter returns a Writer producing a document on w.
	NewWriter(w io.Writer) Writer

	// NewReader returns a Reader consuming a document from r.
	// Formats that parse the whole document up front report syntax errors here.
	NewReader(r io.Reader) (Reader, error)
}

// Output returns an OArchive writing f's format to w.
func Output(f Format, w io.Writer, opts ...Option) *OArchive {
	return NewOArchive(f.NewWriter(w), opts...)
}

// Input returns an IArchive reading f's format from r.
func Input(f Format, r io.Reader, opts ...Option) (*IArchive, error) {
	rd, err := f.NewReader(r)
	if err != nil {
		return nil, err
	}
	return NewIArchive(rd, opts...), nil
}

// Marshal archives v as the single top-level value of a new document.
func Marshal(ctx context.Context, f Format, v any, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	oa := Output(f, &buf, opts...)
	if err := oa.Save(ctx, v); err != nil {
		return nil, err
	}
	if err := oa.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal restores the single top-level value of data into ptr.
func Unmarshal(ctx context.Context, f Format, data []byte, ptr any, opts ...Option) error {
	ia, err := Input(f, bytes.NewReader(data), opts...)
	if err != nil {
		return err
	}
	if err := ia.Load(ctx, ptr); err != nil {
		return err
	}
	return ia.Close()
}

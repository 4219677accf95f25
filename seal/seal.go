// Package seal wraps archive formats with authenticated encryption.
//
// A sealed format buffers the whole document, seals it when the archive closes,
// and opens it again before the inner format parses it:
//
//	s, err := seal.XChaCha(key)
//	if err != nil {
//	    return err
//	}
//	data, err := pantry.Marshal(ctx, seal.Wrap(json.New(), s), &v)
package seal

import (
	"bytes"
	"fmt"
	"io"

	"github.com/zoobzio/pantry"
)

// Sealer seals and opens whole payloads.
type Sealer interface {
	// Seal encrypts and authenticates plaintext.
	Seal(plaintext []byte) ([]byte, error)

	// Open authenticates and decrypts a payload produced by Seal.
	Open(ciphertext []byte) ([]byte, error)
}

// sealedFormat implements pantry.Format over an inner format.
type sealedFormat struct {
	inner  pantry.Format
	sealer Sealer
}

// Wrap returns a format that seals the documents of f with s.
func Wrap(f pantry.Format, s Sealer) pantry.Format {
	return &sealedFormat{inner: f, sealer: s}
}

// ContentType returns the inner MIME type with a +sealed suffix.
func (f *sealedFormat) ContentType() string {
	return f.inner.ContentType() + "+sealed"
}

// NewWriter returns a writer that seals the inner document onto w on Close.
func (f *sealedFormat) NewWriter(w io.Writer) pantry.Writer {
	sw := &writer{out: w, sealer: f.sealer, contentType: f.ContentType()}
	sw.Writer = f.inner.NewWriter(&sw.buf)
	return sw
}

// NewReader opens the payload on r and parses it with the inner format.
func (f *sealedFormat) NewReader(r io.Reader) (pantry.Reader, error) {
	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pantry.ErrIO, err)
	}
	plain, err := f.sealer.Open(payload)
	if err != nil {
		return nil, err
	}
	inner, err := f.inner.NewReader(bytes.NewReader(plain))
	if err != nil {
		return nil, err
	}
	return &reader{Reader: inner, contentType: f.ContentType()}, nil
}

type writer struct {
	pantry.Writer
	buf         bytes.Buffer
	out         io.Writer
	sealer      Sealer
	contentType string
	closed      bool
}

func (w *writer) ContentType() string { return w.contentType }

// Close finishes the inner document and writes it sealed.
func (w *writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.Writer.Close(); err != nil {
		return err
	}
	sealed, err := w.sealer.Seal(w.buf.Bytes())
	if err != nil {
		return err
	}
	if _, err := w.out.Write(sealed); err != nil {
		return fmt.Errorf("%w: %w", pantry.ErrIO, err)
	}
	return nil
}

type reader struct {
	pantry.Reader
	contentType string
}

func (r *reader) ContentType() string { return r.contentType }

// Package msgpack provides the MessagePack archive format.
//
// Values are MessagePack primitives written in order: integers in their most
// compact form, floats with their own width, strings as str and byte slices as
// bin. Arrays and maps carry an array header. Objects and names are not stored, so
// the stream is read back positionally.
package msgpack

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zoobzio/pantry"
)

// ContentType is the MIME type of the format.
const ContentType = "application/msgpack"

// msgpackFormat implements pantry.Format for MessagePack.
type msgpackFormat struct{}

// New returns the MessagePack format.
func New() pantry.Format {
	return &msgpackFormat{}
}

// ContentType returns the MIME type for MessagePack.
func (f *msgpackFormat) ContentType() string {
	return ContentType
}

// NewWriter returns a writer producing MessagePack on w.
func (f *msgpackFormat) NewWriter(w io.Writer) pantry.Writer {
	return &writer{enc: msgpack.NewEncoder(w)}
}

// NewReader returns a reader consuming MessagePack from r.
func (f *msgpackFormat) NewReader(r io.Reader) (pantry.Reader, error) {
	src := &source{r: r}
	return &reader{dec: msgpack.NewDecoder(src), src: src}, nil
}

type writer struct {
	enc *msgpack.Encoder
}

func (w *writer) ContentType() string { return ContentType }

func (w *writer) BeginObject(string) error { return nil }
func (w *writer) EndObject() error         { return nil }

func (w *writer) BeginArray(_ string, size int) error {
	return w.enc.EncodeArrayLen(size)
}

func (w *writer) EndArray() error { return nil }

func (w *writer) WriteBool(_ string, v bool) error {
	return w.enc.EncodeBool(v)
}

func (w *writer) WriteInt(_ string, v int64) error {
	return w.enc.EncodeInt(v)
}

func (w *writer) WriteUint(_ string, v uint64) error {
	return w.enc.EncodeUint(v)
}

func (w *writer) WriteFloat(_ string, v float64, bits int) error {
	if bits == 32 {
		return w.enc.EncodeFloat32(float32(v))
	}
	return w.enc.EncodeFloat64(v)
}

func (w *writer) WriteString(_ string, v string) error {
	return w.enc.EncodeString(v)
}

func (w *writer) WriteBytes(_ string, v []byte) error {
	return w.enc.EncodeBytes(v)
}

// Close is a no-op: the encoder writes through.
func (w *writer) Close() error { return nil }

// source records the first failure of the underlying stream.
type source struct {
	r   io.Reader
	err error
}

func (s *source) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF && s.err == nil {
		s.err = err
	}
	return n, err
}

type reader struct {
	dec *msgpack.Decoder
	src *source
}

func (r *reader) ContentType() string { return ContentType }

func (r *reader) fail(err error) error {
	if r.src.err != nil {
		return fmt.Errorf("%w: %w", pantry.ErrIO, r.src.err)
	}
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return pantry.NewFormatError(ContentType, err)
}

func (r *reader) BeginObject(string) error { return nil }
func (r *reader) EndObject() error         { return nil }

func (r *reader) BeginArray(string) (int, error) {
	n, err := r.dec.DecodeArrayLen()
	if err != nil {
		return 0, r.fail(err)
	}
	if n < 0 {
		// nil array
		return 0, nil
	}
	return n, nil
}

func (r *reader) EndArray() error { return nil }

func (r *reader) ReadBool(string) (bool, error) {
	v, err := r.dec.DecodeBool()
	if err != nil {
		return false, r.fail(err)
	}
	return v, nil
}

func (r *reader) ReadInt(string) (int64, error) {
	v, err := r.dec.DecodeInt64()
	if err != nil {
		return 0, r.fail(err)
	}
	return v, nil
}

func (r *reader) ReadUint(string) (uint64, error) {
	v, err := r.dec.DecodeUint64()
	if err != nil {
		return 0, r.fail(err)
	}
	return v, nil
}

func (r *reader) ReadFloat(_ string, bits int) (float64, error) {
	if bits == 32 {
		v, err := r.dec.DecodeFloat32()
		if err != nil {
			return 0, r.fail(err)
		}
		return float64(v), nil
	}
	v, err := r.dec.DecodeFloat64()
	if err != nil {
		return 0, r.fail(err)
	}
	return v, nil
}

func (r *reader) ReadString(string) (string, error) {
	v, err := r.dec.DecodeString()
	if err != nil {
		return "", r.fail(err)
	}
	return v, nil
}

func (r *reader) ReadBytes(string) ([]byte, error) {
	v, err := r.dec.DecodeBytes()
	if err != nil {
		return nil, r.fail(err)
	}
	return v, nil
}

func (r *reader) Close() error { return nil }

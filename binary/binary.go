// Package binary provides the compact binary archive format.
//
// The stream is positional: names are not stored and values must be read back in
// the order they were written. Signed integers are zigzag varints, unsigned
// integers are uvarints, floats are their IEEE 754 bits in little-endian order, and
// strings, byte slices and arrays carry a uvarint length. Objects add nothing to
// the stream.
package binary

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/zoobzio/pantry"
)

// ContentType is the MIME type of the format.
const ContentType = "application/octet-stream"

// chunk bounds a single allocation made from an untrusted length.
const chunk = 64 << 10

// binaryFormat implements pantry.Format for the binary encoding.
type binaryFormat struct{}

// New returns the binary format.
func New() pantry.Format {
	return &binaryFormat{}
}

// ContentType returns the MIME type for the binary format.
func (f *binaryFormat) ContentType() string {
	return ContentType
}

// NewWriter returns a writer producing a binary stream on w.
func (f *binaryFormat) NewWriter(w io.Writer) pantry.Writer {
	return &writer{out: bufio.NewWriter(w)}
}

// NewReader returns a reader consuming a binary stream from r.
func (f *binaryFormat) NewReader(r io.Reader) (pantry.Reader, error) {
	src := &source{r: r}
	return &reader{in: bufio.NewReader(src), src: src}, nil
}

// source records the first failure of the underlying stream, so that stream
// errors can be told apart from bad encodings.
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

type writer struct {
	out     *bufio.Writer
	scratch [binary.MaxVarintLen64]byte
}

func (w *writer) ContentType() string { return ContentType }

func (w *writer) uvarint(v uint64) error {
	n := binary.PutUvarint(w.scratch[:], v)
	_, err := w.out.Write(w.scratch[:n])
	return err
}

func (w *writer) BeginObject(string) error { return nil }
func (w *writer) EndObject() error         { return nil }

func (w *writer) BeginArray(_ string, size int) error {
	return w.uvarint(uint64(size))
}

func (w *writer) EndArray() error { return nil }

func (w *writer) WriteBool(_ string, v bool) error {
	var b byte
	if v {
		b = 1
	}
	return w.out.WriteByte(b)
}

func (w *writer) WriteInt(_ string, v int64) error {
	n := binary.PutVarint(w.scratch[:], v)
	_, err := w.out.Write(w.scratch[:n])
	return err
}

func (w *writer) WriteUint(_ string, v uint64) error {
	return w.uvarint(v)
}

func (w *writer) WriteFloat(_ string, v float64, bits int) error {
	if bits == 32 {
		binary.LittleEndian.PutUint32(w.scratch[:4], math.Float32bits(float32(v)))
		_, err := w.out.Write(w.scratch[:4])
		return err
	}
	binary.LittleEndian.PutUint64(w.scratch[:8], math.Float64bits(v))
	_, err := w.out.Write(w.scratch[:8])
	return err
}

func (w *writer) WriteString(_ string, v string) error {
	if err := w.uvarint(uint64(len(v))); err != nil {
		return err
	}
	_, err := w.out.WriteString(v)
	return err
}

func (w *writer) WriteBytes(_ string, v []byte) error {
	if err := w.uvarint(uint64(len(v))); err != nil {
		return err
	}
	_, err := w.out.Write(v)
	return err
}

// Close flushes buffered output.
func (w *writer) Close() error {
	return w.out.Flush()
}

type reader struct {
	in  *bufio.Reader
	src *source
}

func (r *reader) ContentType() string { return ContentType }

// fail classifies a read error. Anything but a failing stream is malformed input.
func (r *reader) fail(err error) error {
	if r.src.err != nil {
		return fmt.Errorf("%w: %w", pantry.ErrIO, r.src.err)
	}
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return pantry.NewFormatError(ContentType, err)
}

func (r *reader) length() (int, error) {
	n, err := binary.ReadUvarint(r.in)
	if err != nil {
		return 0, r.fail(err)
	}
	if n > math.MaxInt32 {
		return 0, pantry.NewFormatError(ContentType, fmt.Errorf("length %d out of range", n))
	}
	return int(n), nil
}

// bytes reads n bytes without trusting n for the allocation size.
func (r *reader) bytes(n int) ([]byte, error) {
	buf := make([]byte, 0, min(n, chunk))
	for len(buf) < n {
		step := min(n-len(buf), chunk)
		start := len(buf)
		buf = append(buf, make([]byte, step)...)
		if _, err := io.ReadFull(r.in, buf[start:]); err != nil {
			return nil, r.fail(err)
		}
	}
	return buf, nil
}

func (r *reader) BeginObject(string) error { return nil }
func (r *reader) EndObject() error         { return nil }

func (r *reader) BeginArray(string) (int, error) {
	return r.length()
}

func (r *reader) EndArray() error { return nil }

func (r *reader) ReadBool(string) (bool, error) {
	b, err := r.in.ReadByte()
	if err != nil {
		return false, r.fail(err)
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, pantry.NewFormatError(ContentType, fmt.Errorf("invalid bool byte %#x", b))
}

func (r *reader) ReadInt(string) (int64, error) {
	v, err := binary.ReadVarint(r.in)
	if err != nil {
		return 0, r.fail(err)
	}
	return v, nil
}

func (r *reader) ReadUint(string) (uint64, error) {
	v, err := binary.ReadUvarint(r.in)
	if err != nil {
		return 0, r.fail(err)
	}
	return v, nil
}

func (r *reader) ReadFloat(_ string, bits int) (float64, error) {
	if bits == 32 {
		var b [4]byte
		if _, err := io.ReadFull(r.in, b[:]); err != nil {
			return 0, r.fail(err)
		}
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b[:]))), nil
	}
	var b [8]byte
	if _, err := io.ReadFull(r.in, b[:]); err != nil {
		return 0, r.fail(err)
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b[:])), nil
}

func (r *reader) ReadString(string) (string, error) {
	n, err := r.length()
	if err != nil {
		return "", err
	}
	b, err := r.bytes(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *reader) ReadBytes(string) ([]byte, error) {
	n, err := r.length()
	if err != nil {
		return nil, err
	}
	return r.bytes(n)
}

func (r *reader) Close() error { return nil }

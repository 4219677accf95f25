// Package testing provides test utilities for pantry.
package testing

import (
	"bytes"
	"context"
	"testing"

	"github.com/zoobzio/pantry"
	"github.com/zoobzio/pantry/seal"
)

// TestKey returns a valid 32-byte key for testing.
func TestKey(t testing.TB) []byte {
	t.Helper()
	return []byte("32-byte-key-for-aes-256-encrypt!")
}

// TestSealer returns an XChaCha20-Poly1305 sealer configured for testing.
func TestSealer(t testing.TB) seal.Sealer {
	t.Helper()
	s, err := seal.XChaCha(TestKey(t))
	if err != nil {
		t.Fatalf("XChaCha() error: %v", err)
	}
	return s
}

// Encode saves values as the top-level entries of one document.
func Encode(t testing.TB, f pantry.Format, opts []pantry.Option, values ...any) []byte {
	t.Helper()
	var buf bytes.Buffer
	oa := pantry.Output(f, &buf, opts...)
	if err := oa.Save(context.Background(), values...); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := oa.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	return buf.Bytes()
}

// Decode loads the top-level entries of data into ptrs.
func Decode(t testing.TB, f pantry.Format, data []byte, opts []pantry.Option, ptrs ...any) {
	t.Helper()
	if err := Load(f, data, opts, ptrs...); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
}

// Load is Decode returning the error instead of failing the test.
func Load(f pantry.Format, data []byte, opts []pantry.Option, ptrs ...any) error {
	ia, err := pantry.Input(f, bytes.NewReader(data), opts...)
	if err != nil {
		return err
	}
	if err := ia.Load(context.Background(), ptrs...); err != nil {
		return err
	}
	return ia.Close()
}

// RoundTrip saves in with f and loads the result into a new T.
func RoundTrip[T any](t testing.TB, f pantry.Format, in *T, opts ...pantry.Option) *T {
	t.Helper()
	data := Encode(t, f, opts, in)
	out := new(T)
	Decode(t, f, data, opts, out)
	return out
}

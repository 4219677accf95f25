package seal_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zoobzio/pantry"
	"github.com/zoobzio/pantry/json"
	"github.com/zoobzio/pantry/seal"
	pantrytest "github.com/zoobzio/pantry/testing"
)

func sealers(t *testing.T) map[string]seal.Sealer {
	t.Helper()
	key := pantrytest.TestKey(t)

	aes, err := seal.AES(key)
	if err != nil {
		t.Fatalf("AES() error: %v", err)
	}
	xchacha, err := seal.XChaCha(key)
	if err != nil {
		t.Fatalf("XChaCha() error: %v", err)
	}
	envelope, err := seal.Envelope(key[:16])
	if err != nil {
		t.Fatalf("Envelope() error: %v", err)
	}
	passphrase := seal.Passphrase([]byte("correct horse"), seal.Argon2Params{Memory: 64, Threads: 1})

	return map[string]seal.Sealer{
		"aes":        aes,
		"xchacha":    xchacha,
		"envelope":   envelope,
		"passphrase": passphrase,
	}
}

func TestSealer_RoundTrip(t *testing.T) {
	for name, s := range sealers(t) {
		t.Run(name, func(t *testing.T) {
			plaintext := []byte("hello, world!")
			ciphertext, err := s.Seal(plaintext)
			if err != nil {
				t.Fatalf("Seal() error: %v", err)
			}
			if bytes.Contains(ciphertext, plaintext) {
				t.Error("ciphertext should not contain the plaintext")
			}

			got, err := s.Open(ciphertext)
			if err != nil {
				t.Fatalf("Open() error: %v", err)
			}
			if !bytes.Equal(got, plaintext) {
				t.Errorf("Open() = %q, want %q", got, plaintext)
			}
		})
	}
}

func TestSealer_FreshNonce(t *testing.T) {
	for name, s := range sealers(t) {
		t.Run(name, func(t *testing.T) {
			c1, _ := s.Seal([]byte("hello"))
			c2, _ := s.Seal([]byte("hello"))
			if bytes.Equal(c1, c2) {
				t.Error("same plaintext should produce different ciphertext")
			}
		})
	}
}

func TestSealer_Tampered(t *testing.T) {
	for name, s := range sealers(t) {
		t.Run(name, func(t *testing.T) {
			ciphertext, err := s.Seal([]byte("payload"))
			if err != nil {
				t.Fatalf("Seal() error: %v", err)
			}
			ciphertext[len(ciphertext)-1] ^= 0xff

			if _, err := s.Open(ciphertext); !errors.Is(err, seal.ErrDecryptionFailed) {
				t.Errorf("Open() error = %v, want ErrDecryptionFailed", err)
			}
		})
	}
}

func TestSealer_Short(t *testing.T) {
	for name, s := range sealers(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Open([]byte{0, 1}); !errors.Is(err, seal.ErrCiphertextShort) {
				t.Errorf("Open() error = %v, want ErrCiphertextShort", err)
			}
		})
	}
}

func TestSealer_InvalidKeySize(t *testing.T) {
	short := []byte("short")
	if _, err := seal.AES(short); !errors.Is(err, seal.ErrInvalidKeySize) {
		t.Errorf("AES() error = %v, want ErrInvalidKeySize", err)
	}
	if _, err := seal.XChaCha(short); !errors.Is(err, seal.ErrInvalidKeySize) {
		t.Errorf("XChaCha() error = %v, want ErrInvalidKeySize", err)
	}
	if _, err := seal.Envelope(short); !errors.Is(err, seal.ErrInvalidKeySize) {
		t.Errorf("Envelope() error = %v, want ErrInvalidKeySize", err)
	}
}

func TestPassphrase_WrongPassphrase(t *testing.T) {
	params := seal.Argon2Params{Memory: 64, Threads: 1}
	ciphertext, err := seal.Passphrase([]byte("right"), params).Seal([]byte("secret"))
	if err != nil {
		t.Fatalf("Seal() error: %v", err)
	}
	_, err = seal.Passphrase([]byte("wrong"), params).Open(ciphertext)
	if !errors.Is(err, seal.ErrDecryptionFailed) {
		t.Errorf("Open() error = %v, want ErrDecryptionFailed", err)
	}
}

func TestWrap(t *testing.T) {
	f := seal.Wrap(json.New(), pantrytest.TestSealer(t))
	if got := f.ContentType(); got != "application/json+sealed" {
		t.Errorf("ContentType() = %q, want %q", got, "application/json+sealed")
	}

	in := pantrytest.SampleObject()
	data := pantrytest.Encode(t, f, nil, &in)
	if bytes.Contains(data, []byte("quick brown fox")) {
		t.Error("sealed document should not contain plaintext")
	}

	var out pantrytest.Object
	pantrytest.Decode(t, f, data, nil, &out)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("Object mismatch (-want +got):\n%s", diff)
	}
}

func TestWrap_WrongKey(t *testing.T) {
	in := pantrytest.Point{X: 1}
	data, err := pantry.Marshal(context.Background(), seal.Wrap(json.New(), pantrytest.TestSealer(t)), &in)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	other, err := seal.XChaCha(bytes.Repeat([]byte{7}, 32))
	if err != nil {
		t.Fatalf("XChaCha() error: %v", err)
	}
	var out pantrytest.Point
	err = pantry.Unmarshal(context.Background(), seal.Wrap(json.New(), other), data, &out)
	if !errors.Is(err, seal.ErrDecryptionFailed) {
		t.Errorf("Unmarshal() error = %v, want ErrDecryptionFailed", err)
	}
}

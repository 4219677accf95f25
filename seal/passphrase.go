package seal

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Argon2Params configures Argon2id key derivation.
type Argon2Params struct {
	Time    uint32 // Number of iterations
	Memory  uint32 // Memory usage in KiB
	Threads uint8  // Parallelism factor
	SaltLen uint32 // Salt length
}

// DefaultArgon2Params returns recommended Argon2id parameters.
// Based on OWASP recommendations.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Time:    1,
		Memory:  64 * 1024, // 64 MiB
		Threads: 4,
		SaltLen: 16,
	}
}

// passphraseSealer derives a fresh key per payload from a passphrase.
type passphraseSealer struct {
	passphrase []byte
	params     Argon2Params
}

// Passphrase returns a sealer keyed by a passphrase. Each payload gets a random
// salt, stored ahead of the ciphertext, and an XChaCha20-Poly1305 key derived with
// Argon2id. Both sides must use the same params.
func Passphrase(passphrase []byte, params Argon2Params) Sealer {
	defaults := DefaultArgon2Params()
	if params.Time == 0 {
		params.Time = defaults.Time
	}
	if params.Threads == 0 {
		params.Threads = defaults.Threads
	}
	if params.SaltLen == 0 {
		params.SaltLen = defaults.SaltLen
	}
	return &passphraseSealer{
		passphrase: append([]byte(nil), passphrase...),
		params:     params,
	}
}

func (s *passphraseSealer) derive(salt []byte) []byte {
	return argon2.IDKey(s.passphrase, salt, s.params.Time, s.params.Memory, s.params.Threads, chacha20poly1305.KeySize)
}

func (s *passphraseSealer) Seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, s.params.SaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	aead, err := chacha20poly1305.NewX(s.derive(salt))
	if err != nil {
		return nil, err
	}
	sealed, err := seal(aead, plaintext)
	if err != nil {
		return nil, err
	}

	// Format: [salt][nonce][ciphertext]
	return append(salt, sealed...), nil
}

func (s *passphraseSealer) Open(ciphertext []byte) ([]byte, error) {
	n := int(s.params.SaltLen)
	if len(ciphertext) < n {
		return nil, ErrCiphertextShort
	}
	aead, err := chacha20poly1305.NewX(s.derive(ciphertext[:n]))
	if err != nil {
		return nil, err
	}
	return open(aead, ciphertext[n:])
}

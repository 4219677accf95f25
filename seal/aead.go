package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// Sealing errors.
var (
	ErrInvalidKeySize   = errors.New("invalid key size")
	ErrCiphertextShort  = errors.New("ciphertext too short")
	ErrDecryptionFailed = errors.New("decryption failed")
)

// aeadSealer seals with a random nonce prepended to the ciphertext.
type aeadSealer struct {
	aead cipher.AEAD
}

// AES returns an AES-GCM sealer.
// Key must be 16, 24, or 32 bytes for AES-128, AES-192, or AES-256.
func AES(key []byte) (Sealer, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return &aeadSealer{aead: gcm}, nil
}

// XChaCha returns an XChaCha20-Poly1305 sealer. Key must be 32 bytes.
// Its 24-byte random nonces are safe for any number of payloads under one key.
func XChaCha(key []byte) (Sealer, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("%w: must be %d bytes, got %d", ErrInvalidKeySize, chacha20poly1305.KeySize, len(key))
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &aeadSealer{aead: aead}, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != 16 && len(key) != 24 && len(key) != 32 {
		return nil, fmt.Errorf("%w: must be 16, 24, or 32 bytes, got %d", ErrInvalidKeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (s *aeadSealer) Seal(plaintext []byte) ([]byte, error) {
	return seal(s.aead, plaintext)
}

func (s *aeadSealer) Open(ciphertext []byte) ([]byte, error) {
	return open(s.aead, ciphertext)
}

func seal(aead cipher.AEAD, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	// Prepend nonce to ciphertext
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func open(aead cipher.AEAD, ciphertext []byte) ([]byte, error) {
	nonceSize := aead.NonceSize()
	if len(ciphertext) < nonceSize+aead.Overhead() {
		return nil, ErrCiphertextShort
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

// envelopeSealer implements envelope encryption.
// A random data key is generated per payload, sealed with the master key,
// and prepended to the ciphertext.
type envelopeSealer struct {
	master      cipher.AEAD
	dataKeySize int
}

// Envelope returns an envelope sealer using a master key.
// Master key must be 16, 24, or 32 bytes.
func Envelope(masterKey []byte) (Sealer, error) {
	gcm, err := newGCM(masterKey)
	if err != nil {
		return nil, err
	}
	return &envelopeSealer{
		master:      gcm,
		dataKeySize: chacha20poly1305.KeySize,
	}, nil
}

func (s *envelopeSealer) Seal(plaintext []byte) ([]byte, error) {
	dataKey := make([]byte, s.dataKeySize)
	if _, err := io.ReadFull(rand.Reader, dataKey); err != nil {
		return nil, err
	}
	data, err := chacha20poly1305.NewX(dataKey)
	if err != nil {
		return nil, err
	}
	sealedData, err := seal(data, plaintext)
	if err != nil {
		return nil, err
	}
	sealedKey, err := seal(s.master, dataKey)
	if err != nil {
		return nil, err
	}

	// Format: [2 bytes key len][sealed key][sealed data]
	keyLen := uint16(len(sealedKey)) // #nosec G115 -- a sealed 32-byte key is under 100 bytes
	out := make([]byte, 2+len(sealedKey)+len(sealedData))
	out[0] = byte(keyLen >> 8)
	out[1] = byte(keyLen)
	copy(out[2:], sealedKey)
	copy(out[2+len(sealedKey):], sealedData)
	return out, nil
}

func (s *envelopeSealer) Open(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < 2 {
		return nil, ErrCiphertextShort
	}
	keyLen := int(uint16(ciphertext[0])<<8 | uint16(ciphertext[1]))
	if len(ciphertext) < 2+keyLen {
		return nil, ErrCiphertextShort
	}

	dataKey, err := open(s.master, ciphertext[2:2+keyLen])
	if err != nil {
		return nil, err
	}
	data, err := chacha20poly1305.NewX(dataKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	return open(data, ciphertext[2+keyLen:])
}

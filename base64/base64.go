// Package base64 provides the two base64 codecs used for byte payloads in text
// archives: Std, the standard alphabet with padding, and URL, the URL-safe
// alphabet without padding.
//
//	s := base64.Std.EncodeToString([]byte{1, 2, 3, 255}) // "AQID/w=="
//	u := base64.URL.EncodeToString([]byte{1, 2, 3, 255}) // "AQID_w"
package base64

import (
	"encoding/base64"
	"strings"
)

// Codec encodes and decodes one base64 variant.
type Codec struct {
	enc *base64.Encoding
	// lenient decodes input with or without padding.
	lenient bool
}

var (
	// Std is the standard alphabet (RFC 4648 section 4) with '=' padding.
	Std = &Codec{enc: base64.StdEncoding}

	// URL is the URL and filename safe alphabet (RFC 4648 section 5) without
	// padding. Its decoder also accepts padded input.
	URL = &Codec{enc: base64.RawURLEncoding, lenient: true}
)

// EncodedLen returns the length of the encoding of n source bytes.
func (c *Codec) EncodedLen(n int) int {
	return c.enc.EncodedLen(n)
}

// Encode writes the encoding of src to dst and returns the number of bytes
// written. dst must hold EncodedLen(len(src)) bytes.
func (c *Codec) Encode(dst, src []byte) int {
	n := c.enc.EncodedLen(len(src))
	c.enc.Encode(dst, src)
	return n
}

// EncodeToString returns the encoding of src.
func (c *Codec) EncodeToString(src []byte) string {
	return c.enc.EncodeToString(src)
}

// AppendEncode appends the encoding of src to dst.
func (c *Codec) AppendEncode(dst, src []byte) []byte {
	return c.enc.AppendEncode(dst, src)
}

// DecodedLen returns the maximum length of the data decoded from n bytes of input.
func (c *Codec) DecodedLen(n int) int {
	if c.lenient {
		// Raw length covers padded input too.
		return base64.RawURLEncoding.DecodedLen(n)
	}
	return c.enc.DecodedLen(n)
}

// Decode writes the decoding of src to dst and returns the number of bytes written.
// dst must hold DecodedLen(len(src)) bytes.
func (c *Codec) Decode(dst, src []byte) (int, error) {
	if c.lenient {
		src = trimPadding(src)
	}
	return c.enc.Decode(dst, src)
}

// DecodeString returns the bytes represented by s.
func (c *Codec) DecodeString(s string) ([]byte, error) {
	if c.lenient {
		s = strings.TrimRight(s, "=")
	}
	return c.enc.DecodeString(s)
}

func trimPadding(src []byte) []byte {
	for len(src) > 0 && src[len(src)-1] == '=' {
		src = src[:len(src)-1]
	}
	return src
}

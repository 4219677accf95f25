package base64

import (
	"bytes"
	"testing"
)

var sample = []byte{1, 2, 3, 255}

func TestStd(t *testing.T) {
	t.Run("encode", func(t *testing.T) {
		got := Std.EncodeToString(sample)
		if got != "AQID/w==" {
			t.Errorf("EncodeToString() = %q, want %q", got, "AQID/w==")
		}
		if n := Std.EncodedLen(len(sample)); n != 8 {
			t.Errorf("EncodedLen() = %d, want 8", n)
		}
	})

	t.Run("encode into buffer", func(t *testing.T) {
		dst := make([]byte, Std.EncodedLen(len(sample)))
		n := Std.Encode(dst, sample)
		if n != 8 {
			t.Errorf("Encode() = %d, want 8", n)
		}
		if string(dst[:n]) != "AQID/w==" {
			t.Errorf("Encode() wrote %q, want %q", dst[:n], "AQID/w==")
		}
	})

	t.Run("decode", func(t *testing.T) {
		got, err := Std.DecodeString("AQID/w==")
		if err != nil {
			t.Fatalf("DecodeString() error = %v", err)
		}
		if !bytes.Equal(got, sample) {
			t.Errorf("DecodeString() = %v, want %v", got, sample)
		}
	})

	t.Run("decode into buffer", func(t *testing.T) {
		src := []byte("AQID/w==")
		dst := make([]byte, Std.DecodedLen(len(src)))
		n, err := Std.Decode(dst, src)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if !bytes.Equal(dst[:n], sample) {
			t.Errorf("Decode() = %v, want %v", dst[:n], sample)
		}
	})

	t.Run("rejects url alphabet", func(t *testing.T) {
		if _, err := Std.DecodeString("AQID_w=="); err == nil {
			t.Error("DecodeString() should reject '_'")
		}
	})
}

func TestURL(t *testing.T) {
	got := URL.EncodeToString(sample)
	if got != "AQID_w" {
		t.Errorf("EncodeToString() = %q, want %q", got, "AQID_w")
	}
	if n := URL.EncodedLen(len(sample)); n != 6 {
		t.Errorf("EncodedLen() = %d, want 6", n)
	}

	for _, in := range []string{"AQID_w", "AQID_w=="} {
		t.Run(in, func(t *testing.T) {
			got, err := URL.DecodeString(in)
			if err != nil {
				t.Fatalf("DecodeString() error = %v", err)
			}
			if !bytes.Equal(got, sample) {
				t.Errorf("DecodeString() = %v, want %v", got, sample)
			}

			dst := make([]byte, URL.DecodedLen(len(in)))
			n, err := URL.Decode(dst, []byte(in))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !bytes.Equal(dst[:n], sample) {
				t.Errorf("Decode() = %v, want %v", dst[:n], sample)
			}
		})
	}
}

func TestAppendEncode(t *testing.T) {
	got := Std.AppendEncode([]byte("x="), sample)
	if string(got) != "x=AQID/w==" {
		t.Errorf("AppendEncode() = %q, want %q", got, "x=AQID/w==")
	}
}

func TestRoundTripLengths(t *testing.T) {
	for n := 0; n < 8; n++ {
		src := make([]byte, n)
		for i := range src {
			src[i] = byte(i * 37)
		}
		for _, c := range []*Codec{Std, URL} {
			enc := c.EncodeToString(src)
			if len(enc) != c.EncodedLen(n) {
				t.Errorf("len(EncodeToString(%d bytes)) = %d, want %d", n, len(enc), c.EncodedLen(n))
			}
			dec, err := c.DecodeString(enc)
			if err != nil {
				t.Fatalf("DecodeString(%q) error = %v", enc, err)
			}
			if !bytes.Equal(dec, src) {
				t.Errorf("DecodeString(%q) = %v, want %v", enc, dec, src)
			}
		}
	}
}

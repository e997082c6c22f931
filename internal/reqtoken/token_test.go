package reqtoken

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func sequentialReader(start byte) *bytes.Reader {
	buf := make([]byte, NonceLength)
	for i := range buf {
		buf[i] = start + byte(i)
	}
	return bytes.NewReader(buf)
}

func TestGenerateGoldenToken(t *testing.T) {
	gen := Generator{Rand: sequentialReader(0)}
	tok, err := gen.Generate("06A0000000000263550B")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if tok.Nonce != "ABCDEFGHIJKLMNOP" {
		t.Fatalf("unexpected nonce %q", tok.Nonce)
	}
	if tok.Value != "AhBJC3D7E4F-G3H_I4JEK7LKM6NLO6P1" {
		t.Fatalf("unexpected token %q", tok.Value)
	}
	if tok.Checksum() != "19fc8eff82037f1fc0d8ea1d32b5e339" {
		t.Fatalf("unexpected checksum %q", tok.Checksum())
	}
}

func TestGenerateShortContentID(t *testing.T) {
	// bytes 200.. mask down to the symbols starting at 'I'
	tok, err := Generator{Rand: sequentialReader(200)}.Generate("X")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if tok.Value != "I5JDK4LEM5NHO4PYQ5RbS4TcU5VfW4XQ" {
		t.Fatalf("unexpected token %q", tok.Value)
	}
}

func TestGenerateShape(t *testing.T) {
	for _, cid := range []string{"a", "06A0000000000263550B", strings.Repeat("z", 40), "漫画"} {
		tok, err := Generate(cid)
		if err != nil {
			t.Fatalf("Generate(%q): %v", cid, err)
		}
		if len(tok.Value) != TokenLength || len(tok.Nonce) != NonceLength {
			t.Fatalf("unexpected lengths for %q: %d/%d", cid, len(tok.Value), len(tok.Nonce))
		}
		for _, r := range tok.Value {
			if !strings.ContainsRune(Alphabet, r) {
				t.Fatalf("token %q has symbol %q outside alphabet", tok.Value, r)
			}
		}
		nonce, err := Deinterleave(tok.Value)
		if err != nil {
			t.Fatalf("Deinterleave: %v", err)
		}
		if nonce != tok.Nonce {
			t.Fatalf("deinterleaved %q, want %q", nonce, tok.Nonce)
		}
		if err := Verify(cid, tok.Value); err != nil {
			t.Fatalf("Verify: %v", err)
		}
	}
}

func TestGenerateEmptyContentID(t *testing.T) {
	if _, err := Generate(""); !errors.Is(err, ErrEmptyContentID) {
		t.Fatalf("expected ErrEmptyContentID, got %v", err)
	}
}

func TestGenerateShortEntropy(t *testing.T) {
	gen := Generator{Rand: bytes.NewReader([]byte{1, 2, 3})}
	if _, err := gen.Generate("cid"); err == nil {
		t.Fatal("expected error from exhausted reader")
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	tok, err := Generator{Rand: sequentialReader(0)}.Generate("06A0000000000263550B")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := Verify("06A0000000000263550C", tok.Value); !errors.Is(err, ErrMalformedToken) {
		t.Fatalf("expected mismatch for other content id, got %v", err)
	}
	if err := Verify("06A0000000000263550B", tok.Value[:31]); !errors.Is(err, ErrMalformedToken) {
		t.Fatalf("expected length error, got %v", err)
	}
	bad := "!" + tok.Value[1:]
	if _, err := Deinterleave(bad); !errors.Is(err, ErrMalformedToken) {
		t.Fatalf("expected alphabet error, got %v", err)
	}
}

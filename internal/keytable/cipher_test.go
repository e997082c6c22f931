package keytable

import (
	"errors"
	"strings"
	"testing"
)

func TestSeedGoldenValues(t *testing.T) {
	cases := []struct {
		contentID string
		key       string
		want      uint32
	}{
		{"ABC", "XYZ", 10945},
		{"06A0000000000263550B", "abcdefghijklmnop", 10307781},
		// code points above the BMP contribute both surrogate halves
		{"é", "𝄞", 674589},
	}
	for _, tc := range cases {
		if got := Seed(tc.contentID, tc.key); got != tc.want {
			t.Fatalf("Seed(%q, %q) = %d, want %d", tc.contentID, tc.key, got, tc.want)
		}
	}
}

func TestDecryptKnownCiphertext(t *testing.T) {
	doc, ok := Decrypt("ABC", "XYZ", "c&>^h Km2?R")
	if !ok {
		t.Fatal("expected decrypted JSON")
	}
	if string(doc) != `["k0","k1"]` {
		t.Fatalf("unexpected plaintext %q", doc)
	}
}

func TestDecryptIsDeterministic(t *testing.T) {
	enc := "c&>^h Km2?R"
	first := Plaintext("ABC", "XYZ", enc)
	for range 5 {
		if got := Plaintext("ABC", "XYZ", enc); got != first {
			t.Fatalf("plaintext changed between calls: %q vs %q", got, first)
		}
	}
}

func TestDecryptWrongKeyIsAbsent(t *testing.T) {
	enc, err := Encrypt("ABC", "XYZ", `{"tables":["a","b","c"]}`)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, ok := Decrypt("ABC", "XYZ", enc); !ok {
		t.Fatal("expected matching key to decrypt")
	}
	if doc, ok := Decrypt("ABC", "XYW", enc); ok {
		t.Fatalf("expected wrong key to produce invalid JSON, got %q", doc)
	}
}

func TestDecryptNonJSONIsAbsent(t *testing.T) {
	enc, err := Encrypt("cid", "key", "this is not json")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	doc, ok := Decrypt("cid", "key", enc)
	if ok || doc != nil {
		t.Fatalf("expected absent result, got %q ok=%v", doc, ok)
	}
	if got := Plaintext("cid", "key", enc); got != "this is not json" {
		t.Fatalf("Plaintext = %q", got)
	}
}

func TestEncryptRoundTrip(t *testing.T) {
	plain := `["=16-16+2-AbCd_-","42","",{"nested":[1,2,3]}]`
	enc, err := Encrypt("06A0000000000263550B", "abcdefghijklmnop", plain)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if len(enc) != len(plain) {
		t.Fatalf("ciphertext length %d, want %d", len(enc), len(plain))
	}
	doc, ok := Decrypt("06A0000000000263550B", "abcdefghijklmnop", enc)
	if !ok {
		t.Fatal("round trip did not yield JSON")
	}
	if string(doc) != plain {
		t.Fatalf("round trip mismatch: %q", doc)
	}
}

func TestEncryptRejectsUnrepresentable(t *testing.T) {
	for _, input := range []string{"tilde~", "tab\t", "é"} {
		if _, err := Encrypt("cid", "key", input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestDecryptTable(t *testing.T) {
	want := Table{"k0", "k1", "k2", "k3", "k4", "k5", "k6", "k7"}
	enc, err := EncryptTable("cid", "key", want)
	if err != nil {
		t.Fatalf("EncryptTable: %v", err)
	}
	got, ok := DecryptTable("cid", "key", enc)
	if !ok {
		t.Fatal("expected table")
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("table mismatch: %v", got)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestDecryptTableRejectsNonArray(t *testing.T) {
	for _, plain := range []string{`{"a":"b"}`, `[1,2,3]`, `null`} {
		enc, err := Encrypt("cid", "key", plain)
		if err != nil {
			t.Fatalf("Encrypt(%q): %v", plain, err)
		}
		if table, ok := DecryptTable("cid", "key", enc); ok {
			t.Fatalf("expected %q to be rejected, got %v", plain, table)
		}
	}
}

func TestTableValidateShort(t *testing.T) {
	err := Table{"a", "b", "c"}.Validate()
	if !errors.Is(err, ErrShortTable) {
		t.Fatalf("expected ErrShortTable, got %v", err)
	}
	if !strings.Contains(err.Error(), "got 3") {
		t.Fatalf("expected length in error, got %q", err)
	}
}

package keytable

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf16"
)

const (
	// fallbackSeed replaces a seed whose low 31 bits are all zero.
	fallbackSeed uint32 = 305419896
	// feedback is XORed into the shifted state whenever the outgoing bit is set.
	feedback uint32 = 1210056708

	printableBase  = 32
	printableRange = 94
)

// Seed derives the keystream seed from a content identifier and the request
// token the tables were issued against. Each UTF-16 code unit of
// "contentID:initialKey" is shifted left by its position mod 16 and summed with
// 32-bit wraparound; the sign bit is then cleared.
func Seed(contentID, initialKey string) uint32 {
	var acc uint32
	for i, code := range codeUnits(contentID + ":" + initialKey) {
		acc += uint32(code) << (uint(i) % 16)
	}
	acc &= 0x7FFFFFFF
	if acc == 0 {
		return fallbackSeed
	}
	return acc
}

// keystream yields successive 32-bit cipher states starting from seed.
type keystream struct {
	state uint32
}

func (k *keystream) next() uint32 {
	// logical shift on the unsigned state; the feedback constant is applied
	// whole when the outgoing bit is 1 and not at all when it is 0.
	k.state = (k.state >> 1) ^ (feedback & -(k.state & 1))
	return k.state
}

// Plaintext returns the raw decrypted text without attempting to parse it.
func Plaintext(contentID, initialKey, encrypted string) string {
	ks := keystream{state: Seed(contentID, initialKey)}
	units := codeUnits(encrypted)
	out := make([]uint16, len(units))
	for i, c := range units {
		u := ks.next()
		code := int64(c) - printableBase + int64(int32(u))
		out[i] = uint16(floorMod(code, printableRange) + printableBase)
	}
	return string(utf16.Decode(out))
}

// Decrypt recovers the JSON document carried by an encrypted key table. The
// second return value is false when the decrypted text is not valid JSON; the
// caller should treat that table as unavailable.
func Decrypt(contentID, initialKey, encrypted string) (json.RawMessage, bool) {
	plain := Plaintext(contentID, initialKey, encrypted)
	if !json.Valid([]byte(plain)) {
		return nil, false
	}
	return json.RawMessage(plain), true
}

// Encrypt is the forward counterpart of Decrypt. Only printable ASCII from
// 0x20 through 0x7D can be represented; anything else is rejected.
func Encrypt(contentID, initialKey, plaintext string) (string, error) {
	ks := keystream{state: Seed(contentID, initialKey)}
	var b strings.Builder
	b.Grow(len(plaintext))
	for i, r := range plaintext {
		if r < printableBase || r >= printableBase+printableRange {
			return "", fmt.Errorf("encrypt key table: byte %d: %q outside printable range", i, r)
		}
		u := ks.next()
		code := int64(r) - printableBase - int64(int32(u))
		b.WriteByte(byte(floorMod(code, printableRange) + printableBase))
	}
	return b.String(), nil
}

// floorMod returns the mathematical modulo, always in [0, m).
func floorMod(value, m int64) int64 {
	return ((value % m) + m) % m
}

func codeUnits(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

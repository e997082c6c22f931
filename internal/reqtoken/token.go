package reqtoken

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf16"
)

// Alphabet is the 64-symbol set nonces and hash characters are drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

const (
	// NonceLength is the number of random symbols in a nonce.
	NonceLength = 16
	// TokenLength is the length of an interleaved token.
	TokenLength = 2 * NonceLength
)

var (
	// ErrEmptyContentID is returned when no content id is supplied.
	ErrEmptyContentID = errors.New("content id is empty")
	// ErrMalformedToken reports a token of the wrong length or alphabet.
	ErrMalformedToken = errors.New("malformed request token")
)

// Token is a request token and the nonce it was built from. The nonce must be
// sent alongside the token as Checksum(Nonce).
type Token struct {
	Value string `json:"token"`
	Nonce string `json:"nonce"`
}

// Checksum returns the nonce checksum the server expects.
func (t Token) Checksum() string {
	return Checksum(t.Nonce)
}

// Generator produces request tokens. Rand supplies nonce entropy; nil means
// crypto/rand.
type Generator struct {
	Rand io.Reader
}

// Generate builds a token for contentID with a fresh nonce.
func (g Generator) Generate(contentID string) (Token, error) {
	if contentID == "" {
		return Token{}, ErrEmptyContentID
	}
	nonce, err := g.nonce()
	if err != nil {
		return Token{}, err
	}
	return Token{Value: interleave(contentID, nonce), Nonce: nonce}, nil
}

// Generate builds a token using crypto/rand.
func Generate(contentID string) (Token, error) {
	return Generator{}.Generate(contentID)
}

func (g Generator) nonce() (string, error) {
	src := g.Rand
	if src == nil {
		src = rand.Reader
	}
	buf := make([]byte, NonceLength)
	if _, err := io.ReadFull(src, buf); err != nil {
		return "", fmt.Errorf("read nonce entropy: %w", err)
	}
	// 256 is a multiple of 64, so masking keeps the draw uniform.
	for i, b := range buf {
		buf[i] = Alphabet[b&63]
	}
	return string(buf), nil
}

// interleave computes the hash characters for nonce against contentID and
// merges them with the nonce one-for-one.
func interleave(contentID, nonce string) string {
	head, tail := windows(contentID)
	var s, h, u uint32
	var b strings.Builder
	b.Grow(TokenLength)
	for i := range NonceLength {
		s ^= uint32(nonce[i])
		h ^= uint32(head[i])
		u ^= uint32(tail[i])
		b.WriteByte(nonce[i])
		b.WriteByte(Alphabet[(s+h+u)&63])
	}
	return b.String()
}

// windows returns the first and last 16 code units of contentID repeated
// ceil(16/len)+1 times.
func windows(contentID string) ([]uint16, []uint16) {
	units := utf16.Encode([]rune(contentID))
	repeat := (NonceLength+len(units)-1)/len(units) + 1
	full := make([]uint16, 0, repeat*len(units))
	for range repeat {
		full = append(full, units...)
	}
	return full[:NonceLength], full[len(full)-NonceLength:]
}

// Checksum returns the lowercase hex MD5 digest of the nonce.
func Checksum(nonce string) string {
	sum := md5.Sum([]byte(nonce))
	return hex.EncodeToString(sum[:])
}

// Deinterleave recovers the nonce from a token.
func Deinterleave(token string) (string, error) {
	if err := checkShape(token); err != nil {
		return "", err
	}
	nonce := make([]byte, NonceLength)
	for i := range NonceLength {
		nonce[i] = token[2*i]
	}
	return string(nonce), nil
}

// Verify reports whether token was generated for contentID.
func Verify(contentID, token string) error {
	if contentID == "" {
		return ErrEmptyContentID
	}
	nonce, err := Deinterleave(token)
	if err != nil {
		return err
	}
	if interleave(contentID, nonce) != token {
		return fmt.Errorf("%w: hash characters do not match content id", ErrMalformedToken)
	}
	return nil
}

func checkShape(token string) error {
	if len(token) != TokenLength {
		return fmt.Errorf("%w: length %d", ErrMalformedToken, len(token))
	}
	for i := 0; i < len(token); i++ {
		if strings.IndexByte(Alphabet, token[i]) < 0 {
			return fmt.Errorf("%w: byte %d outside alphabet", ErrMalformedToken, i)
		}
	}
	return nil
}

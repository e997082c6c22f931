package keyselect

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"

	"pagewright/internal/keytable"
)

// ErrTableTooShort reports a key table that cannot be indexed by a derived
// index. It indicates corrupt upstream data and is not recoverable.
var ErrTableTooShort = errors.New("key table too short for index")

// Selection is the key pair derived for a single image.
type Selection struct {
	KeyS   string `json:"key_s"`
	KeyH   string `json:"key_h"`
	IndexS int    `json:"index_s"`
	IndexH int    `json:"index_h"`
	Kind   Kind   `json:"kind"`
}

// Indices derives the (s, h) table indices for an image reference. Character
// codes of the filename at even positions sum into s, odd positions into h;
// both are reduced modulo 8.
func Indices(imageRef string) (int, int) {
	name := Filename(imageRef)
	if name == "" {
		return 0, 0
	}
	var acc [2]uint32
	for i, code := range utf16.Encode([]rune(name)) {
		acc[i%2] += uint32(code)
	}
	return int(acc[0] % 8), int(acc[1] % 8)
}

// Filename returns the portion of ref after its final "/".
func Filename(ref string) string {
	return ref[strings.LastIndex(ref, "/")+1:]
}

// Select picks key_s from ptbl and key_h from ctbl at the indices derived from
// imageRef and classifies the pair with Classify.
func Select(imageRef string, ptbl, ctbl keytable.Table) (Selection, error) {
	return SelectWith(imageRef, ptbl, ctbl, Classify)
}

// SelectWith is Select with an explicit classification rule.
func SelectWith(imageRef string, ptbl, ctbl keytable.Table, classify Classifier) (Selection, error) {
	indexS, indexH := Indices(imageRef)
	keyS, err := lookup("ptbl", ptbl, indexS)
	if err != nil {
		return Selection{}, err
	}
	keyH, err := lookup("ctbl", ctbl, indexH)
	if err != nil {
		return Selection{}, err
	}
	if classify == nil {
		classify = Classify
	}
	return Selection{
		KeyS:   keyS,
		KeyH:   keyH,
		IndexS: indexS,
		IndexH: indexH,
		Kind:   classify(keyS, keyH),
	}, nil
}

func lookup(name string, table keytable.Table, index int) (string, error) {
	if len(table) < keytable.MinEntries || index >= len(table) {
		return "", fmt.Errorf("%w: %s has %d entries, need index %d", ErrTableTooShort, name, len(table), index)
	}
	return table[index], nil
}

package tiling

import (
	"errors"
	"fmt"

	"pagewright/internal/keyselect"
	"pagewright/internal/tile"
)

// ErrMalformedKey reports a Type1 or Type2 key that does not parse.
var ErrMalformedKey = errors.New("malformed scramble key")

// Algorithm maps image dimensions to the directives that unscramble an image
// of that size. Directives carry no source id; callers resolve every tile
// against the single scrambled image.
type Algorithm interface {
	Kind() keyselect.Kind
	Tiles(width, height int) []tile.Directive
}

// For builds the algorithm for a classified key pair. keyS comes from ptbl
// and keyH from ctbl.
func For(kind keyselect.Kind, keyS, keyH string) (Algorithm, error) {
	switch kind {
	case keyselect.Type0:
		return Identity{}, nil
	case keyselect.Type1:
		return newGrid(keyS, keyH)
	case keyselect.Type2:
		return newPermutation(keyS, keyH)
	default:
		return nil, fmt.Errorf("%w: key_s=%q key_h=%q", keyselect.ErrUnsupportedScheme, keyS, keyH)
	}
}

// ForSelection is For applied to a key selection.
func ForSelection(sel keyselect.Selection) (Algorithm, error) {
	return For(sel.Kind, sel.KeyS, sel.KeyH)
}

// Identity copies the whole image unchanged.
type Identity struct{}

func (Identity) Kind() keyselect.Kind { return keyselect.Type0 }

func (Identity) Tiles(width, height int) []tile.Directive {
	return []tile.Directive{{Width: width, Height: height}}
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

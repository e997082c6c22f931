package tiling

import (
	"fmt"
	"regexp"
	"strconv"

	"pagewright/internal/keyselect"
	"pagewright/internal/tile"
)

var permutationKeyPattern = regexp.MustCompile(`^=([0-9]+)-([0-9]+)([-+])([0-9]+)-([-_0-9A-Za-z]+)$`)

// permutationKey holds one decoded key: per-column and per-row remainder
// positions and a tile permutation.
type permutationKey struct {
	cols, rows, pad int
	colRem          []int
	rowRem          []int
	perm            []int
}

// Permutation is the Type2 transform. The scrambled image is a cols x rows
// grid of padded tiles; keyH fixes the geometry and both keys together
// give the tile permutation.
type Permutation struct {
	cols, rows, pad int
	hRowRem         []int
	hColRem         []int
	sRowRem         []int
	sColRem         []int
	order           []int
}

func newPermutation(keyS, keyH string) (*Permutation, error) {
	primary, err := parsePermutationHeader(keyH)
	if err != nil {
		return nil, fmt.Errorf("%w: key_h: %v", ErrMalformedKey, err)
	}
	secondary, err := parsePermutationHeader(keyS)
	if err != nil {
		return nil, fmt.Errorf("%w: key_s: %v", ErrMalformedKey, err)
	}
	if err := primary.decode(keyH, primary.cols, primary.rows); err != nil {
		return nil, fmt.Errorf("%w: key_h: %v", ErrMalformedKey, err)
	}
	if err := secondary.decode(keyS, primary.cols, primary.rows); err != nil {
		return nil, fmt.Errorf("%w: key_s: %v", ErrMalformedKey, err)
	}

	total := primary.cols * primary.rows
	order := make([]int, total)
	for i := range total {
		order[i] = primary.perm[secondary.perm[i]]
	}
	return &Permutation{
		cols:    primary.cols,
		rows:    primary.rows,
		pad:     primary.pad,
		hRowRem: primary.rowRem,
		hColRem: primary.colRem,
		sRowRem: secondary.rowRem,
		sColRem: secondary.colRem,
		order:   order,
	}, nil
}

func (*Permutation) Kind() keyselect.Kind { return keyselect.Type2 }

func parsePermutationHeader(key string) (*permutationKey, error) {
	m := permutationKeyPattern.FindStringSubmatch(key)
	if m == nil {
		return nil, fmt.Errorf("%q: expected =cols-rows[+-]pad-data", key)
	}
	cols, err := strconv.Atoi(m[1])
	if err != nil || cols <= 0 {
		return nil, fmt.Errorf("%q: invalid column count", key)
	}
	rows, err := strconv.Atoi(m[2])
	if err != nil || rows <= 0 {
		return nil, fmt.Errorf("%q: invalid row count", key)
	}
	pad, err := strconv.Atoi(m[4])
	if err != nil {
		return nil, fmt.Errorf("%q: invalid padding", key)
	}
	return &permutationKey{cols: cols, rows: rows, pad: pad}, nil
}

// decode reads the data section as cols remainder columns, rows remainder
// rows and cols*rows permutation entries, all base64url symbols.
func (k *permutationKey) decode(key string, cols, rows int) error {
	data := permutationKeyPattern.FindStringSubmatch(key)[5]
	total := cols * rows
	if len(data) < cols+rows+total {
		return fmt.Errorf("%q: data length %d, want at least %d", key, len(data), cols+rows+total)
	}
	values := make([]int, cols+rows+total)
	for i := range values {
		v, ok := decodeBase64URL(data[i])
		if !ok {
			return fmt.Errorf("%q: invalid symbol %q", key, data[i])
		}
		values[i] = v
	}
	k.colRem = values[:cols]
	k.rowRem = values[cols : cols+rows]
	k.perm = values[cols+rows:]
	for i, p := range k.perm {
		if p >= total {
			return fmt.Errorf("%q: permutation entry %d = %d exceeds %d tiles", key, i, p, total)
		}
	}
	return nil
}

func decodeBase64URL(c byte) (int, bool) {
	switch {
	case c >= 'A' && c <= 'Z':
		return int(c - 'A'), true
	case c >= 'a' && c <= 'z':
		return 26 + int(c-'a'), true
	case c >= '0' && c <= '9':
		return 52 + int(c-'0'), true
	case c == '-':
		return 62, true
	case c == '_':
		return 63, true
	default:
		return 0, false
	}
}

// Tiles returns no directives when padding leaves no image area.
func (p *Permutation) Tiles(width, height int) []tile.Directive {
	innerW := width - 2*p.cols*p.pad
	innerH := height - 2*p.rows*p.pad
	if innerW <= 0 || innerH <= 0 {
		return nil
	}

	cellW := floorDiv(innerW+p.cols-1, p.cols)
	lastW := innerW - (p.cols-1)*cellW
	cellH := floorDiv(innerH+p.rows-1, p.rows)
	lastH := innerH - (p.rows-1)*cellH

	out := make([]tile.Directive, 0, len(p.order))
	for i, target := range p.order {
		col := i % p.cols
		row := i / p.cols
		xsrc := p.pad + col*(cellW+2*p.pad)
		if p.sRowRem[row] < col {
			xsrc += lastW - cellW
		}
		ysrc := p.pad + row*(cellH+2*p.pad)
		if p.sColRem[col] < row {
			ysrc += lastH - cellH
		}

		tcol := target % p.cols
		trow := target / p.cols
		xdest := tcol * cellW
		if p.hRowRem[trow] < tcol {
			xdest += lastW - cellW
		}
		ydest := trow * cellH
		if p.hColRem[tcol] < trow {
			ydest += lastH - cellH
		}

		w, h := cellW, cellH
		if p.sRowRem[row] == col {
			w = lastW
		}
		if p.sColRem[col] == row {
			h = lastH
		}
		out = append(out, tile.Directive{XSrc: xsrc, YSrc: ysrc, Width: w, Height: h, XDest: xdest, YDest: ydest})
	}
	return out
}

package tiling

import (
	"fmt"
	"strconv"
	"strings"

	"pagewright/internal/keyselect"
	"pagewright/internal/tile"
)

// piece is a grid cell in doubled units: even coordinates count full cells,
// odd ones add the remainder cell.
type piece struct {
	x, y, w, h int
}

type gridKey struct {
	ndx, ndy int
	pieces   []piece
}

// Grid is the Type1 transform: both keys describe an ndx x ndy grid of
// pieces, keyS giving where each piece sits in the scrambled image and keyH
// where it belongs.
type Grid struct {
	src, dst gridKey
}

func newGrid(keyS, keyH string) (*Grid, error) {
	src, err := parseGridKey(keyS)
	if err != nil {
		return nil, fmt.Errorf("%w: key_s: %v", ErrMalformedKey, err)
	}
	dst, err := parseGridKey(keyH)
	if err != nil {
		return nil, fmt.Errorf("%w: key_h: %v", ErrMalformedKey, err)
	}
	if len(dst.pieces) < len(src.pieces) {
		return nil, fmt.Errorf("%w: key_h has %d pieces, key_s has %d", ErrMalformedKey, len(dst.pieces), len(src.pieces))
	}
	return &Grid{src: src, dst: dst}, nil
}

func (*Grid) Kind() keyselect.Kind { return keyselect.Type1 }

// parseGridKey parses "ndx-ndy-data" where data holds two letters per piece.
func parseGridKey(key string) (gridKey, error) {
	parts := strings.Split(key, "-")
	if len(parts) != 3 {
		return gridKey{}, fmt.Errorf("%q: expected ndx-ndy-data", key)
	}
	ndx, err := strconv.Atoi(parts[0])
	if err != nil || ndx <= 0 {
		return gridKey{}, fmt.Errorf("%q: invalid ndx", key)
	}
	ndy, err := strconv.Atoi(parts[1])
	if err != nil || ndy <= 0 {
		return gridKey{}, fmt.Errorf("%q: invalid ndy", key)
	}
	data := parts[2]
	count := ndx * ndy
	if len(data) != count*2 {
		return gridKey{}, fmt.Errorf("%q: data length %d, want %d", key, len(data), count*2)
	}

	lastFull := (ndx-1)*(ndy-1) - 1
	lastWide := ndx - 1 + lastFull
	lastTall := ndy - 1 + lastWide

	pieces := make([]piece, count)
	for d := range count {
		x, ok := decodeGridLetter(data[2*d])
		if !ok {
			return gridKey{}, fmt.Errorf("%q: invalid letter %q", key, data[2*d])
		}
		y, ok := decodeGridLetter(data[2*d+1])
		if !ok {
			return gridKey{}, fmt.Errorf("%q: invalid letter %q", key, data[2*d+1])
		}
		p := piece{x: x, y: y, w: 1, h: 1}
		switch {
		case d <= lastFull:
			p.w, p.h = 2, 2
		case d <= lastWide:
			p.w, p.h = 2, 1
		case d <= lastTall:
			p.w, p.h = 1, 2
		}
		pieces[d] = p
	}
	return gridKey{ndx: ndx, ndy: ndy, pieces: pieces}, nil
}

// decodeGridLetter maps A..Z to even and a..z to odd doubled coordinates.
func decodeGridLetter(c byte) (int, bool) {
	switch {
	case c >= 'A' && c <= 'Z':
		return 2 * int(c-'A'), true
	case c >= 'a' && c <= 'z':
		return 1 + 2*int(c-'a'), true
	default:
		return 0, false
	}
}

// cellSizes returns the full cell size and the remainder cell size for one
// axis. Only the part of the axis divisible by 8 is scrambled.
func cellSizes(extent int) (int, int) {
	scrambled := extent - extent%8
	cells := floorDiv(scrambled-1, 7)
	full := cells - cells%8
	return full, scrambled - 7*full
}

func (g *Grid) Tiles(width, height int) []tile.Directive {
	cw, rw := cellSizes(width)
	ch, rh := cellSizes(height)
	toX := func(v int) int { return v/2*cw + v%2*rw }
	toY := func(v int) int { return v/2*ch + v%2*rh }

	out := make([]tile.Directive, 0, len(g.src.pieces)+2)
	for i, s := range g.src.pieces {
		d := g.dst.pieces[i]
		out = append(out, tile.Directive{
			XSrc:   toX(s.x),
			YSrc:   toY(s.y),
			Width:  toX(s.w),
			Height: toY(s.h),
			XDest:  toX(d.x),
			YDest:  toY(d.y),
		})
	}

	// Strips to the right of and below the grid are copied unchanged.
	gridW := cw*(g.src.ndx-1) + rw
	gridH := ch*(g.src.ndy-1) + rh
	if gridW < width {
		out = append(out, tile.Directive{XSrc: gridW, Width: width - gridW, Height: gridH, XDest: gridW})
	}
	if gridH < height {
		out = append(out, tile.Directive{YSrc: gridH, Width: width, Height: height - gridH, YDest: gridH})
	}
	return out
}

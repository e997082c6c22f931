package tile

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"
)

// ErrMalformedDirective reports a directive string that does not follow
// "id:x,y+w,h>x,y".
var ErrMalformedDirective = errors.New("malformed tile directive")

// Directive copies the Width x Height rectangle at (XSrc, YSrc) of Source to
// (XDest, YDest) on the canvas.
type Directive struct {
	Source string `json:"source,omitempty"`
	XSrc   int    `json:"xsrc"`
	YSrc   int    `json:"ysrc"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	XDest  int    `json:"xdest"`
	YDest  int    `json:"ydest"`
}

// SourceRect is the rectangle read from the source image, relative to its
// origin.
func (d Directive) SourceRect() image.Rectangle {
	return image.Rect(d.XSrc, d.YSrc, d.XSrc+d.Width, d.YSrc+d.Height)
}

// DestRect is the rectangle written on the canvas.
func (d Directive) DestRect() image.Rectangle {
	return image.Rect(d.XDest, d.YDest, d.XDest+d.Width, d.YDest+d.Height)
}

// Validate rejects negative fields.
func (d Directive) Validate() error {
	if d.XSrc < 0 || d.YSrc < 0 || d.Width < 0 || d.Height < 0 || d.XDest < 0 || d.YDest < 0 {
		return fmt.Errorf("%w: negative field in %s", ErrMalformedDirective, d)
	}
	return nil
}

func (d Directive) String() string {
	return fmt.Sprintf("%s:%d,%d+%d,%d>%d,%d", d.Source, d.XSrc, d.YSrc, d.Width, d.Height, d.XDest, d.YDest)
}

// ParseDirective parses "id:xsrc,ysrc+width,height>xdest,ydest". Every numeric
// field is a non-negative base-10 integer.
func ParseDirective(raw string) (Directive, error) {
	source, rest, ok := strings.Cut(raw, ":")
	if !ok || source == "" {
		return Directive{}, fmt.Errorf("%w: %q: missing resource id", ErrMalformedDirective, raw)
	}
	src, rest, ok := strings.Cut(rest, "+")
	if !ok {
		return Directive{}, fmt.Errorf("%w: %q: missing '+'", ErrMalformedDirective, raw)
	}
	size, dest, ok := strings.Cut(rest, ">")
	if !ok {
		return Directive{}, fmt.Errorf("%w: %q: missing '>'", ErrMalformedDirective, raw)
	}
	xsrc, ysrc, err := parsePair(src)
	if err != nil {
		return Directive{}, fmt.Errorf("%w: %q: source: %v", ErrMalformedDirective, raw, err)
	}
	width, height, err := parsePair(size)
	if err != nil {
		return Directive{}, fmt.Errorf("%w: %q: size: %v", ErrMalformedDirective, raw, err)
	}
	xdest, ydest, err := parsePair(dest)
	if err != nil {
		return Directive{}, fmt.Errorf("%w: %q: destination: %v", ErrMalformedDirective, raw, err)
	}
	return Directive{
		Source: source,
		XSrc:   xsrc,
		YSrc:   ysrc,
		Width:  width,
		Height: height,
		XDest:  xdest,
		YDest:  ydest,
	}, nil
}

func parsePair(s string) (int, int, error) {
	a, b, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("expected two comma-separated values in %q", s)
	}
	x, err := parseField(a)
	if err != nil {
		return 0, 0, err
	}
	y, err := parseField(b)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func parseField(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("%q is not a non-negative integer", s)
		}
	}
	return strconv.Atoi(s)
}

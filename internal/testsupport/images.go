package testsupport

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// ErrMissingImage is returned by Resolver for unknown ids.
var ErrMissingImage = errors.New("image not registered")

// Uniform returns a w x h RGBA image filled with c.
func Uniform(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

// Gradient returns an image where every pixel encodes its own coordinates:
// R = x, G = y, B = x^y. It makes misplaced tiles easy to spot.
func Gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: uint8(x ^ y), A: 255})
		}
	}
	return img
}

// Resolver returns a lookup over images that fails with ErrMissingImage for
// unknown ids. The result is assignable to tile.Resolver.
func Resolver(images map[string]image.Image) func(string) (image.Image, error) {
	return func(id string) (image.Image, error) {
		img, ok := images[id]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingImage, id)
		}
		return img, nil
	}
}

// FirstDiff compares got over rect with want over rect shifted by offset and
// describes the first mismatching pixel. An empty string means they match.
func FirstDiff(got, want image.Image, rect image.Rectangle, offset image.Point) string {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			g := color.NRGBAModel.Convert(got.At(x, y)).(color.NRGBA)
			w := color.NRGBAModel.Convert(want.At(x+offset.X, y+offset.Y)).(color.NRGBA)
			if g != w {
				return fmt.Sprintf("pixel (%d,%d) = %v, want %v (from (%d,%d))", x, y, g, w, x+offset.X, y+offset.Y)
			}
		}
	}
	return ""
}

package tile

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"pagewright/internal/testsupport"
)

func mustParse(t *testing.T, raw string) Directive {
	t.Helper()
	d, err := ParseDirective(raw)
	if err != nil {
		t.Fatalf("ParseDirective(%q): %v", raw, err)
	}
	return d
}

func TestComposeCopiesRegion(t *testing.T) {
	red := color.RGBA{R: 200, A: 255}
	src := testsupport.Uniform(4, 4, red)
	res := Compose(image.Pt(4, 4), []Directive{mustParse(t, "0:0,0+4,4>0,0")}, Single(src), nil)
	if !res.OK() || res.Applied != 1 {
		t.Fatalf("unexpected result: applied=%d failures=%v", res.Applied, res.Failures)
	}
	if diff := testsupport.FirstDiff(res.Canvas, src, image.Rect(0, 0, 4, 4), image.Point{}); diff != "" {
		t.Fatal(diff)
	}
}

func TestComposeLastWriteWins(t *testing.T) {
	red := testsupport.Uniform(4, 4, color.RGBA{R: 255, A: 255})
	blue := testsupport.Uniform(4, 4, color.RGBA{B: 255, A: 255})
	sources := testsupport.Resolver(map[string]image.Image{"r": red, "b": blue})
	directives := []Directive{
		mustParse(t, "r:0,0+3,3>0,0"),
		mustParse(t, "b:0,0+3,3>1,1"),
	}
	res := Compose(image.Pt(4, 4), directives, sources, nil)
	if !res.OK() {
		t.Fatalf("unexpected failures: %v", res.Failures)
	}
	canvas := res.Canvas
	if got := color.RGBAModel.Convert(canvas.At(0, 0)).(color.RGBA); got.R != 255 || got.B != 0 {
		t.Fatalf("pixel (0,0) = %v, want red", got)
	}
	for _, pt := range []image.Point{{1, 1}, {2, 2}, {3, 3}} {
		if got := color.RGBAModel.Convert(canvas.At(pt.X, pt.Y)).(color.RGBA); got.B != 255 || got.R != 0 {
			t.Fatalf("pixel %v = %v, want blue", pt, got)
		}
	}
}

func TestComposeSkipsFailuresAndContinues(t *testing.T) {
	src := testsupport.Uniform(4, 4, color.RGBA{G: 255, A: 255})
	sources := testsupport.Resolver(map[string]image.Image{"g": src})
	directives := []Directive{
		mustParse(t, "missing:0,0+1,1>0,0"),
		mustParse(t, "g:2,2+4,4>0,0"),
		mustParse(t, "g:0,0+2,2>2,2"),
	}
	res := Compose(image.Pt(4, 4), directives, sources, nil)
	if res.Applied != 1 {
		t.Fatalf("applied = %d, want 1", res.Applied)
	}
	if len(res.Failures) != 2 {
		t.Fatalf("failures = %v, want 2", res.Failures)
	}
	if !errors.Is(res.Failures[0].Err, ErrSourceNotFound) || res.Failures[0].Index != 0 {
		t.Fatalf("first failure = %v", res.Failures[0])
	}
	if !errors.Is(res.Failures[1].Err, ErrOutOfBounds) || res.Failures[1].Index != 1 {
		t.Fatalf("second failure = %v", res.Failures[1])
	}
	if got := color.RGBAModel.Convert(res.Canvas.At(3, 3)).(color.RGBA); got.G != 255 {
		t.Fatalf("third directive not applied, pixel = %v", got)
	}
	if got := color.RGBAModel.Convert(res.Canvas.At(0, 0)).(color.RGBA); got.A != 0 {
		t.Fatalf("skipped region should stay empty, got %v", got)
	}
}

func TestComposeClipsDestination(t *testing.T) {
	src := testsupport.Uniform(4, 4, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	res := Compose(image.Pt(4, 4), []Directive{mustParse(t, "0:0,0+4,4>2,2")}, Single(src), nil)
	if !res.OK() || res.Applied != 1 {
		t.Fatalf("clipped paste should succeed: %v", res.Failures)
	}
	if res.Canvas.Bounds() != image.Rect(0, 0, 4, 4) {
		t.Fatalf("canvas bounds %v", res.Canvas.Bounds())
	}
}

func TestComposeZeroSizeDirective(t *testing.T) {
	src := testsupport.Uniform(2, 2, color.RGBA{A: 255})
	res := Compose(image.Pt(2, 2), []Directive{{XSrc: 0, YSrc: 0}}, Single(src), nil)
	if !res.OK() || res.Applied != 1 {
		t.Fatalf("zero-size directive: applied=%d failures=%v", res.Applied, res.Failures)
	}
}

func TestComposeInheritsColorModel(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	gray.SetGray(1, 1, color.Gray{Y: 99})
	res := Compose(image.Pt(2, 2), []Directive{{Width: 2, Height: 2}}, Single(gray), nil)
	canvas, ok := res.Canvas.(*image.Gray)
	if !ok {
		t.Fatalf("canvas type %T, want *image.Gray", res.Canvas)
	}
	if canvas.GrayAt(1, 1).Y != 99 {
		t.Fatalf("pixel = %v", canvas.GrayAt(1, 1))
	}

	paletted := image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Black, color.White})
	res = Compose(image.Pt(2, 2), []Directive{{Width: 2, Height: 2}}, Single(paletted), nil)
	if _, ok := res.Canvas.(*image.NRGBA); !ok {
		t.Fatalf("canvas type %T, want *image.NRGBA", res.Canvas)
	}
}

func TestComposeNoResolvableSources(t *testing.T) {
	res := Compose(image.Pt(3, 2), []Directive{{Source: "x", Width: 1, Height: 1}}, Single(nil), nil)
	if res.Applied != 0 || len(res.Failures) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if _, ok := res.Canvas.(*image.RGBA); !ok || res.Canvas.Bounds().Dx() != 3 {
		t.Fatalf("expected empty RGBA canvas, got %T %v", res.Canvas, res.Canvas.Bounds())
	}
}

func TestComposeHonorsSourceOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 14, 14))
	src.SetRGBA(10, 10, color.RGBA{R: 7, A: 255})
	res := Compose(image.Pt(1, 1), []Directive{{Width: 1, Height: 1}}, Single(src), nil)
	if !res.OK() {
		t.Fatalf("failures: %v", res.Failures)
	}
	if got := color.RGBAModel.Convert(res.Canvas.At(0, 0)).(color.RGBA); got.R != 7 {
		t.Fatalf("pixel = %v, want R=7", got)
	}
}

func TestComposeRejectsOversizedCanvas(t *testing.T) {
	src := testsupport.Uniform(4, 4, color.White)
	size := image.Pt(3_000_000_000, 3_000_000_000)
	directives := []Directive{mustParse(t, "0:0,0+4,4>0,0"), mustParse(t, "0:0,0+2,2>2,2")}

	res := Compose(size, directives, Single(src), nil)
	if res.Applied != 0 || len(res.Failures) != 2 {
		t.Fatalf("applied=%d failures=%v", res.Applied, res.Failures)
	}
	for _, f := range res.Failures {
		if !errors.Is(f.Err, ErrCanvasTooLarge) {
			t.Fatalf("failure %v, want ErrCanvasTooLarge", f)
		}
	}
	if !res.Canvas.Bounds().Empty() {
		t.Fatalf("expected empty canvas, got %v", res.Canvas.Bounds())
	}
}

func TestCheckSize(t *testing.T) {
	cases := []struct {
		size image.Point
		ok   bool
	}{
		{image.Pt(16384, 16384), true},
		{image.Pt(MaxCanvasArea, 1), true},
		{image.Pt(MaxCanvasArea+1, 1), false},
		{image.Pt(1<<15, 1<<14), false},
		{image.Pt(-5, 1<<40), false},
		{image.Pt(0, 0), true},
	}
	for _, tc := range cases {
		err := CheckSize(tc.size)
		if (err == nil) != tc.ok {
			t.Fatalf("CheckSize(%v) = %v, want ok=%v", tc.size, err, tc.ok)
		}
	}
}

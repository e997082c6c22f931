package ptimg

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"pagewright/internal/testsupport"
	"pagewright/internal/tile"
)

const swapMap = `{
  "resources": {"i": {"src": "page.png"}},
  "views": [
    {"width": 8, "height": 4, "coords": ["i:4,0+4,4>0,0", "i:0,0+4,4>4,0"]},
    {"width": 4, "height": 4, "coords": ["i:0,0+4,4>0,0", "bogus", "j:0,0+1,1>0,0"]}
  ]
}`

func TestParseMap(t *testing.T) {
	m, err := ParseMap([]byte(swapMap))
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}
	if len(m.Views) != 2 || m.Resources["i"].Src != "page.png" {
		t.Fatalf("unexpected map %+v", m)
	}
	if got := m.Sources(); len(got) != 1 || got[0] != "page.png" {
		t.Fatalf("Sources() = %v", got)
	}
}

func TestParseMapRejectsInvalid(t *testing.T) {
	for _, doc := range []string{
		`not json`,
		`{"views":[{"width":-1,"height":2}]}`,
		`{"views":[{"width":3000000000,"height":3000000000}]}`,
		`{"views":[{"width":1,"height":268435457}]}`,
	} {
		if _, err := ParseMap([]byte(doc)); !errors.Is(err, ErrInvalidMap) {
			t.Fatalf("ParseMap(%q) = %v, want ErrInvalidMap", doc, err)
		}
	}
}

func TestValidateRejectsOversizedView(t *testing.T) {
	m := &Map{Views: []View{{Width: 20000, Height: 20000}}}
	err := m.Validate()
	if !errors.Is(err, ErrInvalidMap) {
		t.Fatalf("Validate() = %v, want ErrInvalidMap", err)
	}
	if _, err := Descramble(m, map[string]image.Image{"a.png": nil}, nil); !errors.Is(err, ErrInvalidMap) {
		t.Fatalf("Descramble() = %v, want ErrInvalidMap", err)
	}
}

func TestDescrambleSwapsHalves(t *testing.T) {
	m, err := ParseMap([]byte(swapMap))
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}
	src := testsupport.Gradient(8, 4)
	results, err := Descramble(m, map[string]image.Image{"page.png": src}, nil)
	if err != nil {
		t.Fatalf("Descramble: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	first := results[0]
	if !first.OK() || first.Applied != 2 {
		t.Fatalf("view 0: applied=%d failures=%v", first.Applied, first.Failures)
	}
	if first.Canvas.Bounds() != image.Rect(0, 0, 8, 4) {
		t.Fatalf("view 0 bounds %v", first.Canvas.Bounds())
	}
	if diff := testsupport.FirstDiff(first.Canvas, src, image.Rect(0, 0, 4, 4), image.Pt(4, 0)); diff != "" {
		t.Fatalf("left half: %s", diff)
	}
	if diff := testsupport.FirstDiff(first.Canvas, src, image.Rect(4, 0, 8, 4), image.Pt(-4, 0)); diff != "" {
		t.Fatalf("right half: %s", diff)
	}
}

func TestDescrambleRecordsPerTileFailures(t *testing.T) {
	m, err := ParseMap([]byte(swapMap))
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}
	src := testsupport.Uniform(8, 4, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	results, err := Descramble(m, map[string]image.Image{"page.png": src}, nil)
	if err != nil {
		t.Fatalf("Descramble: %v", err)
	}
	second := results[1]
	if second.Applied != 1 {
		t.Fatalf("applied = %d, want 1", second.Applied)
	}
	if len(second.Failures) != 2 {
		t.Fatalf("failures = %v, want 2", second.Failures)
	}
	if f := second.Failures[0]; f.Index != 1 || f.Raw != "bogus" || !errors.Is(f.Err, tile.ErrMalformedDirective) {
		t.Fatalf("unexpected first failure %v", f)
	}
	if f := second.Failures[1]; f.Index != 2 || !errors.Is(f.Err, tile.ErrSourceNotFound) {
		t.Fatalf("unexpected second failure %v", f)
	}
}

func TestDescrambleMissingSourceImage(t *testing.T) {
	m, err := ParseMap([]byte(swapMap))
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}
	results, err := Descramble(m, map[string]image.Image{"other.png": testsupport.Uniform(1, 1, color.White)}, nil)
	if err != nil {
		t.Fatalf("Descramble: %v", err)
	}
	for i, res := range results {
		if res.Applied != 0 {
			t.Fatalf("view %d applied %d tiles without its source", i, res.Applied)
		}
	}
}

func TestDescrambleNoSources(t *testing.T) {
	m, err := ParseMap([]byte(swapMap))
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}
	if _, err := Descramble(m, nil, nil); !errors.Is(err, ErrNoSources) {
		t.Fatalf("expected ErrNoSources, got %v", err)
	}
}

package tile

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"golang.org/x/image/draw"

	"pagewright/internal/logging"
)

var (
	// ErrSourceNotFound reports a directive whose source cannot be resolved.
	ErrSourceNotFound = errors.New("tile source not found")
	// ErrOutOfBounds reports a source rectangle outside the source image.
	ErrOutOfBounds = errors.New("tile rectangle out of bounds")
	// ErrCanvasTooLarge reports a canvas whose pixel count exceeds MaxCanvasArea.
	ErrCanvasTooLarge = errors.New("canvas too large")
)

// MaxCanvasArea caps the pixel count of a reconstructed page.
const MaxCanvasArea = 1 << 28

// CheckSize reports ErrCanvasTooLarge when size covers more than
// MaxCanvasArea pixels. Negative dimensions are left to the caller.
func CheckSize(size image.Point) error {
	w, h := max(size.X, 0), max(size.Y, 0)
	if w > MaxCanvasArea || h > MaxCanvasArea || w*h > MaxCanvasArea {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrCanvasTooLarge, size.X, size.Y, MaxCanvasArea)
	}
	return nil
}

// Resolver maps a directive's source id to an image.
type Resolver func(source string) (image.Image, error)

// Single resolves every source id to img.
func Single(img image.Image) Resolver {
	return func(string) (image.Image, error) {
		if img == nil {
			return nil, ErrSourceNotFound
		}
		return img, nil
	}
}

// Failure records one skipped directive. Raw holds the directive string when
// it never parsed.
type Failure struct {
	Index     int
	Directive Directive
	Raw       string
	Err       error
}

func (f Failure) String() string {
	if f.Raw != "" {
		return fmt.Sprintf("#%d %s: %v", f.Index, f.Raw, f.Err)
	}
	return fmt.Sprintf("#%d %s: %v", f.Index, f.Directive, f.Err)
}

// Result is a finished canvas plus a record of what was skipped.
type Result struct {
	Canvas   image.Image
	Applied  int
	Failures []Failure
}

// OK reports whether every directive was applied.
func (r *Result) OK() bool {
	return len(r.Failures) == 0
}

// Canvas accumulates directives onto a destination image. A Canvas is owned by
// a single goroutine until Result is called; after that it must not be used.
type Canvas struct {
	size     image.Point
	dst      draw.Image
	logger   *slog.Logger
	applied  int
	failures []Failure
	// err is set when the requested size was rejected; every directive
	// then fails with it.
	err error
}

// NewCanvas prepares a canvas of the given size. The pixel buffer is allocated
// on the first resolved source so the canvas can share its color model. A size
// over MaxCanvasArea yields an empty canvas that rejects every directive.
func NewCanvas(size image.Point, logger *slog.Logger) *Canvas {
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := CheckSize(size); err != nil {
		return &Canvas{logger: logger, err: err}
	}
	size.X = max(size.X, 0)
	size.Y = max(size.Y, 0)
	return &Canvas{size: size, logger: logger}
}

// Err returns the size error recorded by NewCanvas, if any.
func (c *Canvas) Err() error {
	return c.err
}

// Apply resolves the directive's source and copies the rectangle. Errors are
// recorded as failures and also returned.
func (c *Canvas) Apply(index int, d Directive, resolve Resolver) error {
	if c.err != nil {
		c.fail(Failure{Index: index, Directive: d, Err: c.err})
		return c.err
	}
	if err := d.Validate(); err != nil {
		c.fail(Failure{Index: index, Directive: d, Err: err})
		return err
	}
	src, err := resolveSource(resolve, d.Source)
	if err != nil {
		c.fail(Failure{Index: index, Directive: d, Err: err})
		return err
	}
	c.ensure(src)

	bounds := src.Bounds()
	rect := d.SourceRect().Add(bounds.Min)
	if !rect.In(bounds) && !rect.Empty() {
		err := fmt.Errorf("%w: %v not within source %v", ErrOutOfBounds, d.SourceRect(), bounds.Sub(bounds.Min))
		c.fail(Failure{Index: index, Directive: d, Err: err})
		return err
	}
	if !rect.Empty() {
		draw.Draw(c.dst, d.DestRect(), src, rect.Min, draw.Src)
	}
	c.applied++
	return nil
}

// Skip records a directive that could not be parsed.
func (c *Canvas) Skip(index int, raw string, err error) {
	c.fail(Failure{Index: index, Raw: raw, Err: err})
}

// Result finalizes the canvas.
func (c *Canvas) Result() *Result {
	if c.dst == nil {
		c.dst = image.NewRGBA(image.Rectangle{Max: c.size})
	}
	return &Result{Canvas: c.dst, Applied: c.applied, Failures: c.failures}
}

func (c *Canvas) ensure(src image.Image) {
	if c.dst == nil {
		c.dst = newLike(src, image.Rectangle{Max: c.size})
	}
}

func (c *Canvas) fail(f Failure) {
	c.failures = append(c.failures, f)
	directive := f.Raw
	if directive == "" {
		directive = f.Directive.String()
	}
	logging.WarnWithContext(c.logger, "tile skipped", "tile_skipped",
		logging.Int("index", f.Index),
		logging.Directive(directive),
		logging.Error(f.Err),
		logging.Hint("check the directive against the source image dimensions"),
		logging.Impact("region left blank on the reconstructed page"),
	)
}

func resolveSource(resolve Resolver, source string) (image.Image, error) {
	if resolve == nil {
		return nil, fmt.Errorf("%w: %q: no resolver", ErrSourceNotFound, source)
	}
	img, err := resolve(source)
	if err != nil {
		if errors.Is(err, ErrSourceNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %q: %v", ErrSourceNotFound, source, err)
	}
	if img == nil {
		return nil, fmt.Errorf("%w: %q", ErrSourceNotFound, source)
	}
	return img, nil
}

// newLike allocates an image whose color model matches src where a direct
// equivalent exists.
func newLike(src image.Image, r image.Rectangle) draw.Image {
	switch src.(type) {
	case *image.Gray:
		return image.NewGray(r)
	case *image.Gray16:
		return image.NewGray16(r)
	case *image.CMYK:
		return image.NewCMYK(r)
	case *image.NRGBA, *image.Paletted:
		return image.NewNRGBA(r)
	case *image.NRGBA64:
		return image.NewNRGBA64(r)
	case *image.RGBA64:
		return image.NewRGBA64(r)
	default:
		return image.NewRGBA(r)
	}
}

// Compose applies directives in order on a canvas of the given size. Later
// directives overwrite earlier ones where they overlap. A directive that
// cannot be applied is logged and skipped.
func Compose(size image.Point, directives []Directive, resolve Resolver, logger *slog.Logger) *Result {
	canvas := NewCanvas(size, logger)
	for i, d := range directives {
		_ = canvas.Apply(i, d, resolve)
	}
	return canvas.Result()
}

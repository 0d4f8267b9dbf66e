// Package doodle implements a local ports.FrameTransformer that draws
// random hand-drawn style marks over a frame. It never fails, which makes it
// the fallback for every other transformer.
package doodle

import (
	"context"
	"image"
	"image/color"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/user/scribbler/pkg/ports"
)

// Kind names a doodle primitive.
type Kind string

const (
	Star     Kind = "star"
	Swirl    Kind = "swirl"
	Squiggle Kind = "squiggle"
	Circle   Kind = "circle"
	Smiley   Kind = "smiley"
)

// Kinds lists every primitive, each chosen with equal probability.
var Kinds = []Kind{Star, Swirl, Squiggle, Circle, Smiley}

// Config controls how many marks are drawn and how they look.
type Config struct {
	Count    int
	Palette  []color.Color
	MinWidth int
	MaxWidth int
}

// DefaultPalette returns red, green, blue, yellow, orange and purple.
func DefaultPalette() []color.Color {
	return []color.Color{
		color.RGBA{R: 255, G: 0, B: 0, A: 255},
		color.RGBA{R: 0, G: 255, B: 0, A: 255},
		color.RGBA{R: 0, G: 0, B: 255, A: 255},
		color.RGBA{R: 255, G: 255, B: 0, A: 255},
		color.RGBA{R: 255, G: 128, B: 0, A: 255},
		color.RGBA{R: 128, G: 0, B: 255, A: 255},
	}
}

// DefaultConfig returns 20 marks per frame with line widths 2..5.
func DefaultConfig() Config {
	return Config{
		Count:    20,
		Palette:  DefaultPalette(),
		MinWidth: 2,
		MaxWidth: 5,
	}
}

// Transformer draws doodles. It is safe for concurrent use.
type Transformer struct {
	renderer ports.Renderer
	cfg      Config

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithSeed makes the output deterministic.
func WithSeed(seed uint64) Option {
	return func(t *Transformer) {
		t.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// New creates a Transformer. Zero or invalid config fields take their defaults.
func New(renderer ports.Renderer, cfg Config, opts ...Option) *Transformer {
	def := DefaultConfig()
	if cfg.Count <= 0 {
		cfg.Count = def.Count
	}
	if len(cfg.Palette) == 0 {
		cfg.Palette = def.Palette
	}
	if cfg.MinWidth <= 0 {
		cfg.MinWidth = def.MinWidth
	}
	if cfg.MaxWidth < cfg.MinWidth {
		cfg.MaxWidth = cfg.MinWidth
	}

	t := &Transformer{
		renderer: renderer,
		cfg:      cfg,
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transform returns a copy of img with Count doodles drawn on it.
func (t *Transformer) Transform(_ context.Context, img image.Image) (image.Image, error) {
	canvas := t.renderer.CanvasFrom(img)
	w, h := canvas.Size()

	for _, m := range t.plan(w, h) {
		m.draw(canvas)
	}
	return canvas.ToImage(), nil
}

// Ensure Transformer implements ports.FrameTransformer
var _ ports.FrameTransformer = (*Transformer)(nil)

// mark is one planned doodle. Planning holds the RNG lock; drawing does not.
type mark struct {
	kind   Kind
	x, y   float64
	size   float64
	color  color.Color
	width  float64
	points []ports.Point
}

func (t *Transformer) plan(w, h int) []mark {
	t.mu.Lock()
	defer t.mu.Unlock()

	marks := make([]mark, t.cfg.Count)
	for i := range marks {
		m := mark{
			kind:  Kinds[t.rng.IntN(len(Kinds))],
			x:     float64(t.between(0, w)),
			y:     float64(t.between(0, h)),
			color: t.cfg.Palette[t.rng.IntN(len(t.cfg.Palette))],
			width: float64(t.between(t.cfg.MinWidth, t.cfg.MaxWidth)),
		}
		switch m.kind {
		case Star, Circle:
			m.size = float64(t.between(10, 40))
		case Smiley:
			m.size = float64(t.between(20, 50))
		case Squiggle:
			m.points = t.squigglePoints(m.x, m.y, w, h)
		}
		marks[i] = m
	}
	return marks
}

// between returns a uniform integer in [lo, hi].
func (t *Transformer) between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + t.rng.IntN(hi-lo+1)
}

func (t *Transformer) squigglePoints(x, y float64, w, h int) []ports.Point {
	points := []ports.Point{{X: x, Y: y}}
	steps := t.between(3, 8)
	for i := 0; i < steps; i++ {
		x = clamp(x+float64(t.between(-50, 50)), 0, float64(w))
		y = clamp(y+float64(t.between(-50, 50)), 0, float64(h))
		points = append(points, ports.Point{X: x, Y: y})
	}
	return points
}

func (m mark) draw(c ports.Canvas) {
	switch m.kind {
	case Star:
		c.StrokePolygon(starPoints(m.x, m.y, m.size), m.color, m.width)
	case Swirl:
		c.StrokePolyline(swirlPoints(m.x, m.y), m.color, m.width)
	case Squiggle:
		c.StrokePolyline(m.points, m.color, m.width)
	case Circle:
		c.StrokeCircle(m.x, m.y, m.size, m.color, m.width)
	case Smiley:
		drawSmiley(c, m)
	}
}

// starPoints alternates outer and inner radius over 10 vertices.
func starPoints(x, y, size float64) []ports.Point {
	points := make([]ports.Point, 10)
	for i := range points {
		angle := float64(i) * math.Pi / 5
		r := size
		if i%2 == 1 {
			r = size / 2
		}
		points[i] = ports.Point{X: x + r*math.Cos(angle), Y: y + r*math.Sin(angle)}
	}
	return points
}

// swirlPoints traces an outward spiral of 20 points.
func swirlPoints(x, y float64) []ports.Point {
	points := make([]ports.Point, 20)
	for i := range points {
		angle := float64(i) * 0.5
		r := float64(i) * 2
		points[i] = ports.Point{X: x + r*math.Cos(angle), Y: y + r*math.Sin(angle)}
	}
	return points
}

func drawSmiley(c ports.Canvas, m mark) {
	size := int(m.size)
	offset := float64(size / 3)
	eye := float64(size / 8)

	c.StrokeCircle(m.x, m.y, m.size, m.color, m.width)
	c.FillCircle(m.x-offset, m.y-offset, eye, m.color)
	c.FillCircle(m.x+offset, m.y-offset, eye, m.color)
	c.StrokeArc(m.x, m.y, float64(size/2), 0, 180, m.color, m.width)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

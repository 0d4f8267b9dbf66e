package mocks

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/user/scribbler/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
type Renderer struct {
	CanvasFromFunc  func(img image.Image) ports.Canvas
	DecodeImageFunc func(data []byte, format ports.ImageFormat) (image.Image, error)
	EncodeImageFunc func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)
	ResizeImageFunc func(img image.Image, width, height int) image.Image
}

func (m *Renderer) CanvasFrom(img image.Image) ports.Canvas {
	if m.CanvasFromFunc != nil {
		return m.CanvasFromFunc(img)
	}
	return NewCanvas(img)
}

func (m *Renderer) DecodeImage(data []byte, format ports.ImageFormat) (image.Image, error) {
	if m.DecodeImageFunc != nil {
		return m.DecodeImageFunc(data, format)
	}
	return image.NewRGBA(image.Rect(0, 0, 100, 100)), nil
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	return []byte{}, nil
}

func (m *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	if m.ResizeImageFunc != nil {
		return m.ResizeImageFunc(img, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

var _ ports.Renderer = (*Renderer)(nil)

// Canvas is a mock implementation of ports.Canvas that records strokes.
type Canvas struct {
	mu  sync.Mutex
	img *image.RGBA

	Strokes []Stroke
}

// Stroke records one drawing call.
type Stroke struct {
	Kind   string // polygon, polyline, circle, fill, arc
	Points []ports.Point
	Color  color.Color
	Width  float64
}

// NewCanvas creates a mock canvas holding a copy of img.
func NewCanvas(img image.Image) *Canvas {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return &Canvas{img: dst}
}

func (m *Canvas) record(s Stroke) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Strokes = append(m.Strokes, s)
}

func (m *Canvas) Size() (int, int) {
	return m.img.Bounds().Dx(), m.img.Bounds().Dy()
}

func (m *Canvas) StrokePolygon(points []ports.Point, c color.Color, width float64) {
	m.record(Stroke{Kind: "polygon", Points: points, Color: c, Width: width})
}

func (m *Canvas) StrokePolyline(points []ports.Point, c color.Color, width float64) {
	m.record(Stroke{Kind: "polyline", Points: points, Color: c, Width: width})
}

func (m *Canvas) StrokeCircle(cx, cy, r float64, c color.Color, width float64) {
	m.record(Stroke{Kind: "circle", Points: []ports.Point{{X: cx, Y: cy}, {X: r}}, Color: c, Width: width})
}

func (m *Canvas) FillCircle(cx, cy, r float64, c color.Color) {
	m.record(Stroke{Kind: "fill", Points: []ports.Point{{X: cx, Y: cy}, {X: r}}, Color: c})
}

func (m *Canvas) StrokeArc(cx, cy, r, fromDeg, toDeg float64, c color.Color, width float64) {
	m.record(Stroke{Kind: "arc", Points: []ports.Point{{X: cx, Y: cy}, {X: r}, {X: fromDeg, Y: toDeg}}, Color: c, Width: width})
}

func (m *Canvas) ToImage() image.Image {
	return m.img
}

var _ ports.Canvas = (*Canvas)(nil)

// Package ggrenderer implements ports.Renderer with the gg 2D library.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/user/scribbler/pkg/ports"
)

// DefaultJPEGQuality is used when EncodeImage receives a quality outside 1-100.
const DefaultJPEGQuality = 95

// Renderer implements ports.Renderer using the gg library.
type Renderer struct{}

// New creates a new Renderer.
func New() *Renderer {
	return &Renderer{}
}

// CanvasFrom creates a canvas over a copy of img.
func (r *Renderer) CanvasFrom(img image.Image) ports.Canvas {
	dc := gg.NewContextForImage(img)
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	return &Canvas{dc: dc}
}

// DecodeImage decodes image data into an image.Image.
func (r *Renderer) DecodeImage(data []byte, format ports.ImageFormat) (image.Image, error) {
	reader := bytes.NewReader(data)

	switch format {
	case ports.FormatJPEG:
		return jpeg.Decode(reader)
	case ports.FormatPNG:
		return png.Decode(reader)
	default:
		img, _, err := image.Decode(reader)
		return img, err
	}
}

// EncodeImage encodes an image to the specified format.
func (r *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case ports.FormatJPEG:
		if quality < 1 || quality > 100 {
			quality = DefaultJPEGQuality
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode JPEG: %w", err)
		}
	case ports.FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %d", format)
	}

	return buf.Bytes(), nil
}

// ResizeImage resizes an image with Catmull-Rom interpolation.
func (r *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// Ensure Renderer implements ports.Renderer
var _ ports.Renderer = (*Renderer)(nil)

// Canvas implements ports.Canvas using gg.Context.
type Canvas struct {
	dc *gg.Context
}

// Size returns the canvas dimensions.
func (c *Canvas) Size() (int, int) {
	return c.dc.Width(), c.dc.Height()
}

// StrokePolygon draws a closed outline.
func (c *Canvas) StrokePolygon(points []ports.Point, col color.Color, width float64) {
	if len(points) < 2 {
		return
	}
	c.path(points)
	c.dc.ClosePath()
	c.stroke(col, width)
}

// StrokePolyline draws an open path.
func (c *Canvas) StrokePolyline(points []ports.Point, col color.Color, width float64) {
	if len(points) < 2 {
		return
	}
	c.path(points)
	c.stroke(col, width)
}

// StrokeCircle draws a circle outline.
func (c *Canvas) StrokeCircle(cx, cy, r float64, col color.Color, width float64) {
	c.dc.NewSubPath()
	c.dc.DrawCircle(cx, cy, r)
	c.stroke(col, width)
}

// FillCircle draws a filled circle.
func (c *Canvas) FillCircle(cx, cy, r float64, col color.Color) {
	c.dc.NewSubPath()
	c.dc.DrawCircle(cx, cy, r)
	c.dc.SetColor(col)
	c.dc.Fill()
}

// StrokeArc draws an arc. gg measures angles clockwise in image space, as does ports.Canvas.
func (c *Canvas) StrokeArc(cx, cy, r, fromDeg, toDeg float64, col color.Color, width float64) {
	c.dc.NewSubPath()
	c.dc.DrawArc(cx, cy, r, gg.Radians(fromDeg), gg.Radians(toDeg))
	c.stroke(col, width)
}

// ToImage returns the canvas as an image.Image.
func (c *Canvas) ToImage() image.Image {
	return c.dc.Image()
}

func (c *Canvas) path(points []ports.Point) {
	c.dc.NewSubPath()
	c.dc.MoveTo(points[0].X, points[0].Y)
	for _, p := range points[1:] {
		c.dc.LineTo(p.X, p.Y)
	}
}

func (c *Canvas) stroke(col color.Color, width float64) {
	c.dc.SetColor(col)
	c.dc.SetLineWidth(width)
	c.dc.Stroke()
}

// Ensure Canvas implements ports.Canvas
var _ ports.Canvas = (*Canvas)(nil)

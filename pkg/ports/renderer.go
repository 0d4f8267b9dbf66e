package ports

import (
	"image"
	"image/color"
)

// Renderer abstracts image processing operations.
type Renderer interface {
	// CanvasFrom creates a drawing canvas holding a copy of img.
	CanvasFrom(img image.Image) Canvas

	// DecodeImage decodes image data into an image.Image.
	DecodeImage(data []byte, format ImageFormat) (image.Image, error)

	// EncodeImage encodes an image to the specified format.
	EncodeImage(img image.Image, format ImageFormat, quality int) ([]byte, error)

	// ResizeImage resizes an image to the specified dimensions.
	ResizeImage(img image.Image, width, height int) image.Image
}

// Point is a canvas coordinate.
type Point struct {
	X float64
	Y float64
}

// Canvas provides the stroke primitives used for doodling over a frame.
type Canvas interface {
	// Size returns the canvas width and height.
	Size() (width, height int)

	// StrokePolygon draws a closed outline through points.
	StrokePolygon(points []Point, c color.Color, width float64)

	// StrokePolyline draws an open path through points.
	StrokePolyline(points []Point, c color.Color, width float64)

	// StrokeCircle draws a circle outline.
	StrokeCircle(cx, cy, r float64, c color.Color, width float64)

	// FillCircle draws a filled circle.
	FillCircle(cx, cy, r float64, c color.Color)

	// StrokeArc draws an arc between two angles given in degrees,
	// measured clockwise from the positive x axis.
	StrokeArc(cx, cy, r, fromDeg, toDeg float64, c color.Color, width float64)

	// ToImage returns the canvas as an image.Image.
	ToImage() image.Image
}

// ImageFormat specifies image encoding format.
type ImageFormat int

const (
	FormatJPEG ImageFormat = iota
	FormatPNG
)

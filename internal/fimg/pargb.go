package fimg

import (
	"image"
	"image/color"
)

// PARGB is an in-memory image of premultiplied 32-bit ARGB pixels laid
// out little-endian, i.e. b, g, r, a byte order. This matches the
// DRM_FORMAT_ARGB8888 wire layout that buffers report.
type PARGB struct {
	Pix    []byte
	Stride int
	Rect   image.Rectangle
}

func NewPARGB(r image.Rectangle) *PARGB {
	return &PARGB{
		Pix:    make([]byte, 4*r.Dx()*r.Dy()),
		Stride: 4 * r.Dx(),
		Rect:   r,
	}
}

func (p *PARGB) PixOffset(x, y int) int {
	return ((y - p.Rect.Min.Y) * p.Stride) + (x-p.Rect.Min.X)*4
}

func (p *PARGB) Bounds() image.Rectangle {
	return p.Rect
}

func (p *PARGB) ColorModel() color.Model {
	return color.RGBAModel
}

func (p *PARGB) At(x, y int) color.Color {
	if !image.Pt(x, y).In(p.Rect) {
		return color.RGBA{}
	}
	i := p.PixOffset(x, y)
	return color.RGBA{p.Pix[i+2], p.Pix[i+1], p.Pix[i], p.Pix[i+3]}
}

func (p *PARGB) Set(x, y int, c color.Color) {
	if !image.Pt(x, y).In(p.Rect) {
		return
	}
	r, g, b, a := c.RGBA()

	i := p.PixOffset(x, y)
	p.Pix[i] = uint8(b >> 8)
	p.Pix[i+1] = uint8(g >> 8)
	p.Pix[i+2] = uint8(r >> 8)
	p.Pix[i+3] = uint8(a >> 8)
}

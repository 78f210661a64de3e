package tridim

import (
	"image"
	"image/color"
)

// DrawBuffer is a row major grid of ARGB pixels with the origin in the top
// left corner. A pixel value of 0 is fully transparent.
type DrawBuffer struct {
	Data   []uint32
	Width  int
	Height int
}

func NewDrawBuffer(width, height int) *DrawBuffer {
	return &DrawBuffer{
		Data:   make([]uint32, width*height),
		Width:  width,
		Height: height,
	}
}

func (b *DrawBuffer) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width && y < b.Height
}

// At returns the pixel at x, y or 0 outside the buffer.
func (b *DrawBuffer) At(x, y int) uint32 {
	if !b.inside(x, y) {
		return 0
	}
	return b.Data[y*b.Width+x]
}

// Set writes a pixel. Writes outside the buffer are ignored.
func (b *DrawBuffer) Set(x, y int, argb uint32) {
	if b.inside(x, y) {
		b.Data[y*b.Width+x] = argb
	}
}

func (b *DrawBuffer) Clone() *DrawBuffer {
	clone := &DrawBuffer{Data: make([]uint32, len(b.Data)), Width: b.Width, Height: b.Height}
	copy(clone.Data, b.Data)
	return clone
}

// Take copies the w by h area starting at x, y. Parts outside the buffer
// are transparent.
func (b *DrawBuffer) Take(x, y, w, h int) *DrawBuffer {
	taken := NewDrawBuffer(w, h)
	for offsetY := 0; offsetY < h; offsetY++ {
		for offsetX := 0; offsetX < w; offsetX++ {
			taken.Data[offsetY*w+offsetX] = b.At(x+offsetX, y+offsetY)
		}
	}
	return taken
}

// AppendAt returns a copy with addition drawn over it at x, y. Nearly
// transparent pixels of addition are skipped, nearly opaque ones replace the
// target, anything in between is mixed by its alpha.
func (b *DrawBuffer) AppendAt(addition *DrawBuffer, x, y int) *DrawBuffer {
	result := b.Clone()
	if len(addition.Data) != addition.Width*addition.Height {
		return result
	}

	for offsetY := 0; offsetY < addition.Height; offsetY++ {
		for offsetX := 0; offsetX < addition.Width; offsetX++ {
			source := addition.Data[offsetY*addition.Width+offsetX]
			targetX, targetY := x+offsetX, y+offsetY
			if source&0xFF000000 == 0 || !result.inside(targetX, targetY) {
				continue
			}
			index := targetY*result.Width + targetX
			result.Data[index] = mixColors(source, result.Data[index])
		}
	}
	return result
}

func mixColors(source, target uint32) uint32 {
	mix := float32(source>>24) / 255
	switch {
	case mix < 0.1:
		return target
	case mix > 0.9:
		return source
	}

	channel := func(shift uint) uint32 {
		s := float32(source >> shift & 0xFF)
		t := float32(target >> shift & 0xFF)
		return uint32(s*mix+t*(1-mix)) << shift
	}
	alpha := ((source >> 24) + (target >> 24)) / 2
	return alpha<<24 | channel(16) | channel(8) | channel(0)
}

// Image converts the buffer to a non premultiplied image.
func (b *DrawBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			img.SetNRGBA(x, y, ARGBToNRGBA(b.Data[y*b.Width+x]))
		}
	}
	return img
}

// Pixels returns the buffer as RGBA bytes, the layout ebiten's WritePixels
// expects. Colors are premultiplied by alpha.
func (b *DrawBuffer) Pixels() []byte {
	pixels := make([]byte, len(b.Data)*4)
	for i, argb := range b.Data {
		c := color.RGBAModel.Convert(ARGBToNRGBA(argb)).(color.RGBA)
		pixels[i*4] = c.R
		pixels[i*4+1] = c.G
		pixels[i*4+2] = c.B
		pixels[i*4+3] = c.A
	}
	return pixels
}

// ARGBToNRGBA splits a packed ARGB value into its channels.
func ARGBToNRGBA(argb uint32) color.NRGBA {
	return color.NRGBA{
		R: uint8(argb >> 16),
		G: uint8(argb >> 8),
		B: uint8(argb),
		A: uint8(argb >> 24),
	}
}

// NRGBAToARGB packs a color into an ARGB value.
func NRGBAToARGB(c color.NRGBA) uint32 {
	return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

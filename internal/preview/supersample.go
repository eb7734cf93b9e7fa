package preview

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Downsample shrinks a frame rendered at factor times the preview size on
// each axis. Pixels left transparent are composited over bg first, so the
// result is opaque and the filter never blends in black.
func Downsample(img *image.NRGBA, factor int, bg RGB) *image.NRGBA {
	b := img.Bounds()
	flat := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(flat, flat.Bounds(), image.NewUniform(bg.NRGBA()), image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, b.Min, draw.Over)

	src := image.Image(flat)
	if factor > 1 {
		w, h := max(b.Dx()/factor, 1), max(b.Dy()/factor, 1)
		small := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(small, small.Bounds(), flat, flat.Bounds(), draw.Src, nil)
		src = small
	}

	out := image.NewNRGBA(src.Bounds())
	draw.Draw(out, out.Bounds(), src, image.Point{}, draw.Src)
	return out
}

// NRGBA returns c as an opaque color.Color.
func (c RGB) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

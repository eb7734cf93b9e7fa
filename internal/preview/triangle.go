package preview

import "math"

// Point is a projected vertex: pixel x, pixel y, depth toward the viewer.
type Point [3]float64

// FillTriangle rasterizes a flat-colored triangle with a z-buffer test.
// Nearer pixels (larger depth) win.
func FillTriangle(fb *FrameBuffer, p0, p1, p2 Point, c RGB) {
	x0, y0, z0 := p0[0], p0[1], p0[2]
	x1, y1, z1 := p1[0], p1[1], p1[2]
	x2, y2, z2 := p2[0], p2[1], p2[2]

	// Bounding box
	minX := int(math.Min(math.Min(x0, x1), x2))
	maxX := int(math.Max(math.Max(x0, x1), x2)) + 1
	minY := int(math.Min(math.Min(y0, y1), y2))
	maxY := int(math.Max(math.Max(y0, y1), y2)) + 1

	if minX < 0 {
		minX = 0
	}
	if maxX >= fb.Width {
		maxX = fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= fb.Height {
		maxY = fb.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}
			fb.ZBuf[zIdx] = z

			ci := zIdx * 4
			fb.Color[ci] = c.R
			fb.Color[ci+1] = c.G
			fb.Color[ci+2] = c.B
			fb.Color[ci+3] = 255
		}
	}
}

// DrawLine draws an overlay segment of the given pixel width, ignoring depth.
func DrawLine(fb *FrameBuffer, a, b Point, width int, c RGB) {
	dx, dy := b[0]-a[0], b[1]-a[1]
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps == 0 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		DrawDot(fb, a[0]+dx*t, a[1]+dy*t, width/2, c)
	}
}

// DrawDot fills a square of half-size r centred on (x, y).
func DrawDot(fb *FrameBuffer, x, y float64, r int, c RGB) {
	cx, cy := int(math.Round(x)), int(math.Round(y))
	for py := cy - r; py <= cy+r; py++ {
		for px := cx - r; px <= cx+r; px++ {
			fb.Set(px, py, c)
		}
	}
}

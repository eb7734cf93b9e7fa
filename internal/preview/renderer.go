// Package preview draws a quick orthographic picture of a view with its
// placed elevation markers, for checking a batch without the host.
package preview

import (
	"image"
	"math"

	"github.com/pkg/errors"

	"elevation-marker/internal/document"
	"elevation-marker/internal/geom"
	"elevation-marker/internal/mathutil"
)

// Marker is a placed annotation as drawn in the preview.
type Marker struct {
	Ref       geom.Reference
	Anchor    mathutil.Vec3
	Bend      mathutil.Vec3
	End       mathutil.Vec3
	HasLeader bool
}

// Options controls the output image.
type Options struct {
	Size        int // output edge length in pixels
	Supersample int // render at Size*Supersample, then downsample
}

// Camera maps world points into the view's screen basis.
type Camera struct {
	Right mathutil.Vec3
	Up    mathutil.Vec3
	Depth mathutil.Vec3 // toward the viewer

	toView mathutil.Mat3
}

// NewCamera builds an orthonormal basis for v.
func NewCamera(v document.View) (Camera, error) {
	depth := v.Direction.Normalize()
	right := v.Right()
	if depth.IsZero() || right.IsZero() {
		return Camera{}, errors.Errorf("view %s has a degenerate direction/up pair", v.ID)
	}
	up := depth.Cross(right).Normalize()
	// the basis is orthonormal, so world to view is the transpose
	frame := mathutil.FromBasis(mathutil.Vec3{}, right, up, depth)
	return Camera{Right: right, Up: up, Depth: depth, toView: frame.R.Transpose()}, nil
}

// Project returns view-space coordinates (right, up, depth) of p.
func (c Camera) Project(p mathutil.Vec3) mathutil.Vec3 {
	return c.toView.MulVec3(p)
}

type polygon struct {
	pts   []mathutil.Vec3 // view space
	color RGB
}

// Render draws every element's faces as seen in v, highlights annotated
// faces, and overlays marker anchors and leaders. Elements whose geometry
// cannot be computed are left out.
func Render(doc document.Document, v document.View, elements []document.Element, markers []Marker, opts Options) (*image.NRGBA, error) {
	if opts.Size <= 0 {
		return nil, errors.Errorf("preview size %d must be positive", opts.Size)
	}
	if opts.Supersample < 1 {
		opts.Supersample = 1
	}
	cam, err := NewCamera(v)
	if err != nil {
		return nil, err
	}

	annotated := make(map[geom.Reference]bool, len(markers))
	for _, m := range markers {
		annotated[m.Ref] = true
	}

	gopts := document.OptionsFor(v)
	var polys []polygon
	for _, el := range elements {
		g, err := doc.Geometry(el, gopts)
		if err != nil || g == nil {
			continue
		}
		for _, solid := range g.Solids {
			for _, f := range solid.Faces {
				o, ok := f.Surface.(geom.Outliner)
				if !ok {
					continue
				}
				col := Body
				if f.Ref != nil && annotated[*f.Ref] {
					col = Annotated
				}
				for _, loop := range o.Outline() {
					p := polygon{color: col, pts: make([]mathutil.Vec3, len(loop))}
					for i, pt := range loop {
						p.pts[i] = cam.Project(pt)
					}
					polys = append(polys, p)
				}
			}
		}
	}

	renderSize := opts.Size * opts.Supersample
	fb := NewFrameBuffer(renderSize, renderSize)
	fb.Fill(Background)

	fit, ok := fitScreen(polys, markers, cam, renderSize, 16*opts.Supersample)
	if !ok {
		return Downsample(fb.Image(), opts.Supersample, Background), nil
	}

	light := DefaultLight()
	for _, p := range polys {
		if len(p.pts) < 3 {
			continue
		}
		n := p.pts[1].Sub(p.pts[0]).Cross(p.pts[2].Sub(p.pts[0])).Normalize()
		c := light.Shade(p.color, n)
		// fan triangulation; outlines are convex
		s0 := fit.screen(p.pts[0])
		for i := 1; i+1 < len(p.pts); i++ {
			FillTriangle(fb, s0, fit.screen(p.pts[i]), fit.screen(p.pts[i+1]), c)
		}
	}

	line := opts.Supersample
	for _, m := range markers {
		a := fit.screen(cam.Project(m.Anchor))
		if m.HasLeader {
			b := fit.screen(cam.Project(m.Bend))
			e := fit.screen(cam.Project(m.End))
			DrawLine(fb, a, b, line, LeaderInk)
			DrawLine(fb, b, e, line, LeaderInk)
			DrawDot(fb, e[0], e[1], 2*line, LeaderInk)
		}
		DrawDot(fb, a[0], a[1], 2*line, AnchorInk)
	}

	return Downsample(fb.Image(), opts.Supersample, Background), nil
}

// screenFit centers the drawing's bounding box in the frame.
type screenFit struct {
	cx, cy float64
	scale  float64
	half   float64
}

func (f screenFit) screen(p mathutil.Vec3) Point {
	return Point{
		(p[0]-f.cx)*f.scale + f.half,
		f.half - (p[1]-f.cy)*f.scale,
		p[2],
	}
}

func fitScreen(polys []polygon, markers []Marker, cam Camera, size, margin int) (screenFit, bool) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	grow := func(p mathutil.Vec3) {
		minX = math.Min(minX, p[0])
		maxX = math.Max(maxX, p[0])
		minY = math.Min(minY, p[1])
		maxY = math.Max(maxY, p[1])
	}
	for _, p := range polys {
		for _, pt := range p.pts {
			grow(pt)
		}
	}
	for _, m := range markers {
		grow(cam.Project(m.Anchor))
		if m.HasLeader {
			grow(cam.Project(m.Bend))
			grow(cam.Project(m.End))
		}
	}
	if math.IsInf(minX, 1) {
		return screenFit{}, false
	}

	span := math.Max(maxX-minX, maxY-minY)
	if span < 0.001 {
		span = 0.001
	}
	return screenFit{
		cx:    (minX + maxX) / 2,
		cy:    (minY + maxY) / 2,
		scale: float64(size-2*margin) / span,
		half:  float64(size) / 2,
	}, true
}

package preview

import (
	"math"

	"elevation-marker/internal/mathutil"
)

// RGB is an opaque color.
type RGB struct{ R, G, B uint8 }

// Palette used by the preview.
var (
	Background = RGB{250, 250, 247}
	Body       = RGB{176, 180, 188}
	Annotated  = RGB{236, 150, 60}
	LeaderInk  = RGB{32, 64, 160}
	AnchorInk  = RGB{200, 30, 30}
)

// Light is a flat-shading setup in view space.
type Light struct {
	Dir     mathutil.Vec3 // toward the light, view space
	Ambient float64
	Direct  float64
}

// DefaultLight is a headlight slightly above and left of the viewer.
func DefaultLight() Light {
	return Light{
		Dir:     mathutil.Vec3{-0.3, 0.4, 1}.Normalize(),
		Ambient: 0.45,
		Direct:  0.6,
	}
}

// Shade scales c by the light falling on a face with view-space normal n.
// Faces are treated as double sided.
func (l Light) Shade(c RGB, n mathutil.Vec3) RGB {
	s := l.Ambient + l.Direct*math.Abs(n.Dot(l.Dir))
	return RGB{scale8(c.R, s), scale8(c.G, s), scale8(c.B, s)}
}

func scale8(v uint8, s float64) uint8 {
	return uint8(mathutil.Clamp(float64(v)*s, 0, 255) + 0.5)
}

package preview

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elevation-marker/internal/document"
	"elevation-marker/internal/geom"
	"elevation-marker/internal/leader"
	"elevation-marker/internal/mathutil"
	"elevation-marker/internal/scene"
)

func facade(t *testing.T) (*scene.Scene, document.View) {
	t.Helper()
	s, err := scene.Load(filepath.Join("..", "scene", "testdata", "facade.yaml"))
	require.NoError(t, err)
	for _, v := range s.Views() {
		if v.ID == "S-01" {
			return s, v
		}
	}
	t.Fatal("S-01 missing")
	return nil, document.View{}
}

func TestNewCamera(t *testing.T) {
	cam, err := NewCamera(document.View{ID: "v", Direction: mathutil.Vec3{0, -1, 0}, Up: mathutil.UnitZ})
	require.NoError(t, err)
	assert.True(t, cam.Right.ApproxEqual(mathutil.UnitX, 1e-12))
	assert.True(t, cam.Up.ApproxEqual(mathutil.UnitZ, 1e-12))

	p := cam.Project(mathutil.Vec3{1, -2, 3})
	assert.Equal(t, mathutil.Vec3{1, 3, 2}, p)

	_, err = NewCamera(document.View{ID: "bad", Direction: mathutil.UnitZ, Up: mathutil.UnitZ})
	assert.Error(t, err)
}

func TestRender_DrawsFacesAndMarkers(t *testing.T) {
	doc, v := facade(t)
	anchor := mathutil.Vec3{0, -0.1, 1.5}
	lg := leader.Compute(v.Direction, v.Up, leader.Right, anchor)
	markers := []Marker{{
		Ref:       geom.Reference{ElementID: "W-101", Solid: 0, Face: 2},
		Anchor:    anchor,
		Bend:      lg.Bend,
		End:       lg.End,
		HasLeader: true,
	}}

	img, err := Render(doc, v, doc.Elements(), markers, Options{Size: 128, Supersample: 1})
	require.NoError(t, err)
	require.Equal(t, 128, img.Bounds().Dx())

	counts := map[string]int{}
	for i := 0; i < len(img.Pix); i += 4 {
		r, g, b := img.Pix[i], img.Pix[i+1], img.Pix[i+2]
		switch {
		case RGB{r, g, b} == AnchorInk:
			counts["anchor"]++
		case RGB{r, g, b} == LeaderInk:
			counts["leader"]++
		case RGB{r, g, b} == Background:
			counts["background"]++
		case r > 200 && b < 100:
			counts["annotated"]++
		default:
			counts["body"]++
		}
	}
	assert.Positive(t, counts["anchor"])
	assert.Positive(t, counts["leader"])
	assert.Positive(t, counts["annotated"])
	assert.Positive(t, counts["body"])
	assert.Positive(t, counts["background"])
}

func TestRender_EmptyViewIsBlank(t *testing.T) {
	doc, v := facade(t)
	img, err := Render(doc, v, nil, nil, Options{Size: 32, Supersample: 2})
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.InDelta(t, float64(Background.R), float64(img.Pix[0]), 1)
	assert.InDelta(t, float64(Background.B), float64(img.Pix[2]), 1)

	_, err = Render(doc, v, nil, nil, Options{})
	assert.Error(t, err)
}

func TestFillTriangle_DepthTest(t *testing.T) {
	fb := NewFrameBuffer(8, 8)
	far := RGB{1, 1, 1}
	near := RGB{2, 2, 2}
	FillTriangle(fb, Point{0, 0, 1}, Point{8, 0, 1}, Point{0, 8, 1}, near)
	FillTriangle(fb, Point{0, 0, -1}, Point{8, 0, -1}, Point{0, 8, -1}, far)

	assert.Equal(t, near.R, fb.Color[(1*8+1)*4])
	assert.Equal(t, uint8(0), fb.Color[(7*8+7)*4+3], "outside the triangle stays transparent")
}

func TestDownsample(t *testing.T) {
	fb := NewFrameBuffer(64, 32)
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			fb.Set(x, y, Body)
		}
	}
	out := Downsample(fb.Image(), 4, Background)
	require.Equal(t, image.Rect(0, 0, 16, 8), out.Bounds())

	body := out.NRGBAAt(2, 4)
	assert.InDelta(t, float64(Body.R), float64(body.R), 1)
	assert.Equal(t, uint8(255), body.A)

	bg := out.NRGBAAt(13, 4)
	assert.InDelta(t, float64(Background.G), float64(bg.G), 1, "transparent pixels take the background")
	assert.Equal(t, uint8(255), bg.A)

	same := Downsample(out, 1, Background)
	assert.Equal(t, out.Pix, same.Pix)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	fb := NewFrameBuffer(4, 4)
	fb.Fill(Body)
	img := fb.Image()

	p, err := WriteFile(dir, "S/01", img, FormatTGA)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "S_01.tga"), p)
	f, err := os.Open(p)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := tga.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())

	p, err = WriteFile(dir, "S-01", img, FormatWebP)
	require.NoError(t, err)
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	require.Greater(t, len(data), 12)
	assert.True(t, bytes.Equal(data[0:4], []byte("RIFF")))
	assert.True(t, bytes.Equal(data[8:12], []byte("WEBP")))

	_, err = WriteFile(dir, "x", img, "png")
	assert.Error(t, err)
}

func TestWriteFile_Errors(t *testing.T) {
	img := NewFrameBuffer(2, 2).Image()

	blocker := filepath.Join(t.TempDir(), "taken")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	_, err := WriteFile(blocker, "S-01", img, FormatWebP)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create "+blocker)

	_, err = WriteFile(t.TempDir(), "S-01", img, "png")
	assert.ErrorContains(t, err, "unknown preview format")
}

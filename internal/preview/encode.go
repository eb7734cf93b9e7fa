package preview

import (
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"github.com/pkg/errors"
)

// Supported output formats.
const (
	FormatWebP = "webp"
	FormatTGA  = "tga"
)

// Encode writes img in the named format.
func Encode(w io.Writer, img image.Image, format string) error {
	switch strings.ToLower(format) {
	case FormatWebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return errors.Wrap(err, "WebP encode")
		}
		return nil
	case FormatTGA:
		if err := tga.Encode(w, img); err != nil {
			return errors.Wrap(err, "TGA encode")
		}
		return nil
	}
	return errors.Errorf("unknown preview format %q", format)
}

// WriteFile saves img as <dir>/<name>.<format> and returns the path.
func WriteFile(dir, name string, img image.Image, format string) (string, error) {
	format = strings.ToLower(format)
	if format != FormatWebP && format != FormatTGA {
		return "", errors.Errorf("unknown preview format %q", format)
	}
	outPath := filepath.Join(dir, safeName(name)+"."+format)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "create %s", dir)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return "", errors.Wrapf(err, "create %s", outPath)
	}
	defer f.Close()

	if err := Encode(f, img, format); err != nil {
		return "", err
	}
	return outPath, f.Close()
}

// safeName keeps view ids usable as file names.
func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, s)
}

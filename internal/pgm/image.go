package pgm

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // register BMP decoder for LoadAny
	_ "golang.org/x/image/tiff" // register TIFF decoder for LoadAny
)

// SupportedImageExtensions lists non-PGM extensions accepted by LoadAny and SaveAny.
var SupportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff", ".gif"}

// IsPGM reports whether path has a .pgm extension.
func IsPGM(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pgm")
}

// IsSupported reports whether path can be read by LoadAny.
func IsSupported(path string) bool {
	if IsPGM(path) {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedImageExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// FromImage converts img to an 8-bit grayscale raster.
func FromImage(img image.Image) *Raster {
	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	r := &Raster{Width: b.Dx(), Height: b.Dy(), MaxValue: MaxSupportedValue, Pix: make([]int, b.Dx()*b.Dy())}
	for x := range r.Height {
		row := gray.Pix[x*gray.Stride:]
		for y := range r.Width {
			// NRGBA after Grayscale: R == G == B.
			r.Pix[x*r.Width+y] = int(row[y*4])
		}
	}
	return r
}

// ToImage renders r as an 8-bit grayscale image, rescaling samples to 0..255.
func (r *Raster) ToImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, r.Width, r.Height))
	for x := range r.Height {
		for y := range r.Width {
			v := r.At(x, y)
			if r.MaxValue != MaxSupportedValue {
				v = (v*MaxSupportedValue + r.MaxValue/2) / r.MaxValue
			}
			img.Pix[x*img.Stride+y] = uint8(v)
		}
	}
	return img
}

// LoadAny reads a PGM file or any image format supported by imaging.
func LoadAny(path string) (*Raster, error) {
	if IsPGM(path) {
		return Load(path)
	}
	if !IsSupported(path) {
		return nil, fmt.Errorf("unsupported format: %s", filepath.Ext(path))
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return FromImage(img), nil
}

// SaveAny writes r as PGM or, for other extensions, as an image via imaging.
func SaveAny(path string, r *Raster) error {
	if IsPGM(path) {
		return Save(path, r)
	}
	if !IsSupported(path) {
		return fmt.Errorf("unsupported format: %s", filepath.Ext(path))
	}
	if err := r.Validate(); err != nil {
		return err
	}
	return imaging.Save(r.ToImage(), path)
}

// Package imageproc turns uploaded product images into the normalized NHWC
// float32 tensor the classifier expects: decode, contrast adjust, resize,
// scale to [0,1]. All steps are deterministic.
package imageproc

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/Keithclinton/Counter-Front/internal/errors"
)

// Options controls preprocessing of a decoded image.
type Options struct {
	TargetSize int     // square resolution the model expects
	Contrast   float64 // multiplicative contrast factor, 1.0 is unchanged
}

// Load reads an image file and returns the preprocessed tensor in NHWC order
// with shape (1, TargetSize, TargetSize, 3) and values in [0,1].
func Load(path string, opts Options) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(err).
			Component("imageproc").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	defer f.Close()

	img, err := Decode(f, path)
	if err != nil {
		return nil, err
	}

	return Preprocess(img, opts), nil
}

// Decode decodes raw image bytes with the decoder selected by the filename
// extension: PNG for .png, JPEG otherwise. A failed decode yields an
// image-decode category error which the HTTP layer maps to a 400.
func Decode(r io.Reader, filename string) (image.Image, error) {
	var img image.Image
	var err error

	if strings.EqualFold(filepath.Ext(filename), ".png") {
		img, err = png.Decode(r)
	} else {
		img, err = jpeg.Decode(r)
	}

	if err != nil {
		return nil, errors.New(fmt.Errorf("invalid image format: %w", err)).
			Component("imageproc").
			Category(errors.CategoryImageDecode).
			Context("filename", filepath.Base(filename)).
			Build()
	}
	return img, nil
}

// Preprocess applies contrast adjustment, resizes to the target square
// resolution and converts to a normalized NHWC tensor.
func Preprocess(img image.Image, opts Options) []float32 {
	// imaging expresses contrast as a percentage shift, the model's pipeline
	// as a multiplicative factor
	contrastPct := (opts.Contrast - 1.0) * 100.0
	if contrastPct != 0 {
		img = imaging.AdjustContrast(img, contrastPct)
	}

	img = imaging.Resize(img, opts.TargetSize, opts.TargetSize, imaging.Linear)

	return ToTensor(img)
}

// ToTensor converts an image to float32 NHWC layout with batch 1 and
// channel values scaled from the native integer range to [0,1].
func ToTensor(img image.Image) []float32 {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	// NHWC with batch=1: length = 1 * h * w * 3
	out := make([]float32, 1*h*w*3)

	// iterate rows (y) then columns (x) so memory layout matches NHWC
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r32, g32, b32, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// 16-bit color to 8-bit
			r := float32(r32 >> 8)
			g := float32(g32 >> 8)
			b := float32(b32 >> 8)

			base := ((y * w) + x) * 3
			out[base+0] = r / 255.0
			out[base+1] = g / 255.0
			out[base+2] = b / 255.0
		}
	}

	return out
}

// Package testutil synthesizes encoded frames for tests.
package testutil

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// Solid returns a w x h image filled with c
func Solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// Gradient returns a w x h image whose gray level rises left to right
func Gradient(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 255 / max(w-1, 1))})
		}
	}
	return img
}

// Checkerboard returns a w x h black and white board with square cells of size cell
func Checkerboard(w, h, cell int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

// Invert returns the photographic negative of a grayscale image
func Invert(img *image.Gray) *image.Gray {
	out := image.NewGray(img.Bounds())
	for i, v := range img.Pix {
		out.Pix[i] = 255 - v
	}
	return out
}

// PNGBytes encodes img as PNG
func PNGBytes(t testing.TB, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

// PNGBase64 encodes img as bare base64 PNG
func PNGBase64(t testing.TB, img image.Image) string {
	t.Helper()
	return base64.StdEncoding.EncodeToString(PNGBytes(t, img))
}

// PNGDataURL encodes img as a PNG data-URL
func PNGDataURL(t testing.TB, img image.Image) string {
	t.Helper()
	return "data:image/png;base64," + PNGBase64(t, img)
}

// JPEGBase64 encodes img as bare base64 JPEG at the given quality
func JPEGBase64(t testing.TB, img image.Image, quality int) string {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		t.Fatalf("Failed to encode JPEG: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

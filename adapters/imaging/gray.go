package imaging

import (
	"image"
	"image/color"

	"github.com/satriahrh/framegate/domain/entities"
)

// ToGray converts any image to a grayscale frame using the BT.601 luma
// weights (0.299, 0.587, 0.114). Colour is taken un-premultiplied, so a
// translucent pixel gets the same luma whatever the decoder's image type;
// alpha itself is then dropped.
func ToGray(img image.Image) *entities.Frame {
	b := img.Bounds()
	frame := entities.NewFrame(b.Dx(), b.Dy())

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < frame.Height; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(frame.Pix[y*frame.Width:(y+1)*frame.Width], src.Pix[off:off+frame.Width])
		}
		return frame
	case *image.RGBA:
		for y := 0; y < frame.Height; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			for x := 0; x < frame.Width; x++ {
				p := src.Pix[off+x*4 : off+x*4+4 : off+x*4+4]
				if p[3] != 0xff {
					c := color.NRGBAModel.Convert(color.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]}).(color.NRGBA)
					frame.Pix[y*frame.Width+x] = luma8(c.R, c.G, c.B)
					continue
				}
				frame.Pix[y*frame.Width+x] = luma8(p[0], p[1], p[2])
			}
		}
		return frame
	case *image.NRGBA:
		for y := 0; y < frame.Height; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			for x := 0; x < frame.Width; x++ {
				p := src.Pix[off+x*4 : off+x*4+3 : off+x*4+3]
				frame.Pix[y*frame.Width+x] = luma8(p[0], p[1], p[2])
			}
		}
		return frame
	}

	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			frame.Pix[y*frame.Width+x] = luma8(c.R, c.G, c.B)
		}
	}
	return frame
}

// luma8 rounds 0.299 R + 0.587 G + 0.114 B using 14-bit fixed point
func luma8(r, g, b uint8) uint8 {
	const (
		wr    = 4899 // 0.299 * 16384
		wg    = 9617 // 0.587 * 16384
		wb    = 1868 // 0.114 * 16384
		shift = 14
	)
	return uint8((uint32(r)*wr + uint32(g)*wg + uint32(b)*wb + 1<<(shift-1)) >> shift)
}

// FrameToImage exposes a frame as an *image.Gray sharing its buffer
func FrameToImage(frame *entities.Frame) *image.Gray {
	return &image.Gray{
		Pix:    frame.Pix,
		Stride: frame.Width,
		Rect:   image.Rect(0, 0, frame.Width, frame.Height),
	}
}

package mglimage

import (
	"image"

	"github.com/jamesrr39/goutil/errorsx"
)

// Premultiply converts unassociated (straight alpha) RGBA pixels to an alpha-premultiplied image
func Premultiply(pixels []byte, width, height int) (*image.RGBA, errorsx.Error) {
	expectedLen := width * height * 4
	if len(pixels) != expectedLen {
		return nil, errorsx.Errorf("image size does not match width and height: expected %d bytes but got %d", expectedLen, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(pixels); i += 4 {
		a := uint32(pixels[i+3])
		img.Pix[i] = premultiplyChannel(pixels[i], a)
		img.Pix[i+1] = premultiplyChannel(pixels[i+1], a)
		img.Pix[i+2] = premultiplyChannel(pixels[i+2], a)
		img.Pix[i+3] = uint8(a)
	}

	return img, nil
}

// Unpremultiply converts an alpha-premultiplied image into a straight alpha image
func Unpremultiply(img *image.RGBA) *image.NRGBA {
	bounds := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := 0; y < bounds.Dy(); y++ {
		srcRow := img.Pix[y*img.Stride : y*img.Stride+bounds.Dx()*4]
		dstRow := out.Pix[y*out.Stride : y*out.Stride+bounds.Dx()*4]
		for i := 0; i < len(srcRow); i += 4 {
			a := uint32(srcRow[i+3])
			dstRow[i+3] = uint8(a)
			if a == 0 {
				dstRow[i], dstRow[i+1], dstRow[i+2] = 0, 0, 0
				continue
			}
			dstRow[i] = unpremultiplyChannel(srcRow[i], a)
			dstRow[i+1] = unpremultiplyChannel(srcRow[i+1], a)
			dstRow[i+2] = unpremultiplyChannel(srcRow[i+2], a)
		}
	}

	return out
}

// Buffer returns the straight alpha RGBA bytes of an image, row by row with no padding
func Buffer(img *image.RGBA) []byte {
	return Unpremultiply(img).Pix
}

func premultiplyChannel(c uint8, a uint32) uint8 {
	return uint8((uint32(c)*a + 127) / 255)
}

func unpremultiplyChannel(c uint8, a uint32) uint8 {
	v := (uint32(c)*255 + a/2) / a
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

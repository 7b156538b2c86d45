package mglimage

import (
	"bytes"
	"image"
	"image/png"

	"github.com/jamesrr39/goutil/errorsx"
)

// EncodePNG encodes a premultiplied frame as a straight alpha PNG
func EncodePNG(img *image.RGBA) ([]byte, errorsx.Error) {
	buf := bytes.NewBuffer(nil)

	encoder := &png.Encoder{CompressionLevel: png.DefaultCompression}
	err := encoder.Encode(buf, Unpremultiply(img))
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return buf.Bytes(), nil
}

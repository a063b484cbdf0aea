/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: image_test.go
Description: Tests for color mode normalization, raw byte invariants, compression and hashing.
*/

package imaging_test

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/deepintent-ccs/DeepIntent/pkg/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromImageModes(t *testing.T) {
	rect := image.Rect(0, 0, 3, 2)

	opaquePalette := image.NewPaletted(rect, color.Palette{color.Black, color.White})
	alphaPalette := image.NewPaletted(rect, color.Palette{color.Transparent, color.White})

	translucent := image.NewNRGBA(rect)
	translucent.Set(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 40})

	opaque := image.NewRGBA(rect)
	for i := 3; i < len(opaque.Pix); i += 4 {
		opaque.Pix[i] = 0xff
	}

	tests := []struct {
		name string
		img  image.Image
		mode imaging.Mode
	}{
		{"gray", image.NewGray(rect), imaging.ModeL},
		{"gray16", image.NewGray16(rect), imaging.ModeI16},
		{"cmyk", image.NewCMYK(rect), imaging.ModeCMYK},
		{"palette", opaquePalette, imaging.ModeRGB},
		{"palette with alpha", alphaPalette, imaging.ModeRGBA},
		{"ycbcr", image.NewYCbCr(rect, image.YCbCrSubsampleRatio444), imaging.ModeRGB},
		{"nrgba translucent", translucent, imaging.ModeRGBA},
		{"rgba opaque", opaque, imaging.ModeRGB},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := imaging.FromImage(tt.img)
			assert.Equal(t, tt.mode, c.Mode)
			assert.Equal(t, 3, c.Width)
			assert.Equal(t, 2, c.Height)
			require.NoError(t, c.Validate())
			assert.Len(t, c.Bytes, 3*2*tt.mode.BytesPerPixel())
		})
	}
}

func TestFromImageSubImage(t *testing.T) {
	base := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range base.Pix {
		base.Pix[i] = byte(i)
	}
	sub := base.SubImage(image.Rect(1, 1, 3, 3))

	c := imaging.FromImage(sub)
	assert.Equal(t, imaging.ModeL, c.Mode)
	assert.Equal(t, []byte{5, 6, 9, 10}, c.Bytes)
}

func TestGray16ByteOrder(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 1, 1))
	img.SetGray16(0, 0, color.Gray16{Y: 0x0102})

	c := imaging.FromImage(img)
	assert.Equal(t, []byte{0x02, 0x01}, c.Bytes)

	back, err := c.ToImage()
	require.NoError(t, err)
	assert.Equal(t, color.Gray16{Y: 0x0102}, back.At(0, 0))
}

func TestToImageRoundTrip(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	src.Set(1, 1, color.NRGBA{R: 1, G: 2, B: 3, A: 128})

	c := imaging.FromImage(src)
	require.Equal(t, imaging.ModeRGBA, c.Mode)

	img, err := c.ToImage()
	require.NoError(t, err)
	assert.Equal(t, c.Bytes, imaging.FromImage(img).Bytes)

	rgb := &imaging.CompressedImage{Mode: imaging.ModeRGB, Width: 1, Height: 1, Bytes: []byte{9, 8, 7}}
	img, err = rgb.ToImage()
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 9, G: 8, B: 7, A: 255}, img.At(0, 0))
}

func TestValidate(t *testing.T) {
	bad := &imaging.CompressedImage{Mode: imaging.ModeRGB, Width: 2, Height: 2, Bytes: make([]byte, 11)}
	assert.ErrorIs(t, bad.Validate(), imaging.ErrSizeMismatch)

	unknown := &imaging.CompressedImage{Mode: "P", Width: 1, Height: 1, Bytes: []byte{0}}
	assert.Error(t, unknown.Validate())

	_, err := bad.ToImage()
	assert.Error(t, err)
}

func TestCompressDecompress(t *testing.T) {
	c := imaging.FromImage(image.NewGray(image.Rect(0, 0, 16, 16)))
	packed, err := c.Compress()
	require.NoError(t, err)
	assert.Less(t, len(packed), len(c.Bytes))

	back, err := imaging.Decompress(c.Mode, c.Width, c.Height, packed)
	require.NoError(t, err)
	assert.Equal(t, c, back)

	_, err = imaging.Decompress(c.Mode, 17, 16, packed)
	assert.ErrorIs(t, err, imaging.ErrSizeMismatch)

	_, err = imaging.Decompress(c.Mode, 16, 16, []byte("plain"))
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 16; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	c := imaging.FromImage(img)

	first, err := c.Fingerprint()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first, "p:"))

	second, err := c.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResizeAndCrop(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 40, 10))
	resized := imaging.Resize(img, 20, 20)
	assert.Equal(t, image.Rect(0, 0, 20, 20), resized.Bounds())

	cropped := imaging.Crop(img, image.Rect(30, 5, 50, 20))
	assert.Equal(t, image.Rect(0, 0, 10, 5), cropped.Bounds())
}

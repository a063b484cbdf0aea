/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: image.go
Description: Canonical bitmap representation. A CompressedImage carries the color mode, the size
and the raw pixel bytes of a decoded icon so that it can be handed to OCR, feature extraction or
storage without keeping decoder state around.
*/

package imaging

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/corona10/goimagehash"
	"golang.org/x/image/draw"
)

// Mode names the pixel layout of the raw bytes
type Mode string

const (
	ModeRGB  Mode = "RGB"
	ModeRGBA Mode = "RGBA"
	ModeL    Mode = "L"
	ModeI16  Mode = "I;16"
	ModeCMYK Mode = "CMYK"
)

// BytesPerPixel returns the raw size of a single pixel, 0 for unknown modes
func (m Mode) BytesPerPixel() int {
	switch m {
	case ModeL:
		return 1
	case ModeI16:
		return 2
	case ModeRGB:
		return 3
	case ModeRGBA, ModeCMYK:
		return 4
	}
	return 0
}

// ErrSizeMismatch is returned when raw bytes do not match mode and size
var ErrSizeMismatch = errors.New("pixel data does not match image size")

// CompressedImage is a decoded bitmap in transport form
type CompressedImage struct {
	Mode   Mode   `json:"mode"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Bytes  []byte `json:"-"`
}

// Area returns the pixel count
func (c *CompressedImage) Area() int {
	return c.Width * c.Height
}

// Size formats the size the way cache keys expect it
func (c *CompressedImage) Size() string {
	return fmt.Sprintf("(%d, %d)", c.Width, c.Height)
}

// Validate checks len(Bytes) == Width*Height*BytesPerPixel(Mode)
func (c *CompressedImage) Validate() error {
	bpp := c.Mode.BytesPerPixel()
	if bpp == 0 {
		return fmt.Errorf("unknown image mode %q", c.Mode)
	}
	if want := c.Width * c.Height * bpp; len(c.Bytes) != want {
		return fmt.Errorf("%w: have %d bytes, want %d", ErrSizeMismatch, len(c.Bytes), want)
	}
	return nil
}

// FromImage converts a decoded image into its canonical mode. Palette images become RGB,
// or RGBA when the palette carries transparency.
func FromImage(img image.Image) *CompressedImage {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := &CompressedImage{Width: w, Height: h}

	switch src := img.(type) {
	case *image.Gray:
		out.Mode = ModeL
		out.Bytes = make([]byte, 0, w*h)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			i := src.PixOffset(b.Min.X, y)
			out.Bytes = append(out.Bytes, src.Pix[i:i+w]...)
		}
	case *image.Gray16:
		out.Mode = ModeI16
		out.Bytes = make([]byte, 0, w*h*2)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			i := src.PixOffset(b.Min.X, y)
			row := src.Pix[i : i+w*2]
			for x := 0; x < len(row); x += 2 {
				// little endian like the I;16 raw layout
				out.Bytes = append(out.Bytes, row[x+1], row[x])
			}
		}
	case *image.CMYK:
		out.Mode = ModeCMYK
		out.Bytes = make([]byte, 0, w*h*4)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			i := src.PixOffset(b.Min.X, y)
			out.Bytes = append(out.Bytes, src.Pix[i:i+w*4]...)
		}
	case *image.Paletted:
		if paletteHasAlpha(src.Palette) {
			out.Mode, out.Bytes = ModeRGBA, nrgbaBytes(img)
		} else {
			out.Mode, out.Bytes = ModeRGB, rgbBytes(img)
		}
	case *image.YCbCr:
		out.Mode, out.Bytes = ModeRGB, rgbBytes(img)
	default:
		if isOpaque(img) {
			out.Mode, out.Bytes = ModeRGB, rgbBytes(img)
		} else {
			out.Mode, out.Bytes = ModeRGBA, nrgbaBytes(img)
		}
	}
	return out
}

func paletteHasAlpha(p color.Palette) bool {
	for _, c := range p {
		if _, _, _, a := c.RGBA(); a != 0xffff {
			return true
		}
	}
	return false
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) && n.Stride == 4*n.Rect.Dx() {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

func nrgbaBytes(img image.Image) []byte {
	n := toNRGBA(img)
	out := make([]byte, len(n.Pix))
	copy(out, n.Pix)
	return out
}

func rgbBytes(img image.Image) []byte {
	n := toNRGBA(img)
	out := make([]byte, 0, len(n.Pix)/4*3)
	for i := 0; i < len(n.Pix); i += 4 {
		out = append(out, n.Pix[i], n.Pix[i+1], n.Pix[i+2])
	}
	return out
}

// ToImage rebuilds a standard library image from the raw bytes
func (c *CompressedImage) ToImage() (image.Image, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	rect := image.Rect(0, 0, c.Width, c.Height)
	switch c.Mode {
	case ModeL:
		img := image.NewGray(rect)
		copy(img.Pix, c.Bytes)
		return img, nil
	case ModeI16:
		img := image.NewGray16(rect)
		for i := 0; i < len(c.Bytes); i += 2 {
			img.Pix[i], img.Pix[i+1] = c.Bytes[i+1], c.Bytes[i]
		}
		return img, nil
	case ModeCMYK:
		img := image.NewCMYK(rect)
		copy(img.Pix, c.Bytes)
		return img, nil
	case ModeRGBA:
		img := image.NewNRGBA(rect)
		copy(img.Pix, c.Bytes)
		return img, nil
	default:
		img := image.NewNRGBA(rect)
		for i, j := 0, 0; i < len(c.Bytes); i, j = i+3, j+4 {
			img.Pix[j], img.Pix[j+1], img.Pix[j+2], img.Pix[j+3] = c.Bytes[i], c.Bytes[i+1], c.Bytes[i+2], 0xff
		}
		return img, nil
	}
}

// Fingerprint returns the perceptual hash of the image, e.g. "p:8f1e..."
func (c *CompressedImage) Fingerprint() (string, error) {
	img, err := c.ToImage()
	if err != nil {
		return "", err
	}
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return "", fmt.Errorf("failed to hash image: %w", err)
	}
	return hash.ToString(), nil
}

// Compress deflates the raw bytes for storage
func (c *CompressedImage) Compress() ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(c.Bytes); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress rebuilds an image from Compress output
func Decompress(mode Mode, width, height int, data []byte) (*CompressedImage, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	img := &CompressedImage{Mode: mode, Width: width, Height: height, Bytes: raw}
	if err := img.Validate(); err != nil {
		return nil, err
	}
	return img, nil
}

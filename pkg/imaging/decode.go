/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: decode.go
Description: Bitmap loading. Files are sniffed by content before decoding so that misnamed or
truncated resources are rejected early; png, jpeg, gif, webp and bmp drawables are supported.
*/

package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ErrUndecodable marks a file that is not a bitmap this package can decode
var ErrUndecodable = errors.New("not a decodable image")

// Source is a bitmap file whose header has been read
type Source struct {
	Path   string
	Format string
	Config image.Config
	data   []byte
}

// Area returns the pixel area announced by the file header
func (s *Source) Area() int {
	return s.Config.Width * s.Config.Height
}

// Decode fully decodes the bitmap
func (s *Source) Decode() (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(s.data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUndecodable, s.Path, err)
	}
	return img, nil
}

// Probe reads a file, checks its content type and decodes its header
func Probe(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return nil, fmt.Errorf("%w: %s is %s", ErrUndecodable, path, mime.String())
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUndecodable, path, err)
	}
	return &Source{Path: path, Format: format, Config: cfg, data: data}, nil
}

// Load probes and decodes a bitmap file
func Load(path string) (image.Image, error) {
	src, err := Probe(path)
	if err != nil {
		return nil, err
	}
	return src.Decode()
}

// Resize scales img to exactly width x height
func Resize(img image.Image, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// Crop copies the part of img inside r into a new image anchored at the origin
func Crop(img image.Image, r image.Rectangle) *image.NRGBA {
	r = r.Intersect(img.Bounds())
	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: ocr.go
Description: Embedded text extraction. Finds text regions in an icon, recognizes them in the
app's default language with an english fallback and caches the result per app, image and size.
Text detection and recognition engines are pluggable.
*/

package ocr

import (
	"context"
	"fmt"
	"image"
	"io"
	"sort"
	"strings"

	"github.com/deepintent-ccs/DeepIntent/pkg/cache"
	"github.com/deepintent-ccs/DeepIntent/pkg/imaging"
	"github.com/deepintent-ccs/DeepIntent/pkg/textutil"
	"github.com/sirupsen/logrus"
)

// MaxAspectRatio skips banners and separators that cannot hold readable text
const MaxAspectRatio = 10

// Recognizer reads a single line of text from an image region
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, lang string) (string, error)
}

// Detector locates text regions. It receives the image scaled to the configured OCR
// size and returns rectangles in that scaled space.
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]image.Rectangle, error)
}

// WholeImage is a Detector treating the full image as one text line
type WholeImage struct{}

func (WholeImage) Detect(_ context.Context, img image.Image) ([]image.Rectangle, error) {
	return []image.Rectangle{img.Bounds()}, nil
}

// Config tunes embedded text extraction
type Config struct {
	Width            int
	Height           int
	Padding          float64
	FallbackLanguage string
}

// DefaultConfig mirrors the usual EAST input size
func DefaultConfig() Config {
	return Config{
		Width:            320,
		Height:           320,
		Padding:          0.05,
		FallbackLanguage: textutil.LanguageEnglish,
	}
}

// Extractor runs OCR over materialized icons
type Extractor struct {
	recognizer Recognizer
	detector   Detector
	cache      cache.Store[[]string]
	config     Config
	logger     *logrus.Logger
}

// Option configures an Extractor
type Option func(*Extractor)

// WithDetector sets the text region detector
func WithDetector(d Detector) Option {
	return func(e *Extractor) { e.detector = d }
}

// WithCache sets the result cache
func WithCache(store cache.Store[[]string]) Option {
	return func(e *Extractor) { e.cache = store }
}

// WithConfig replaces the extraction settings
func WithConfig(cfg Config) Option {
	return func(e *Extractor) { e.config = cfg }
}

// WithLogger sets the logger
func WithLogger(logger *logrus.Logger) Option {
	return func(e *Extractor) { e.logger = logger }
}

// NewExtractor creates an extractor around a recognizer
func NewExtractor(recognizer Recognizer, opts ...Option) *Extractor {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	e := &Extractor{
		recognizer: recognizer,
		detector:   WholeImage{},
		cache:      cache.NopStore[[]string]{},
		config:     DefaultConfig(),
		logger:     discard,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CacheKey identifies an OCR result
func CacheKey(app, imageName string, img *imaging.CompressedImage) string {
	return fmt.Sprintf("%s-%s-%s", app, imageName, img.Size())
}

// Extract returns the embedded texts of img; a nil image or an extreme aspect ratio
// yields no texts
func (e *Extractor) Extract(ctx context.Context, app, imageName string, img *imaging.CompressedImage, defaultLang string) ([]string, error) {
	if img == nil || img.Width == 0 || img.Height == 0 {
		return []string{}, nil
	}
	w, h := float64(img.Width), float64(img.Height)
	if w/h > MaxAspectRatio || h/w > MaxAspectRatio {
		return []string{}, nil
	}

	key := CacheKey(app, imageName, img)
	if texts, ok := e.cache.Get(key); ok {
		return texts, nil
	}

	decoded, err := img.ToImage()
	if err != nil {
		return nil, err
	}
	texts, err := e.recognize(ctx, decoded, defaultLang)
	if err != nil {
		return nil, err
	}
	e.cache.Set(key, texts)
	return texts, nil
}

func (e *Extractor) recognize(ctx context.Context, img image.Image, defaultLang string) ([]string, error) {
	boxes := e.detect(ctx, img)

	langs := []string{defaultLang}
	if e.config.FallbackLanguage != "" && e.config.FallbackLanguage != defaultLang {
		langs = append(langs, e.config.FallbackLanguage)
	}

	for _, lang := range langs {
		if lang == "" {
			continue
		}
		texts, err := e.readBoxes(ctx, img, boxes, lang)
		if err != nil {
			return nil, err
		}
		if len(texts) > 0 {
			return texts, nil
		}
	}
	return []string{}, nil
}

// detect runs the detector on the scaled image and maps boxes back to img
func (e *Extractor) detect(ctx context.Context, img image.Image) []image.Rectangle {
	b := img.Bounds()
	whole := []image.Rectangle{b}
	if e.config.Width <= 0 || e.config.Height <= 0 {
		return whole
	}

	scaled := imaging.Resize(img, e.config.Width, e.config.Height)
	found, err := e.detector.Detect(ctx, scaled)
	if err != nil {
		e.logger.WithError(err).Debug("Text detection failed, using whole image")
		return whole
	}
	if len(found) == 0 {
		return whole
	}

	rw := float64(b.Dx()) / float64(e.config.Width)
	rh := float64(b.Dy()) / float64(e.config.Height)
	boxes := make([]image.Rectangle, 0, len(found))
	for _, r := range found {
		boxes = append(boxes, image.Rect(
			b.Min.X+int(float64(r.Min.X)*rw),
			b.Min.Y+int(float64(r.Min.Y)*rh),
			b.Min.X+int(float64(r.Max.X)*rw),
			b.Min.Y+int(float64(r.Max.Y)*rh),
		))
	}
	return boxes
}

type line struct {
	top  int
	text string
}

// readBoxes recognizes every padded box and returns the non blank lines top to bottom
func (e *Extractor) readBoxes(ctx context.Context, img image.Image, boxes []image.Rectangle, lang string) ([]string, error) {
	var lines []line
	for _, box := range boxes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		roi := pad(box, e.config.Padding).Intersect(img.Bounds())
		if roi.Empty() {
			continue
		}
		text, err := e.recognizer.Recognize(ctx, imaging.Crop(img, roi), lang)
		if err != nil {
			e.logger.WithFields(logrus.Fields{
				"lang":  lang,
				"box":   roi.String(),
				"error": err,
			}).Debug("Recognition failed for region")
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			lines = append(lines, line{top: roi.Min.Y, text: text})
		}
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].top < lines[j].top })

	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.text
	}
	return texts, nil
}

// pad grows r by padding times its size, twice as much on the bottom right
func pad(r image.Rectangle, padding float64) image.Rectangle {
	dx := int(float64(r.Dx()) * padding)
	dy := int(float64(r.Dy()) * padding)
	return image.Rect(r.Min.X-dx, r.Min.Y-dy, r.Max.X+2*dx, r.Max.Y+2*dy)
}

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: ocr_test.go
Description: Tests for embedded text extraction with scripted recognizers and detectors.
*/

package ocr_test

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"

	"github.com/deepintent-ccs/DeepIntent/pkg/cache"
	"github.com/deepintent-ccs/DeepIntent/pkg/imaging"
	"github.com/deepintent-ccs/DeepIntent/pkg/ocr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedRecognizer struct {
	mu      sync.Mutex
	byLang  map[string][]string
	calls   []string
	regions []image.Rectangle
	fail    bool
}

func (r *scriptedRecognizer) Recognize(_ context.Context, img image.Image, lang string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, lang)
	r.regions = append(r.regions, img.Bounds())
	if r.fail {
		return "", errors.New("engine crashed")
	}
	queue := r.byLang[lang]
	if len(queue) == 0 {
		return "", nil
	}
	r.byLang[lang] = queue[1:]
	return queue[0], nil
}

type fixedDetector []image.Rectangle

func (d fixedDetector) Detect(context.Context, image.Image) ([]image.Rectangle, error) {
	return d, nil
}

func icon(w, h int) *imaging.CompressedImage {
	return imaging.FromImage(image.NewGray(image.Rect(0, 0, w, h)))
}

func TestExtractSkipsDegenerateImages(t *testing.T) {
	rec := &scriptedRecognizer{byLang: map[string][]string{}}
	e := ocr.NewExtractor(rec)

	texts, err := e.Extract(context.Background(), "app", "img", nil, "english")
	require.NoError(t, err)
	assert.Empty(t, texts)

	texts, err = e.Extract(context.Background(), "app", "banner", icon(220, 20), "english")
	require.NoError(t, err)
	assert.Empty(t, texts)

	texts, err = e.Extract(context.Background(), "app", "divider", icon(2, 40), "english")
	require.NoError(t, err)
	assert.Empty(t, texts)

	assert.Empty(t, rec.calls)
}

func TestExtractFallbackLanguage(t *testing.T) {
	rec := &scriptedRecognizer{byLang: map[string][]string{
		"chinese": {"  \n"},
		"english": {"SEND\n\f"},
	}}
	e := ocr.NewExtractor(rec)

	texts, err := e.Extract(context.Background(), "app", "ic_send", icon(48, 48), "chinese")
	require.NoError(t, err)
	assert.Equal(t, []string{"SEND"}, texts)
	assert.Equal(t, []string{"chinese", "english"}, rec.calls)
}

func TestExtractCachesResults(t *testing.T) {
	rec := &scriptedRecognizer{byLang: map[string][]string{"english": {"GO"}}}
	store := cache.NewMemoryStore[[]string]()
	e := ocr.NewExtractor(rec, ocr.WithCache(store))

	img := icon(32, 32)
	first, err := e.Extract(context.Background(), "app", "ic_go", img, "english")
	require.NoError(t, err)
	second, err := e.Extract(context.Background(), "app", "ic_go", img, "english")
	require.NoError(t, err)

	assert.Equal(t, []string{"GO"}, first)
	assert.Equal(t, first, second)
	assert.Len(t, rec.calls, 1)

	cached, ok := store.Get("app-ic_go-(32, 32)")
	assert.True(t, ok)
	assert.Equal(t, []string{"GO"}, cached)

	// empty results are cached as well
	_, err = e.Extract(context.Background(), "app", "ic_blank", icon(16, 16), "english")
	require.NoError(t, err)
	cached, ok = store.Get(ocr.CacheKey("app", "ic_blank", icon(16, 16)))
	assert.True(t, ok)
	assert.Empty(t, cached)
}

func TestExtractDetectedRegions(t *testing.T) {
	rec := &scriptedRecognizer{byLang: map[string][]string{"english": {"bottom", "top"}}}
	det := fixedDetector{
		image.Rect(0, 160, 320, 320),
		image.Rect(0, 0, 320, 160),
	}
	cfg := ocr.DefaultConfig()
	cfg.Padding = 0
	e := ocr.NewExtractor(rec, ocr.WithDetector(det), ocr.WithConfig(cfg))

	texts, err := e.Extract(context.Background(), "app", "ic", icon(64, 64), "english")
	require.NoError(t, err)
	assert.Equal(t, []string{"top", "bottom"}, texts)
	assert.Equal(t, []image.Rectangle{
		image.Rect(0, 0, 64, 32),
		image.Rect(0, 0, 64, 32),
	}, rec.regions)
}

func TestExtractRecognizerErrors(t *testing.T) {
	rec := &scriptedRecognizer{fail: true}
	e := ocr.NewExtractor(rec)

	texts, err := e.Extract(context.Background(), "app", "ic", icon(32, 32), "english")
	require.NoError(t, err)
	assert.Empty(t, texts)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Extract(ctx, "app", "ic2", icon(32, 32), "english")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTesseractLanguage(t *testing.T) {
	assert.Equal(t, "eng", ocr.TesseractLanguage("english"))
	assert.Equal(t, "chi_sim", ocr.TesseractLanguage("chinese"))
	assert.Equal(t, "jpn", ocr.TesseractLanguage("japanese"))
	assert.Equal(t, "kor", ocr.TesseractLanguage("korean"))
	assert.Equal(t, "fra", ocr.TesseractLanguage("fra"))
	assert.Equal(t, "tesseract", ocr.NewTesseractRecognizer("").Binary)
}

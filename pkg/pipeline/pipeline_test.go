/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: pipeline_test.go
Description: End to end tests for batch extraction over generated app trees with scripted OCR and
translation engines.
*/

package pipeline_test

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"
	"testing"

	"github.com/deepintent-ccs/DeepIntent/pkg/apptest"
	"github.com/deepintent-ccs/DeepIntent/pkg/imaging"
	"github.com/deepintent-ccs/DeepIntent/pkg/pipeline"
	"github.com/deepintent-ccs/DeepIntent/pkg/records"
	"github.com/deepintent-ccs/DeepIntent/pkg/resources"
	"github.com/deepintent-ccs/DeepIntent/pkg/textutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type langRecognizer struct {
	mu    sync.Mutex
	texts map[string]string
	calls int
}

func (r *langRecognizer) Recognize(_ context.Context, _ image.Image, lang string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.texts[lang], nil
}

type dictTranslator struct {
	mu    sync.Mutex
	words map[string]string
	seen  []string
}

func (d *dictTranslator) Translate(_ context.Context, text string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen = append(d.seen, text)
	if out, ok := d.words[text]; ok {
		return out, nil
	}
	return "", fmt.Errorf("no translation for %q", text)
}

func settingsLayout(text string) string {
	return `<LinearLayout ` + apptest.AndroidDecl + `>
    <ImageView android:src="@drawable/ic_settings"/>
    <TextView android:text="` + text + `"/>
</LinearLayout>`
}

func newApps(t *testing.T) *apptest.Tree {
	t.Helper()
	zh := apptest.New(t, "zh")
	zh.WriteIcon(apptest.Drawable("ic_settings.png"), 32, 32)
	zh.WriteXML("res/layout/main.xml", settingsLayout("设置"))

	en := zh.Sibling("en")
	en.WriteIcon(apptest.Drawable("ic_settings.png"), 48, 24)
	en.WriteXML("res/layout/main.xml", settingsLayout("Settings"))
	return zh
}

func testConfig(appsDir string) *pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.AppsDir = appsDir
	cfg.LogLevel = pipeline.LogLevelSilent
	cfg.Workers = 2
	cfg.Seed = 1
	return cfg
}

func TestRun(t *testing.T) {
	tree := newApps(t)
	rec := &langRecognizer{texts: map[string]string{textutil.LanguageEnglish: "Send"}}
	tr := &dictTranslator{words: map[string]string{"设置": "settings"}}

	e, err := pipeline.NewExtractor(testConfig(tree.AppsDir), nil,
		pipeline.WithRecognizer(rec),
		pipeline.WithTranslator(tr),
	)
	require.NoError(t, err)
	defer e.Close()

	recs := []records.Record{
		{App: "zh", Image: "ic_settings", Layout: "main.xml", Permissions: []string{"CAMERA"}},
		{App: "ghost", Image: "ic_settings", Layout: "main.xml", Permissions: []string{}},
		{App: "en", Image: "ic_settings", Layout: "main.xml", Permissions: []string{}},
	}
	batch, err := e.Run(context.Background(), recs)
	require.NoError(t, err)
	require.Len(t, batch.Results, 3)
	assert.NotEmpty(t, batch.ID)

	zh := batch.Results[0]
	assert.Equal(t, recs[0], zh.Record)
	assert.False(t, zh.Failed())
	assert.Equal(t, "res/drawable/ic_settings.png", zh.ImagePath)
	assert.Equal(t, "direct", zh.Bucket)
	require.NotNil(t, zh.Image)
	assert.Equal(t, imaging.ModeRGB, zh.Image.Mode)
	assert.Equal(t, "(32, 32)", zh.Image.Size())
	assert.NotEmpty(t, zh.Fingerprint)
	assert.Equal(t, textutil.LanguageChinese, zh.Language)
	assert.Equal(t, pipeline.TextTriple{
		Layout:   []string{"settings"},
		Embedded: []string{"Send"},
		Resource: []string{"ic", "settings"},
	}, zh.Texts)

	ghost := batch.Results[1]
	assert.True(t, ghost.Failed())
	assert.True(t, resources.IsPrecondition(ghost.Err))
	assert.Contains(t, ghost.Error, "app directory not found")
	assert.Nil(t, ghost.Image)

	en := batch.Results[2]
	assert.Equal(t, textutil.LanguageEnglish, en.Language)
	assert.Equal(t, "(48, 24)", en.Image.Size())
	assert.Equal(t, []string{"Settings"}, en.Texts.Layout)
	assert.Equal(t, []string{"Send"}, en.Texts.Embedded)

	stats := batch.Stats
	assert.Equal(t, int64(3), stats.Records)
	assert.Equal(t, int64(2), stats.Completed)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(2), stats.IconsFound)
	assert.Equal(t, int64(2), stats.LayoutHits)
	assert.Equal(t, int64(2), stats.EmbeddedHits)
	assert.Equal(t, 3, stats.Apps)
	assert.Equal(t, map[string]int{"direct": 2}, stats.Buckets)
	assert.Equal(t, map[string]int{"chinese": 1, "english": 1}, stats.Languages)
	assert.InDelta(t, 2.0/3.0, stats.FoundRatio(), 1e-9)

	// english texts never reach the engine
	assert.Equal(t, []string{"设置"}, tr.seen)
}

func TestRunWithoutOptionalStages(t *testing.T) {
	tree := newApps(t)
	cfg := testConfig(tree.AppsDir)
	cfg.OCREnabled = false
	cfg.Translate = false
	cfg.Normalize = false

	e, err := pipeline.NewExtractor(cfg, nil)
	require.NoError(t, err)
	defer e.Close()

	batch, err := e.Run(context.Background(), []records.Record{
		{App: "zh", Image: "ic_settings", Layout: "main.xml"},
		{App: "zh", Image: "ic_missing", Layout: "main.xml"},
	})
	require.NoError(t, err)

	found := batch.Results[0]
	assert.Equal(t, []string{"设置"}, found.Texts.Layout)
	assert.Equal(t, []string{}, found.Texts.Embedded)

	missing := batch.Results[1]
	assert.False(t, missing.Failed())
	assert.Nil(t, missing.Image)
	assert.Empty(t, missing.ImagePath)
	assert.Equal(t, []string{"设置"}, missing.Texts.Layout, "unmatched icons fall back to the whole layout")
	assert.Equal(t, []string{"ic", "missing"}, missing.Texts.Resource)
	assert.Equal(t, int64(1), batch.Stats.IconsFound)
	assert.Equal(t, int64(2), batch.Stats.Completed)
}

func TestRunSharesOCRCache(t *testing.T) {
	tree := newApps(t)
	rec := &langRecognizer{texts: map[string]string{textutil.LanguageEnglish: "Send"}}
	cfg := testConfig(tree.AppsDir)
	cfg.Translate = false
	cfg.Workers = 1

	e, err := pipeline.NewExtractor(cfg, nil, pipeline.WithRecognizer(rec))
	require.NoError(t, err)
	defer e.Close()

	recs := []records.Record{
		{App: "en", Image: "ic_settings", Layout: "main.xml"},
		{App: "en", Image: "ic_settings", Layout: "other.xml"},
	}
	batch, err := e.Run(context.Background(), recs)
	require.NoError(t, err)

	assert.Equal(t, []string{"Send"}, batch.Results[1].Texts.Embedded)
	assert.Equal(t, 1, rec.calls)
}

func TestRunCancelled(t *testing.T) {
	tree := newApps(t)
	cfg := testConfig(tree.AppsDir)
	cfg.OCREnabled = false
	cfg.Translate = false

	e, err := pipeline.NewExtractor(cfg, nil)
	require.NoError(t, err)
	defer e.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch, err := e.Run(ctx, []records.Record{{App: "zh", Image: "ic_settings", Layout: "main.xml"}})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, batch)
	assert.Equal(t, int64(0), batch.Stats.Completed)
}

func TestConfigValidate(t *testing.T) {
	cfg := pipeline.DefaultConfig()
	assert.Error(t, cfg.Validate())

	cfg.AppsDir = "apps"
	cfg.LogLevel = 7
	cfg.LayoutScope = "whole"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, pipeline.LogLevelSilent, cfg.LogLevel)
	assert.Equal(t, "parent", cfg.LayoutScope)

	cfg.Workers = 0
	assert.Error(t, cfg.Validate())
	cfg.Workers = 1

	cfg.OCRPadding = 1.5
	assert.Error(t, cfg.Validate())
	cfg.OCREnabled = false
	assert.NoError(t, cfg.Validate())

	cfg.CacheBackend = "leveldb"
	assert.Error(t, cfg.Validate())
	cfg.CacheDir = t.TempDir()
	assert.NoError(t, cfg.Validate())

	cfg.CacheBackend = "redis"
	assert.Error(t, cfg.Validate())
}

func TestLogObserverProgress(t *testing.T) {
	logger, hook := test.NewNullLogger()
	obs := pipeline.NewLogObserver(logger, pipeline.LogLevelProgress)

	res := &pipeline.Result{}
	obs.PhaseStarted(pipeline.PhaseResolve, 40)
	for i := 0; i < 40; i++ {
		obs.RecordStarted(pipeline.PhaseResolve, i, res)
		obs.RecordFinished(pipeline.PhaseResolve, i, res)
	}

	progress := 0
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Progress" {
			progress++
		}
	}
	assert.Equal(t, 20, progress)
}

func TestLogObserverLevels(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	silent := pipeline.NewLogObserver(logger, pipeline.LogLevelSilent)
	silent.PhaseStarted(pipeline.PhaseText, 1)
	silent.RecordFinished(pipeline.PhaseText, 0, &pipeline.Result{})
	silent.PhaseFinished(pipeline.PhaseText, &pipeline.Stats{})
	assert.Empty(t, hook.AllEntries())

	verbose := pipeline.NewLogObserver(logger, pipeline.LogLevelVerbose)
	verbose.PhaseStarted(pipeline.PhaseText, 1)
	verbose.RecordStarted(pipeline.PhaseText, 0, &pipeline.Result{})
	verbose.RecordFinished(pipeline.PhaseText, 0, &pipeline.Result{Record: records.Record{App: "a", Image: "b"}})

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, "Record finished", last.Message)
	assert.Equal(t, "a", last.Data["app"])
	assert.Len(t, hook.AllEntries(), 3)
}

func TestRunSeededIsReproducible(t *testing.T) {
	var items strings.Builder
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&items, `<item android:drawable="@drawable/layer_%d"/>`, i)
	}
	first := apptest.New(t, "app00")
	var recs []records.Record
	for a := 0; a < 40; a++ {
		tree := first
		if a > 0 {
			tree = first.Sibling(fmt.Sprintf("app%02d", a))
		}
		tree.WriteXML(apptest.Drawable("stack.xml"), `<layer-list `+apptest.AndroidDecl+`>`+items.String()+`</layer-list>`)
		for i := 0; i < 5; i++ {
			tree.WriteIcon(apptest.Drawable(fmt.Sprintf("layer_%d.png", i)), 8, 8)
		}
		recs = append(recs, records.Record{App: tree.Name, Image: "stack"})
	}

	run := func(workers int) []string {
		cfg := testConfig(first.AppsDir)
		cfg.OCREnabled = false
		cfg.Translate = false
		cfg.Workers = workers
		cfg.Seed = 42

		e, err := pipeline.NewExtractor(cfg, nil)
		require.NoError(t, err)
		defer e.Close()

		batch, err := e.Run(context.Background(), recs)
		require.NoError(t, err)
		paths := make([]string, len(batch.Results))
		for i, res := range batch.Results {
			paths[i] = res.ImagePath
		}
		return paths
	}

	sequential := run(1)
	for _, p := range sequential {
		assert.NotEmpty(t, p)
	}
	for i := 0; i < 4; i++ {
		assert.Equal(t, sequential, run(8))
	}
}

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: extractor.go
Description: Batch extraction of contextual texts. Runs records through icon materialization,
layout text resolution, per app language detection, OCR and translation on a bounded pool of
workers while keeping results in input order.
*/

package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/deepintent-ccs/DeepIntent/pkg/cache"
	"github.com/deepintent-ccs/DeepIntent/pkg/imaging"
	"github.com/deepintent-ccs/DeepIntent/pkg/layout"
	"github.com/deepintent-ccs/DeepIntent/pkg/ocr"
	"github.com/deepintent-ccs/DeepIntent/pkg/records"
	"github.com/deepintent-ccs/DeepIntent/pkg/resources"
	"github.com/deepintent-ccs/DeepIntent/pkg/textutil"
	"github.com/deepintent-ccs/DeepIntent/pkg/translate"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Extractor runs batches of records
type Extractor struct {
	config *Config
	logger *logrus.Logger

	materializer *imaging.Materializer
	layouts      *layout.Resolver
	ocr          *ocr.Extractor
	translator   *translate.ToEnglish
	observer     Observer
	caches       *cache.Factory

	recognizer ocr.Recognizer
	detector   ocr.Detector
	engine     translate.Translator
}

// Option configures an Extractor
type Option func(*Extractor)

// WithRecognizer replaces the tesseract recognizer
func WithRecognizer(r ocr.Recognizer) Option {
	return func(e *Extractor) { e.recognizer = r }
}

// WithDetector sets the text region detector
func WithDetector(d ocr.Detector) Option {
	return func(e *Extractor) { e.detector = d }
}

// WithTranslator replaces the command line translator
func WithTranslator(t translate.Translator) Option {
	return func(e *Extractor) { e.engine = t }
}

// WithObserver sets the progress observer
func WithObserver(o Observer) Option {
	return func(e *Extractor) { e.observer = o }
}

// NewExtractor validates config and wires the stages. OCR or translation is
// turned off with a warning when it is enabled but no engine is available.
func NewExtractor(config *Config, logger *logrus.Logger, opts ...Option) (*Extractor, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	e := &Extractor{
		config: config,
		logger: logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.observer == nil {
		e.observer = NewLogObserver(logger, config.LogLevel)
	}

	backend, _ := cache.ParseBackend(config.CacheBackend)
	caches, err := cache.NewFactory(backend, config.CacheDir, config.CacheTTL, logger)
	if err != nil {
		return nil, err
	}
	e.caches = caches

	resolverOpts := []resources.Option{resources.WithMaxDepth(config.MaxDepth)}
	if config.Seed != 0 {
		resolverOpts = append(resolverOpts, resources.WithSeed(config.Seed))
	}
	e.materializer = imaging.NewMaterializer(logger, resolverOpts...)
	e.layouts = layout.NewResolver(logger)

	e.setupOCR()
	if err := e.setupTranslation(); err != nil {
		caches.Close()
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"apps_dir":  config.AppsDir,
		"workers":   config.Workers,
		"scope":     config.LayoutScope,
		"ocr":       e.ocr != nil,
		"translate": e.translator != nil,
		"cache":     backend,
	}).Info("Extractor initialized")

	return e, nil
}

func (e *Extractor) setupOCR() {
	if !e.config.OCREnabled {
		return
	}
	if e.recognizer == nil {
		tess := ocr.NewTesseractRecognizer(e.config.TesseractPath)
		if !tess.Available() {
			e.logger.WithField("binary", e.config.TesseractPath).Warn("Tesseract not found, embedded texts disabled")
			return
		}
		e.recognizer = tess
	}

	store := cache.Store[[]string](cache.NopStore[[]string]{})
	if e.config.OCRCache {
		store = cache.Make[[]string](e.caches, "ocr")
	}
	opts := []ocr.Option{
		ocr.WithCache(store),
		ocr.WithConfig(e.config.ocrConfig()),
		ocr.WithLogger(e.logger),
	}
	if e.detector != nil {
		opts = append(opts, ocr.WithDetector(e.detector))
	}
	e.ocr = ocr.NewExtractor(e.recognizer, opts...)
}

func (e *Extractor) setupTranslation() error {
	if !e.config.Translate {
		return nil
	}
	if e.engine == nil {
		if e.config.TranslateCommand == "" {
			e.logger.Warn("No translation command configured, translation disabled")
			return nil
		}
		cmd, err := translate.NewCommandTranslator(e.config.TranslateCommand)
		if err != nil {
			return fmt.Errorf("invalid translate command: %w", err)
		}
		e.engine = cmd
	}

	store := cache.Store[string](cache.NopStore[string]{})
	if e.config.TranslateCache {
		store = cache.Make[string](e.caches, "translate")
	}
	e.translator = translate.NewToEnglish(e.engine, store, e.logger)
	return nil
}

// Close releases the caches
func (e *Extractor) Close() error {
	return e.caches.Close()
}

// Run processes recs. On cancellation the partial batch is returned together
// with the context error.
func (e *Extractor) Run(ctx context.Context, recs []records.Record) (*Batch, error) {
	batch := &Batch{
		ID:        uuid.New().String(),
		StartTime: time.Now(),
		Results:   make([]*Result, len(recs)),
		Stats:     newStats(len(recs)),
	}
	for i, rec := range recs {
		batch.Results[i] = &Result{ID: uuid.New().String(), Record: rec}
	}

	e.logger.WithFields(logrus.Fields{
		"batch":   batch.ID,
		"records": len(recs),
	}).Info("Starting extraction")

	finish := func(err error) (*Batch, error) {
		batch.EndTime = time.Now()
		e.summarize(batch)
		return batch, err
	}

	if err := e.forEach(ctx, PhaseResolve, batch, e.resolve); err != nil {
		return finish(err)
	}
	e.assignLanguages(batch)
	if err := e.forEach(ctx, PhaseText, batch, e.texts); err != nil {
		return finish(err)
	}
	return finish(nil)
}

func (e *Extractor) forEach(ctx context.Context, phase Phase, batch *Batch, fn func(context.Context, *Result, *Stats)) error {
	e.observer.PhaseStarted(phase, len(batch.Results))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)

	for i, res := range batch.Results {
		if gctx.Err() != nil {
			break
		}
		i, res := i, res
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e.observer.RecordStarted(phase, i, res)
			if !res.Failed() {
				start := time.Now()
				fn(gctx, res, batch.Stats)
				res.Duration += time.Since(start)
			}
			e.observer.RecordFinished(phase, i, res)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	e.observer.PhaseFinished(phase, batch.Stats)
	return nil
}

// resolve materializes the icon and collects layout and resource texts
func (e *Extractor) resolve(_ context.Context, res *Result, stats *Stats) {
	rec := res.Record
	app, err := resources.OpenApp(e.config.AppsDir, rec.App)
	if err != nil {
		res.fail(err)
		stats.IncrementFailed()
		e.logger.WithFields(logrus.Fields{
			"app":   rec.App,
			"image": rec.Image,
			"error": err,
		}).Warn("Skipping record")
		return
	}

	resolver := e.materializer.NewResolver(app)
	if sel := e.materializer.Select(resolver, rec.Image); sel != nil {
		res.Image = sel.Image
		res.ImagePath = sel.Path
		res.Bucket = sel.Bucket.String()
		res.Trace = sel.Trace
		if fp, err := sel.Image.Fingerprint(); err == nil {
			res.Fingerprint = fp
		}
		stats.IncrementIconsFound()
	}
	for _, issue := range resolver.Issues() {
		res.Issues = append(res.Issues, issue.Error())
	}
	stats.AddIssues(len(res.Issues))

	res.Texts.Layout = e.layouts.ResolveApp(app, rec.Image, rec.Layout, layout.Scope(e.config.LayoutScope))
	if len(res.Texts.Layout) > 0 {
		stats.IncrementLayoutHits()
	}
	res.Texts.Resource = textutil.Split(rec.Image)
}

// assignLanguages sets every result's language to the default language of its app
func (e *Extractor) assignLanguages(batch *Batch) {
	texts := make(map[string][]string)
	var apps []string
	for _, res := range batch.Results {
		if res.Failed() {
			continue
		}
		if _, ok := texts[res.Record.App]; !ok {
			apps = append(apps, res.Record.App)
			texts[res.Record.App] = nil
		}
		texts[res.Record.App] = append(texts[res.Record.App], res.Texts.Layout...)
	}

	e.observer.PhaseStarted(PhaseLanguage, len(apps))
	languages := make(map[string]string, len(apps))
	for _, app := range apps {
		languages[app] = textutil.DefaultLanguage(texts[app])
		e.logger.WithFields(logrus.Fields{
			"app":      app,
			"language": languages[app],
		}).Debug("Default language detected")
	}
	for _, res := range batch.Results {
		if !res.Failed() {
			res.Language = languages[res.Record.App]
		}
	}
	e.observer.PhaseFinished(PhaseLanguage, batch.Stats)
}

// texts runs OCR, translation and normalization
func (e *Extractor) texts(ctx context.Context, res *Result, stats *Stats) {
	res.Texts.Embedded = []string{}
	if e.ocr != nil {
		embedded, err := e.ocr.Extract(ctx, res.Record.App, res.Record.Image, res.Image, res.Language)
		if err != nil {
			e.logger.WithFields(logrus.Fields{
				"app":   res.Record.App,
				"image": res.Record.Image,
				"error": err,
			}).Warn("Embedded text extraction failed")
		} else {
			res.Texts.Embedded = embedded
		}
	}

	if e.translator != nil {
		res.Texts.Layout = e.translator.TranslateAll(ctx, res.Texts.Layout)
		res.Texts.Embedded = e.translator.TranslateAll(ctx, res.Texts.Embedded)
	}

	if e.config.Normalize {
		res.Texts.Layout = textutil.NormalizeAll(res.Texts.Layout)
		res.Texts.Embedded = textutil.NormalizeAll(res.Texts.Embedded)
		res.Texts.Resource = textutil.NormalizeAll(res.Texts.Resource)
	}

	if len(res.Texts.Embedded) > 0 {
		stats.IncrementEmbeddedHits()
	}
	stats.IncrementCompleted()
}

// summarize fills the per batch histograms once workers are done
func (e *Extractor) summarize(batch *Batch) {
	apps := make(map[string]string)
	for _, res := range batch.Results {
		if res.Bucket != "" {
			batch.Stats.Buckets[res.Bucket]++
		}
		if _, ok := apps[res.Record.App]; !ok || apps[res.Record.App] == "" {
			apps[res.Record.App] = res.Language
		}
	}
	batch.Stats.Apps = len(apps)
	for _, lang := range apps {
		if lang != "" {
			batch.Stats.Languages[lang]++
		}
	}

	e.logger.WithFields(logrus.Fields{
		"batch":       batch.ID,
		"records":     batch.Stats.Records,
		"completed":   batch.Stats.Completed,
		"failed":      batch.Stats.Failed,
		"icons_found": batch.Stats.IconsFound,
		"duration":    batch.Duration(),
	}).Info("Extraction finished")
}

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: materializer.go
Description: Icon materialization. Resolves a drawable name, walks the ranked candidate groups
and returns the largest decodable bitmap of the best group that has one.
*/

package imaging

import (
	"io"
	"sort"

	"github.com/deepintent-ccs/DeepIntent/pkg/resources"
	"github.com/sirupsen/logrus"
)

// Selection is the outcome of a successful materialization
type Selection struct {
	Image  *CompressedImage
	Path   string
	Trace  resources.LookupTrace
	Bucket resources.Bucket
}

// Materializer turns drawable names into bitmaps
type Materializer struct {
	logger *logrus.Logger
	opts   []resources.Option
}

// NewMaterializer creates a materializer; opts are applied to every resolver it creates
func NewMaterializer(logger *logrus.Logger, opts ...resources.Option) *Materializer {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Materializer{logger: logger, opts: opts}
}

// Materialize loads the icon named name of appsDir/appName. A missing icon returns
// (nil, "", nil); only an invalid app root is an error.
func (m *Materializer) Materialize(appsDir, appName, name string) (*CompressedImage, string, error) {
	app, err := resources.OpenApp(appsDir, appName)
	if err != nil {
		return nil, "", err
	}
	sel := m.Select(m.NewResolver(app), name)
	if sel == nil {
		return nil, "", nil
	}
	return sel.Image, sel.Path, nil
}

// NewResolver creates a resolver carrying the materializer options
func (m *Materializer) NewResolver(app *resources.App) *resources.Resolver {
	opts := append([]resources.Option{resources.WithLogger(m.logger)}, m.opts...)
	return resources.NewResolver(app, opts...)
}

// Select resolves name with res and picks the image; nil when nothing decodes
func (m *Materializer) Select(res *resources.Resolver, name string) *Selection {
	return m.SelectFrom(res.App(), res.FindLocations(name))
}

// SelectFrom picks the image among already resolved traces of app
func (m *Materializer) SelectFrom(app *resources.App, traces []resources.LookupTrace) *Selection {
	for _, group := range resources.RankAndGroup(traces) {
		var sources []*Source
		for _, rel := range group.Paths {
			src, err := Probe(app.Path(rel))
			if err != nil {
				m.logger.WithFields(logrus.Fields{
					"app":   app.Name,
					"path":  rel,
					"error": err,
				}).Debug("Skipping candidate image")
				continue
			}
			if src.Area() == 0 {
				continue
			}
			src.Path = rel
			sources = append(sources, src)
		}

		sort.SliceStable(sources, func(i, j int) bool {
			return sources[i].Area() > sources[j].Area()
		})

		for _, src := range sources {
			img, err := src.Decode()
			if err != nil {
				m.logger.WithFields(logrus.Fields{
					"app":   app.Name,
					"path":  src.Path,
					"error": err,
				}).Debug("Skipping corrupt image")
				continue
			}
			return &Selection{
				Image:  FromImage(img),
				Path:   src.Path,
				Trace:  traceFor(traces, src.Path, group.Bucket),
				Bucket: group.Bucket,
			}
		}
	}
	return nil
}

func traceFor(traces []resources.LookupTrace, rel string, bucket resources.Bucket) resources.LookupTrace {
	for _, trace := range traces {
		leaf := trace.Leaf()
		if leaf.RelativePath == rel && resources.BucketOf(leaf.Label) == bucket {
			return trace
		}
	}
	return nil
}

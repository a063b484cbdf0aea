/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: resolver.go
Description: Drawable resolution. Maps a drawable resource name to every image it can stand for,
following XML descriptors (animation-list, selector and any other container) recursively and
labeling each terminal image so that the ranker can pick the most representative one.
*/

package resources

import (
	"hash/fnv"
	"io"
	"math/rand"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/sirupsen/logrus"
)

// DefaultMaxDepth bounds nested descriptor resolution
const DefaultMaxDepth = 10

// DefaultMaxVisits bounds the descriptors expanded by one lookup. Descriptors shared by
// several states are expanded once per path, so depth alone does not bound the work.
const DefaultMaxVisits = 256

// Chooser picks an index in [0, n); *rand.Rand satisfies it
type Chooser interface {
	Intn(n int) int
}

// Option configures a Resolver
type Option func(*Resolver)

// WithMaxDepth sets the descriptor nesting cap
func WithMaxDepth(depth int) Option {
	return func(r *Resolver) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// WithMaxVisits sets the descriptor expansion budget of one lookup
func WithMaxVisits(visits int) Option {
	return func(r *Resolver) {
		if visits > 0 {
			r.maxVisits = visits
		}
	}
}

// WithChooser injects the random source used for generic descriptors. An injected
// chooser is shared by every lookup and takes precedence over WithSeed.
func WithChooser(c Chooser) Option {
	return func(r *Resolver) {
		if c != nil {
			r.chooser = c
		}
	}
}

// WithSeed makes generic descriptor choices reproducible. Every lookup draws from its
// own source derived from the seed, the app and the drawable name, so the choice does
// not depend on which resolver or goroutine runs it.
func WithSeed(seed int64) Option {
	return func(r *Resolver) {
		r.seed, r.seeded = seed, true
	}
}

// WithLogger sets the logger used for skipped descriptors
func WithLogger(logger logrus.FieldLogger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resolver resolves drawable names of one application. Lookups may run concurrently
// unless an injected Chooser is not safe for concurrent use.
type Resolver struct {
	app       *App
	maxDepth  int
	maxVisits int
	chooser   Chooser
	seed      int64
	seeded    bool
	logger    logrus.FieldLogger

	mu     sync.Mutex
	issues []DescriptorIssue
}

// NewResolver creates a resolver over an opened application
func NewResolver(app *App, opts ...Option) *Resolver {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	r := &Resolver{
		app:       app,
		maxDepth:  DefaultMaxDepth,
		maxVisits: DefaultMaxVisits,
		logger:    discard,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// App returns the application the resolver works on
func (r *Resolver) App() *App {
	return r.app
}

// Issues returns the descriptors skipped since the resolver was created
func (r *Resolver) Issues() []DescriptorIssue {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]DescriptorIssue, len(r.issues))
	copy(out, r.issues)
	return out
}

// FindLocations returns every trace reachable from the drawable name. Direct images are
// labeled "direct"; XML descriptors are expanded. Missing names yield an empty result.
func (r *Resolver) FindLocations(name string) []LookupTrace {
	return r.find(r.newLookup(name), name, 0, nil)
}

// ResolveXML expands one descriptor file given relative to the app root. A nil result
// means the descriptor contributed nothing.
func (r *Resolver) ResolveXML(relPath string) []LookupTrace {
	name, _ := resourceBaseName(path.Base(relPath))
	return r.resolveXML(r.newLookup(name), relPath, 1, nil)
}

// lookup holds the state of one resolution call
type lookup struct {
	chooser   Chooser
	visits    int
	exhausted bool
	folders   []string
	listings  map[string][]os.DirEntry
}

func (r *Resolver) newLookup(name string) *lookup {
	chooser := r.chooser
	if chooser == nil {
		seed := time.Now().UnixNano()
		if r.seeded {
			seed = lookupSeed(r.seed, r.app.Name, name)
		}
		chooser = rand.New(rand.NewSource(seed))
	}
	return &lookup{chooser: chooser}
}

func lookupSeed(seed int64, app, name string) int64 {
	h := fnv.New64a()
	h.Write([]byte(app))
	h.Write([]byte{0})
	h.Write([]byte(name))
	return seed ^ int64(h.Sum64())
}

// drawableFolders lists the drawable folders and their files once per lookup
func (r *Resolver) drawableFolders(l *lookup) []string {
	if l.listings != nil {
		return l.folders
	}
	l.listings = make(map[string][]os.DirEntry)
	folders, err := r.app.ResourceFolders(PrefixDrawable)
	if err != nil {
		r.logger.WithFields(logrus.Fields{
			"app":   r.app.Name,
			"error": err,
		}).Warn("Failed to list drawable folders")
		return nil
	}
	for _, folder := range folders {
		entries, err := os.ReadDir(filepath.Join(r.app.ResDir(), folder))
		if err != nil {
			r.logger.WithFields(logrus.Fields{
				"folder": folder,
				"error":  err,
			}).Debug("Skipping unreadable drawable folder")
			continue
		}
		l.folders = append(l.folders, folder)
		l.listings[folder] = entries
	}
	return l.folders
}

func (r *Resolver) find(l *lookup, name string, depth int, stack []string) []LookupTrace {
	var traces []LookupTrace
	for _, folder := range r.drawableFolders(l) {
		for _, entry := range l.listings[folder] {
			if entry.IsDir() {
				continue
			}
			base, ext := resourceBaseName(entry.Name())
			if base != name {
				continue
			}
			rel := path.Join("res", folder, entry.Name())
			if ext == ".xml" {
				traces = append(traces, r.resolveXML(l, rel, depth+1, stack)...)
				continue
			}
			traces = append(traces, LookupTrace{{RelativePath: rel, Kind: KindImage, Label: LabelDirect}})
		}
	}
	return traces
}

func (r *Resolver) resolveXML(l *lookup, rel string, depth int, stack []string) []LookupTrace {
	if l.exhausted {
		return nil
	}
	if depth > r.maxDepth {
		r.skip(rel, depth, ErrDepthExceeded)
		return nil
	}
	for _, seen := range stack {
		if seen == rel {
			r.skip(rel, depth, ErrCycle)
			return nil
		}
	}
	if l.visits >= r.maxVisits {
		// reported once, the remaining descriptors of the lookup are dropped silently
		l.exhausted = true
		r.skip(rel, depth, ErrBudgetExceeded)
		return nil
	}
	l.visits++

	doc, err := ReadXML(r.app.Path(rel))
	if err != nil {
		r.skip(rel, depth, err)
		return nil
	}
	root := RootElement(doc)
	stack = append(stack[:len(stack):len(stack)], rel)

	var groups [][]LookupTrace
	switch root.Data {
	case "animation-list":
		groups = r.animationGroups(l, root, depth, stack)
	case "selector":
		groups = r.selectorGroups(l, root, depth, stack)
	default:
		groups = r.randomGroups(l, root, depth, stack)
	}
	if len(groups) == 0 {
		return nil
	}

	self := ResourceLocation{RelativePath: rel, Kind: KindXML, Label: root.Data}
	var traces []LookupTrace
	for _, group := range groups {
		for _, trace := range group {
			traces = append(traces, trace.Prepend(self))
		}
	}
	return traces
}

func (r *Resolver) skip(rel string, depth int, err error) {
	issue := DescriptorIssue{Path: rel, Depth: depth, Err: err}
	r.mu.Lock()
	r.issues = append(r.issues, issue)
	r.mu.Unlock()
	r.logger.WithFields(logrus.Fields{
		"app":   r.app.Name,
		"path":  rel,
		"depth": depth,
		"error": err,
	}).Warn("Skipping drawable descriptor")
}

type drawableRef struct {
	name  string
	attrs int
}

// drawableRefs lists every android:drawable reference of the descriptor in document order
func drawableRefs(root *xmlquery.Node) []drawableRef {
	var refs []drawableRef
	for _, el := range Elements(root) {
		value, ok := AndroidAttr(el, "drawable")
		if !ok {
			continue
		}
		name := value
		if i := strings.LastIndex(value, "/"); i >= 0 {
			name = value[i+1:]
		}
		refs = append(refs, drawableRef{name: name, attrs: AttrCount(el)})
	}
	return refs
}

// animationGroups labels the first resolved frame "first" and the rest "later"
func (r *Resolver) animationGroups(l *lookup, root *xmlquery.Node, depth int, stack []string) [][]LookupTrace {
	var groups [][]LookupTrace
	for _, ref := range drawableRefs(root) {
		traces := r.find(l, ref.name, depth, stack)
		if len(traces) == 0 {
			continue
		}
		label := LabelLater
		if len(groups) == 0 {
			label = LabelFirst
		}
		groups = append(groups, relabel(traces, label))
	}
	return groups
}

// selectorGroups labels every state by its attribute count; the state with the fewest
// attributes is the default look of the widget and becomes the target
func (r *Resolver) selectorGroups(l *lookup, root *xmlquery.Node, depth int, stack []string) [][]LookupTrace {
	var groups [][]LookupTrace
	target, fewest := -1, 0
	for _, ref := range drawableRefs(root) {
		traces := r.find(l, ref.name, depth, stack)
		if len(traces) == 0 {
			continue
		}
		if target < 0 || ref.attrs < fewest {
			target, fewest = len(groups), ref.attrs
		}
		groups = append(groups, relabel(traces, ButtonLabel(ref.attrs, false)))
	}
	if target >= 0 {
		groups[target] = relabel(groups[target], ButtonLabel(fewest, true))
	}
	return groups
}

// randomGroups picks one resolved reference as "chosen", the others are "candidate"
func (r *Resolver) randomGroups(l *lookup, root *xmlquery.Node, depth int, stack []string) [][]LookupTrace {
	var groups [][]LookupTrace
	for _, ref := range drawableRefs(root) {
		traces := r.find(l, ref.name, depth, stack)
		if len(traces) == 0 {
			continue
		}
		groups = append(groups, traces)
	}
	if len(groups) == 0 {
		return nil
	}
	chosen := l.chooser.Intn(len(groups))
	for i := range groups {
		label := LabelCandidate
		if i == chosen {
			label = LabelChosen
		}
		groups[i] = relabel(groups[i], label)
	}
	return groups
}

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: layout.go
Description: Layout text resolution. Collects the visible texts that surround an icon in its
layout file, either inside the icon's parent container or across the whole layout.
*/

package layout

import (
	"io"
	"os"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/deepintent-ccs/DeepIntent/pkg/resources"
	"github.com/sirupsen/logrus"
)

// Scope selects how much of the layout is searched for texts
type Scope string

const (
	ScopeParent Scope = "parent"
	ScopeTotal  Scope = "total"
)

// ParseScope parses a scope name; unknown names fall back to ScopeParent
func ParseScope(s string) Scope {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case ScopeTotal:
		return ScopeTotal
	default:
		return ScopeParent
	}
}

const stringRefPrefix = "@string"

// Resolver extracts layout texts
type Resolver struct {
	logger *logrus.Logger
}

// NewResolver creates a layout text resolver
func NewResolver(logger *logrus.Logger) *Resolver {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Resolver{logger: logger}
}

// ResolveLayoutTexts returns the texts around imageName in layoutFile of appsDir/appName.
// A missing layout yields an empty list; only an invalid app root is an error.
func (r *Resolver) ResolveLayoutTexts(appsDir, appName, imageName, layoutFile string, scope Scope) ([]string, error) {
	app, err := resources.OpenApp(appsDir, appName)
	if err != nil {
		return nil, err
	}
	return r.ResolveApp(app, imageName, layoutFile, scope), nil
}

// ResolveApp is ResolveLayoutTexts over an opened application
func (r *Resolver) ResolveApp(app *resources.App, imageName, layoutFile string, scope Scope) []string {
	fields := logrus.Fields{"app": app.Name, "image": imageName, "layout": layoutFile}

	table := StringTable{}
	if rel := app.FindResourceFile(resources.PrefixValues, "strings.xml"); rel != "" {
		if loaded, err := r.loadStrings(app.Path(rel)); err != nil {
			r.logger.WithFields(fields).WithError(err).Warn("Ignoring unreadable string table")
		} else {
			table = loaded
		}
	}

	rel := app.FindResourceFile(resources.PrefixLayout, layoutFile)
	if rel == "" {
		return []string{}
	}
	doc, err := resources.ReadXML(app.Path(rel))
	if err != nil {
		r.logger.WithFields(fields).WithError(err).Warn("Ignoring unreadable layout")
		return []string{}
	}
	return CollectTexts(resources.RootElement(doc), imageName, table, scope)
}

func (r *Resolver) loadStrings(path string) (StringTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseStringTable(data)
}

// TextsFromXML parses a layout document and collects its texts
func TextsFromXML(data []byte, imageName string, table StringTable, scope Scope) ([]string, error) {
	doc, err := resources.ParseXML(data)
	if err != nil {
		return nil, err
	}
	return CollectTexts(resources.RootElement(doc), imageName, table, scope), nil
}

// CollectTexts walks the layout in document order and gathers the texts of every node
// inside an anchor subtree. With ScopeParent the anchors are the parents of the nodes
// referencing @drawable/<imageName>; otherwise, or when nothing references the image,
// the root is the only anchor.
func CollectTexts(root *xmlquery.Node, imageName string, table StringTable, scope Scope) []string {
	texts := []string{}
	if root == nil {
		return texts
	}

	anchors := map[*xmlquery.Node]bool{root: true}
	if scope == ScopeParent {
		if parents := targetParents(root, imageName); len(parents) > 0 {
			anchors = parents
		}
	}

	var walk func(n *xmlquery.Node, inside bool)
	walk = func(n *xmlquery.Node, inside bool) {
		inside = inside || anchors[n]
		if inside {
			if text, ok := nodeText(n, table); ok {
				texts = append(texts, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == xmlquery.ElementNode {
				walk(c, inside)
			}
		}
	}
	walk(root, false)
	return texts
}

func targetParents(root *xmlquery.Node, imageName string) map[*xmlquery.Node]bool {
	ref := "@drawable/" + imageName
	parents := make(map[*xmlquery.Node]bool)
	for _, el := range resources.Elements(root) {
		if !resources.HasAttrValue(el, ref) {
			continue
		}
		// a root level reference has no parent element, fall back to the whole document
		if el == root || el.Parent == nil || el.Parent.Type != xmlquery.ElementNode {
			parents[root] = true
			continue
		}
		parents[el.Parent] = true
	}
	return parents
}

func nodeText(n *xmlquery.Node, table StringTable) (string, bool) {
	if vis, ok := resources.AndroidAttr(n, "visibility"); ok && vis == "invisible" {
		return "", false
	}
	text, ok := resources.AndroidAttr(n, "text")
	if !ok {
		return "", false
	}
	if strings.HasPrefix(text, stringRefPrefix) {
		return table.Resolve(text)
	}
	return text, true
}

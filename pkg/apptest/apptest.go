/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: apptest.go
Description: Test fixtures for decoded application trees. Builds apps/<name>/res hierarchies on
disk with XML resources and generated bitmaps so resolution code can be exercised end to end.
*/

package apptest

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// AndroidDecl is the namespace declaration to put on resource roots
const AndroidDecl = `xmlns:android="http://schemas.android.com/apk/res/android"`

// Tree is a decoded application rooted in a temporary apps directory
type Tree struct {
	t       testing.TB
	AppsDir string
	Name    string
	Root    string
}

// New creates appsDir/name/res inside a fresh temporary directory
func New(t testing.TB, name string) *Tree {
	t.Helper()
	appsDir := t.TempDir()
	root := filepath.Join(appsDir, name)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "res"), 0755))
	return &Tree{t: t, AppsDir: appsDir, Name: name, Root: root}
}

// Path returns the absolute path of a slash separated relative path
func (tr *Tree) Path(rel string) string {
	return filepath.Join(tr.Root, filepath.FromSlash(rel))
}

// WriteFile writes raw content at rel, creating folders as needed
func (tr *Tree) WriteFile(rel string, content []byte) string {
	tr.t.Helper()
	p := tr.Path(rel)
	require.NoError(tr.t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(tr.t, os.WriteFile(p, content, 0644))
	return p
}

// WriteXML writes an XML resource
func (tr *Tree) WriteXML(rel, content string) string {
	tr.t.Helper()
	return tr.WriteFile(rel, []byte(`<?xml version="1.0" encoding="utf-8"?>`+"\n"+content))
}

// WritePNG writes an opaque w x h PNG filled with c
func (tr *Tree) WritePNG(rel string, w, h int, c color.Color) string {
	tr.t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	p := tr.WriteFile(rel, nil)
	f, err := os.Create(p)
	require.NoError(tr.t, err)
	defer f.Close()
	require.NoError(tr.t, png.Encode(f, img))
	return p
}

// WriteIcon writes a gray opaque PNG
func (tr *Tree) WriteIcon(rel string, w, h int) string {
	tr.t.Helper()
	return tr.WritePNG(rel, w, h, color.NRGBA{R: 120, G: 120, B: 120, A: 255})
}

// Drawable returns "res/drawable/<file>"
func Drawable(file string) string {
	return "res/drawable/" + file
}

// Sibling creates another app next to tr in the same apps directory
func (tr *Tree) Sibling(name string) *Tree {
	tr.t.Helper()
	root := filepath.Join(tr.AppsDir, name)
	require.NoError(tr.t, os.MkdirAll(filepath.Join(root, "res"), 0755))
	return &Tree{t: tr.t, AppsDir: tr.AppsDir, Name: name, Root: root}
}

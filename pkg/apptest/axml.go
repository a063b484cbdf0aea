/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: axml.go
Description: Minimal compiled (binary AXML) resource writer. Produces the chunk layout that
aapt leaves in undecoded apps: a UTF-16 string pool followed by namespace and element chunks.
*/

package apptest

import (
	"bytes"
	"encoding/binary"
	"strings"
	"unicode/utf16"
)

// AndroidNS is the android attribute namespace URI
const AndroidNS = "http://schemas.android.com/apk/res/android"

const (
	chunkStringPool = 0x0001
	chunkXMLFile    = 0x0003
	chunkNsStart    = 0x0100
	chunkNsEnd      = 0x0101
	chunkTagStart   = 0x0102
	chunkTagEnd     = 0x0103

	attrTypeString = 0x03
	attrSize       = 20
)

// Attr is an attribute of a compiled element; an "android:" prefix selects the android namespace
type Attr struct {
	Name  string
	Value string
}

// Element is a node of a compiled XML document
type Element struct {
	Name     string
	Attrs    []Attr
	Children []Element
}

type axmlWriter struct {
	strings []string
	index   map[string]uint32
	body    bytes.Buffer
}

func (w *axmlWriter) intern(s string) uint32 {
	if i, ok := w.index[s]; ok {
		return i
	}
	i := uint32(len(w.strings))
	w.strings = append(w.strings, s)
	w.index[s] = i
	return i
}

func put(buf *bytes.Buffer, values ...interface{}) {
	for _, v := range values {
		binary.Write(buf, binary.LittleEndian, v)
	}
}

// node writes an XML node chunk: header, line number, comment, then body
func (w *axmlWriter) node(id uint16, body []byte) {
	put(&w.body, id, uint16(16), uint32(16+len(body)), uint32(1), uint32(0xFFFFFFFF))
	w.body.Write(body)
}

func (w *axmlWriter) element(el Element) {
	var body bytes.Buffer
	put(&body, w.intern(""), w.intern(el.Name), uint16(20), uint16(attrSize), uint16(len(el.Attrs)),
		uint16(0), uint16(0), uint16(0))
	for _, a := range el.Attrs {
		ns, name := w.intern(""), a.Name
		if local, ok := strings.CutPrefix(a.Name, "android:"); ok {
			ns, name = w.intern(AndroidNS), local
		}
		value := w.intern(a.Value)
		put(&body, ns, w.intern(name), value, uint16(8), uint8(0), uint8(attrTypeString), value)
	}
	w.node(chunkTagStart, body.Bytes())

	for _, child := range el.Children {
		w.element(child)
	}

	var end bytes.Buffer
	put(&end, w.intern(""), w.intern(el.Name))
	w.node(chunkTagEnd, end.Bytes())
}

func (w *axmlWriter) stringPool() []byte {
	var data bytes.Buffer
	offsets := make([]uint32, len(w.strings))
	for i, s := range w.strings {
		offsets[i] = uint32(data.Len())
		units := utf16.Encode([]rune(s))
		put(&data, uint16(len(units)), units, uint16(0))
	}
	for data.Len()%4 != 0 {
		data.WriteByte(0)
	}

	var pool bytes.Buffer
	start := 28 + 4*len(offsets)
	put(&pool, uint16(chunkStringPool), uint16(28), uint32(start+data.Len()),
		uint32(len(offsets)), uint32(0), uint32(0), uint32(start), uint32(0), offsets)
	pool.Write(data.Bytes())
	return pool.Bytes()
}

// CompileXML encodes root as a binary AXML document
func CompileXML(root Element) []byte {
	w := &axmlWriter{index: make(map[string]uint32)}
	prefix, uri := w.intern("android"), w.intern(AndroidNS)

	var ns bytes.Buffer
	put(&ns, prefix, uri)
	w.node(chunkNsStart, ns.Bytes())
	w.element(root)
	w.node(chunkNsEnd, ns.Bytes())

	pool := w.stringPool()
	var out bytes.Buffer
	put(&out, uint16(chunkXMLFile), uint16(8), uint32(8+len(pool)+w.body.Len()))
	out.Write(pool)
	out.Write(w.body.Bytes())
	return out.Bytes()
}

// WriteBinaryXML writes root as a compiled resource at rel
func (tr *Tree) WriteBinaryXML(rel string, root Element) string {
	tr.t.Helper()
	return tr.WriteFile(rel, CompileXML(root))
}

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: xmldoc.go
Description: XML loading for resource files. Binary AXML left behind by partial decompilation
is converted to text with apkparser before parsing; plain text XML is parsed directly.
*/

package resources

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"os"

	"github.com/antchfx/xmlquery"
	"github.com/avast/apkparser"
)

// AndroidNS is the android attribute namespace
const AndroidNS = "http://schemas.android.com/apk/res/android"

// ReadXML loads and parses an XML resource file
func ReadXML(filePath string) (*xmlquery.Node, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return ParseXML(data)
}

// ParseXML parses text or binary XML and guarantees the document has a root element
func ParseXML(data []byte) (*xmlquery.Node, error) {
	text, err := decodeBinaryXML(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
	}
	doc, err := xmlquery.Parse(bytes.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
	}
	if RootElement(doc) == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformedXML)
	}
	return doc, nil
}

func isBinaryXML(data []byte) bool {
	// RES_XML_TYPE chunk, little endian, 8 byte header
	return len(data) >= 8 && data[0] == 0x03 && data[1] == 0x00 && data[2] == 0x08 && data[3] == 0x00
}

func decodeBinaryXML(data []byte) ([]byte, error) {
	if !isBinaryXML(data) {
		return data, nil
	}
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	err := apkparser.ParseXml(bytes.NewReader(data), enc, nil)
	if errors.Is(err, apkparser.ErrPlainTextManifest) {
		return data, nil
	}
	if err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RootElement returns the first element child of a document
func RootElement(doc *xmlquery.Node) *xmlquery.Node {
	if doc == nil {
		return nil
	}
	if doc.Type == xmlquery.ElementNode {
		return doc
	}
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			return n
		}
	}
	return nil
}

// Elements returns node and all of its element descendants in document order
func Elements(node *xmlquery.Node) []*xmlquery.Node {
	var out []*xmlquery.Node
	var walk func(n *xmlquery.Node)
	walk = func(n *xmlquery.Node) {
		if n.Type == xmlquery.ElementNode {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if node != nil {
		walk(node)
	}
	return out
}

func isNamespaceDecl(a xmlquery.Attr) bool {
	return a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns")
}

func isAndroid(a xmlquery.Attr) bool {
	return a.NamespaceURI == AndroidNS || a.Name.Space == AndroidNS || a.Name.Space == "android"
}

// AndroidAttr returns the value of the android:<local> attribute of n
func AndroidAttr(n *xmlquery.Node, local string) (string, bool) {
	for _, a := range n.Attr {
		if a.Name.Local == local && isAndroid(a) && !isNamespaceDecl(a) {
			return a.Value, true
		}
	}
	return "", false
}

// PlainAttr returns the value of an attribute without namespace
func PlainAttr(n *xmlquery.Node, local string) (string, bool) {
	for _, a := range n.Attr {
		if a.Name.Local == local && a.Name.Space == "" && a.NamespaceURI == "" {
			return a.Value, true
		}
	}
	return "", false
}

// AttrCount counts the attributes of n, namespace declarations excluded
func AttrCount(n *xmlquery.Node) int {
	count := 0
	for _, a := range n.Attr {
		if !isNamespaceDecl(a) {
			count++
		}
	}
	return count
}

// HasAttrValue reports whether any attribute of n, namespace declarations excluded, equals value
func HasAttrValue(n *xmlquery.Node, value string) bool {
	for _, a := range n.Attr {
		if !isNamespaceDecl(a) && a.Value == value {
			return true
		}
	}
	return false
}

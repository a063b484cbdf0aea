/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: strings.go
Description: String resource table parsed from strings.xml in the values folders, used to dereference
@string/<name> references found in layouts.
*/

package layout

import (
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/deepintent-ccs/DeepIntent/pkg/resources"
)

// StringTable maps string resource names to their text
type StringTable map[string]string

// ParseStringTable reads the <string name="..."> children of a resources document.
// Strings without text are left out.
func ParseStringTable(data []byte) (StringTable, error) {
	doc, err := resources.ParseXML(data)
	if err != nil {
		return nil, err
	}
	table := make(StringTable)
	root := resources.RootElement(doc)
	for n := root.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != xmlquery.ElementNode || n.Data != "string" {
			continue
		}
		name, ok := resources.PlainAttr(n, "name")
		if !ok {
			continue
		}
		if text := leadingText(n); text != "" {
			table[name] = text
		}
	}
	return table, nil
}

// leadingText returns the text of n that precedes its first child element
func leadingText(n *xmlquery.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			break
		}
		if c.Type == xmlquery.TextNode || c.Type == xmlquery.CharDataNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

// Resolve dereferences "@string/<name>" using the part after the first slash
func (t StringTable) Resolve(ref string) (string, bool) {
	_, name, ok := strings.Cut(ref, "/")
	if !ok {
		return "", false
	}
	text, ok := t[name]
	return text, ok
}

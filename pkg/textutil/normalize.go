/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: normalize.go
Description: Unicode normalization of extracted texts before they are stored.
*/

package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize applies NFKC, drops control characters and collapses whitespace
func Normalize(text string) string {
	text = norm.NFKC.String(text)
	text = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	return strings.Join(strings.Fields(text), " ")
}

// NormalizeAll normalizes every text and drops the ones that end up empty
func NormalizeAll(texts []string) []string {
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if n := Normalize(t); n != "" {
			out = append(out, n)
		}
	}
	return out
}

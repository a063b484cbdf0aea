/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: split.go
Description: Resource name splitting. Breaks identifiers such as ic_sendMessage into word
tokens on underscores and lower to upper case transitions.
*/

package textutil

import (
	"strings"
	"unicode"
)

// Split tokenizes a resource identifier. Underscore pieces are kept even when empty;
// camel case splitting never produces empty tokens. Split("") returns [""].
func Split(identifier string) []string {
	var tokens []string
	for _, piece := range strings.Split(identifier, "_") {
		tokens = append(tokens, SplitCamel(piece)...)
	}
	return tokens
}

// SplitCamel cuts s before every upper case rune that follows a lower case rune.
// Runs of upper case runes stay together.
func SplitCamel(s string) []string {
	var tokens []string
	start := 0
	prevLower := false
	for i, r := range s {
		if unicode.IsUpper(r) && prevLower {
			tokens = append(tokens, s[start:i])
			start = i
		}
		prevLower = unicode.IsLower(r)
	}
	return append(tokens, s[start:])
}

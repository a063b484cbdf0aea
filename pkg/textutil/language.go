/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: language.go
Description: Script based language detection for widget texts. Only the languages the OCR and
translation stages care about are told apart: chinese, japanese, korean and english.
*/

package textutil

import "unicode"

// Languages recognized by DetectLanguage
const (
	LanguageNone     = ""
	LanguageEnglish  = "english"
	LanguageChinese  = "chinese"
	LanguageJapanese = "japanese"
	LanguageKorean   = "korean"
)

func anyRune(s string, pred func(r rune) bool) bool {
	for _, r := range s {
		if pred(r) {
			return true
		}
	}
	return false
}

func isChinese(r rune) bool {
	return r >= 0x4e00 && r <= 0x9fff
}

func isJapanese(r rune) bool {
	return (r >= 0x0800 && r <= 0x4e00) || (r >= 0x3400 && r <= 0x4db5)
}

func isKorean(r rune) bool {
	return (r >= 0x3130 && r <= 0x318f) || (r >= 0xac00 && r <= 0xd7a3)
}

// DetectLanguage guesses the language of text from its scripts. Text without letters
// has no language; anything not chinese, japanese or korean counts as english.
func DetectLanguage(text string) string {
	switch {
	case !anyRune(text, unicode.IsLetter):
		return LanguageNone
	case anyRune(text, isChinese):
		return LanguageChinese
	case anyRune(text, isJapanese):
		return LanguageJapanese
	case anyRune(text, isKorean):
		return LanguageKorean
	default:
		return LanguageEnglish
	}
}

// DefaultLanguage returns the most frequent language over texts, the first seen one on
// ties, and english when no text has a language
func DefaultLanguage(texts []string) string {
	counts := make(map[string]int)
	var order []string
	for _, text := range texts {
		lang := DetectLanguage(text)
		if lang == LanguageNone {
			continue
		}
		if counts[lang] == 0 {
			order = append(order, lang)
		}
		counts[lang]++
	}

	best := LanguageEnglish
	bestCount := 0
	for _, lang := range order {
		if counts[lang] > bestCount {
			best, bestCount = lang, counts[lang]
		}
	}
	return best
}

// IsASCIIOnly reports whether every letter of text is ASCII
func IsASCIIOnly(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) && r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// IsUpper reports whether text has cased letters and none of them is lower case
func IsUpper(text string) bool {
	cased := false
	for _, r := range text {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}

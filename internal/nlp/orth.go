package nlp

import (
	"unicode"
	"unicode/utf8"
)

// Token kinds.
const (
	KindWord        = "word"
	KindNumber      = "number"
	KindPunctuation = "punctuation"
	KindSymbol      = "symbol"
)

// Orthography classes for word tokens.
const (
	OrthUpperInitial = "upperInitial"
	OrthAllCaps      = "allCaps"
	OrthLowercase    = "lowercase"
	OrthMixedCaps    = "mixedCaps"
)

// Kind classifies a token by its characters.
// Any letter makes it a word; otherwise digits make it a number.
func Kind(tok string) string {
	var letters, digits, puncts int
	for _, r := range tok {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r):
			digits++
		case unicode.IsPunct(r):
			puncts++
		}
	}
	switch {
	case letters > 0:
		return KindWord
	case digits > 0:
		return KindNumber
	case puncts > 0:
		return KindPunctuation
	default:
		return KindSymbol
	}
}

// Orth classifies the capitalisation of a word. Non-words return "".
func Orth(tok string) string {
	if Kind(tok) != KindWord {
		return ""
	}

	var upper, lower int
	for _, r := range tok {
		switch {
		case unicode.IsUpper(r):
			upper++
		case unicode.IsLower(r):
			lower++
		}
	}

	first, _ := utf8.DecodeRuneInString(tok)
	switch {
	case lower == 0 && upper > 0:
		return OrthAllCaps
	case upper == 0:
		return OrthLowercase
	case upper == 1 && unicode.IsUpper(first):
		return OrthUpperInitial
	default:
		return OrthMixedCaps
	}
}

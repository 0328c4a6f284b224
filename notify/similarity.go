package notify

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// normalizeText lowercases and collapses all whitespace runs to single
// spaces, so cosmetic reformatting does not defeat the duplicate check.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// tokenize splits a normalized text into its unique word tokens, dropping
// punctuation so that "утро," and "утро?" compare equal.
func tokenize(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, f := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		set[f] = struct{}{}
	}
	return set
}

// tokenOverlap returns |A∩B| / max(|A|,|B|) over the unique token sets of
// two normalized texts. Both empty counts as no overlap.
func tokenOverlap(a, b string) float64 {
	as, bs := tokenize(a), tokenize(b)
	if len(as) == 0 || len(bs) == 0 {
		return 0
	}
	shared := 0
	for tok := range as {
		if _, ok := bs[tok]; ok {
			shared++
		}
	}
	den := len(as)
	if len(bs) > den {
		den = len(bs)
	}
	return float64(shared) / float64(den)
}

package migration

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// locationSuffixes are trailing words dropped when comparing the core of
// two location names.
var locationSuffixes = [][]string{
	{"crown", "court"},
	{"magistrates", "court"},
	{"court"},
}

var foldCase = cases.Fold()

// normalizeName folds a free-text name for comparison: accents are removed,
// case is folded and punctuation collapses into single spaces.
func normalizeName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}
	folded := foldCase.String(stripped)

	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, " ")
}

// coreLocationName strips a trailing court designation from a normalized
// name.
func coreLocationName(normalized string) string {
	words := strings.Fields(normalized)
	for _, suffix := range locationSuffixes {
		if len(words) > len(suffix) && hasSuffixWords(words, suffix) {
			return strings.Join(words[:len(words)-len(suffix)], " ")
		}
	}
	return normalized
}

func hasSuffixWords(words, suffix []string) bool {
	offset := len(words) - len(suffix)
	for i, w := range suffix {
		if words[offset+i] != w {
			return false
		}
	}
	return true
}

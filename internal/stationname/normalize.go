// Package stationname holds the pure string functions used to compare railway
// station names coming from tariff books, tracking records and OpenStreetMap.
package stationname

import (
	"regexp"
	"strings"
	"unicode"
)

var romanToArabic = map[string]string{
	"i": "1", "ii": "2", "iii": "3", "iv": "4", "v": "5",
	"vi": "6", "vii": "7", "viii": "8", "ix": "9", "x": "10",
}

var (
	trailingCodeRe    = regexp.MustCompile(`\s*\(\s*(\d+)\s*\)\s*$`)
	trailingBracketRe = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
	bareCodeRe        = regexp.MustCompile(`^\d{5,6}$`)
	spacesRe          = regexp.MustCompile(`\s+`)
)

// Normalize folds a station name into a key for loose comparison:
// "Кунцево-II" and "кунцево 2" both become "кунцево2".
//
// Roman numerals are converted only when a whole Latin word is a numeral, so
// Latin names such as "Vladivostok" are left intact.
func Normalize(name string) string {
	lower := strings.ToLower(name)

	var b strings.Builder
	b.Grow(len(lower))

	runes := []rune(lower)
	for i := 0; i < len(runes); {
		r := runes[i]
		if isLatin(r) {
			j := i
			for j < len(runes) && isLatin(runes[j]) {
				j++
			}
			word := string(runes[i:j])
			if arabic, ok := romanToArabic[word]; ok {
				b.WriteString(arabic)
			} else {
				b.WriteString(word)
			}
			i = j
			continue
		}
		if isCyrillic(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
		i++
	}
	return b.String()
}

// Equal reports whether two names denote the same station under Normalize.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// StripCode removes a trailing "(<digits>)" annotation and returns the bare
// name together with the code found inside the brackets.
func StripCode(input string) (name, code string) {
	trimmed := strings.TrimSpace(input)
	if m := trailingCodeRe.FindStringSubmatch(trimmed); m != nil {
		name = strings.TrimSpace(trimmed[:len(trimmed)-len(m[0])])
		if name == "" {
			return trimmed, m[1]
		}
		return name, m[1]
	}
	return trimmed, ""
}

// IsCode reports whether s is a bare 5 or 6 digit station code.
func IsCode(s string) bool {
	return bareCodeRe.MatchString(strings.TrimSpace(s))
}

// abbreviations fixes spelling differences between tracking systems and OSM.
var abbreviations = []struct{ from, to string }{
	{"Ё", "Е"},
	{"ЭКСП.", "ЭКСПОРТ"},
	{"ПАСС.", "ПАССАЖИРСКИЙ"},
	{"СОРТ.", "СОРТИРОВОЧНЫЙ"},
	{"ТОВ.", "ТОВАРНЫЙ"},
}

// CleanName strips trailing bracketed annotations such as "(982300)" or
// "(ЭКСП.)", unifies abbreviations and upper-cases the result. It is the key
// used by the corridor tables.
func CleanName(input string) string {
	name := strings.TrimSpace(input)
	for {
		stripped := trailingBracketRe.ReplaceAllString(name, "")
		if stripped == name || stripped == "" {
			break
		}
		name = stripped
	}
	name = strings.ToUpper(name)
	for _, a := range abbreviations {
		name = strings.ReplaceAll(name, a.from, a.to)
	}
	name = spacesRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

func isLatin(r rune) bool {
	return unicode.Is(unicode.Latin, r) && unicode.IsLetter(r)
}

func isCyrillic(r rune) bool {
	return unicode.Is(unicode.Cyrillic, r) && unicode.IsLetter(r)
}

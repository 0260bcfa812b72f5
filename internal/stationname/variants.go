package stationname

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// suffixWords are trailing qualifiers that OSM usually omits from station names.
var suffixWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"ЮЖНЫЙ", "ЮЖНАЯ", "ЮЖНОЕ",
		"СЕВЕРНЫЙ", "СЕВЕРНАЯ", "СЕВЕРНОЕ",
		"ЗАПАДНЫЙ", "ЗАПАДНАЯ", "ЗАПАДНОЕ",
		"ВОСТОЧНЫЙ", "ВОСТОЧНАЯ", "ВОСТОЧНОЕ",
		"ЦЕНТРАЛЬНЫЙ", "ЦЕНТРАЛЬНАЯ", "ЦЕНТРАЛЬНОЕ",
		"ГЛАВНЫЙ", "ГЛАВНАЯ",
		"СОРТИРОВОЧНЫЙ", "СОРТИРОВОЧНАЯ", "СОРТИРОВОЧНОЕ",
		"ПАССАЖИРСКИЙ", "ПАССАЖИРСКАЯ",
		"ТОВАРНЫЙ", "ТОВАРНАЯ",
		"ЭКСПОРТ", "ЭКСПОРТНАЯ", "ПРИСТАНЬ", "ПАРК",
		"SOUTH", "NORTH", "WEST", "EAST", "CENTRAL", "MAIN",
		"SORTING", "PASSENGER", "FREIGHT", "EXPORT", "PIER", "PARK",
	} {
		suffixWords[w] = struct{}{}
	}
}

var (
	trailingWordRe   = regexp.MustCompile(`^(.+?)[\s-]+([^\s-]+)$`)
	trailingNumberRe = regexp.MustCompile(`(?i)^(.+?)([\s-]*)(\d+|\b(?:X|IX|VIII|VII|VI|V|IV|III|II|I))$`)
)

// Variants returns the names to try against a geocoder for one station, most
// specific first: the cleaned name, then forms with trailing qualifiers
// ("СОРТИРОВОЧНАЯ", "ЭКСПОРТ", ...) and trailing numbers removed one at a time.
func Variants(input string) []string {
	base, _ := StripCode(input)
	base = spacesRe.ReplaceAllString(strings.TrimSpace(base), " ")
	if base == "" {
		return nil
	}

	seen := map[string]struct{}{base: {}}
	out := []string{base}

	current := base
	for {
		next, ok := stripTrailingNumber(current)
		if !ok {
			next, ok = stripSuffixWord(current)
		}
		if !ok {
			break
		}
		if _, dup := seen[next]; !dup {
			seen[next] = struct{}{}
			out = append(out, next)
		}
		current = next
	}

	sort.SliceStable(out, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(out[i]), utf8.RuneCountInString(out[j])
		if li != lj {
			return li > lj
		}
		return out[i] < out[j]
	})
	return out
}

func stripSuffixWord(name string) (string, bool) {
	m := trailingWordRe.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	if _, ok := suffixWords[strings.ToUpper(m[2])]; !ok {
		return "", false
	}
	rest := strings.TrimRight(m[1], " -")
	if rest == "" {
		return "", false
	}
	return rest, true
}

func stripTrailingNumber(name string) (string, bool) {
	m := trailingNumberRe.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	// "ХАБАРОВСК2" has no separator, but "МОСКВАII" would lose a real letter run.
	if m[2] == "" && !isDigitSuffix(m[3]) {
		return "", false
	}
	rest := strings.TrimRight(m[1], " -")
	if rest == "" {
		return "", false
	}
	return rest, true
}

func isDigitSuffix(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

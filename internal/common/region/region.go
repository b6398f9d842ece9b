// Package region extracts Chinese administrative-region names from free text.
//
// Extraction is layered: an ordered list of patterns is tried and the first
// pattern with any match wins, taking its longest match. If none match, a
// hyphenated "X-Y市" form is tried, then a broad suffix pattern.
package region

import (
	"regexp"
	"unicode/utf8"
)

var (
	// MultiLevel matches chained regions such as 上海市杨浦区 or 安徽省淮南市.
	MultiLevel = regexp.MustCompile(`([^的在查询]+(?:省|市|区|县|自治区|特别行政区)(?:[^的在查询]*(?:省|市|区|县))*)`)
	Basic      = regexp.MustCompile(`([^的在查询\s]+(?:省|市|区|县))`)
	Autonomous = regexp.MustCompile(`([^的在查询\s]+(?:自治区))`)
	Special    = regexp.MustCompile(`([^的在查询\s]+(?:特别行政区))`)

	Hyphenated = regexp.MustCompile(`([^的在查询\s]+-[^的在查询\s]+(?:省|市|区|县))`)
	Broad      = regexp.MustCompile(`([^的在查询\s]+(?:省|市|区|县|自治区))`)
)

// StandardPatterns is the default ordered pattern list, most specific first.
var StandardPatterns = []*regexp.Regexp{MultiLevel, Basic, Autonomous, Special}

// Municipalities are the province-level cities.
var Municipalities = []string{"北京", "上海", "天津", "重庆"}

// FindAll returns the first capture group of every match of re in s.
func FindAll(re *regexp.Regexp, s string) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		if len(m) > 1 {
			out = append(out, m[1])
		} else {
			out = append(out, m[0])
		}
	}
	return out
}

// Longest returns the candidate with the most runes. Ties keep the earliest.
func Longest(candidates []string) string {
	best := ""
	bestLen := -1
	for _, c := range candidates {
		if n := utf8.RuneCountInString(c); n > bestLen {
			best, bestLen = c, n
		}
	}
	return best
}

// FirstPatternLongest returns the longest match of the first pattern that
// matches s at all, or "".
func FirstPatternLongest(s string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		if matches := FindAll(re, s); len(matches) > 0 {
			return Longest(matches)
		}
	}
	return ""
}

// ExtractCity runs the full layered extraction over patterns.
func ExtractCity(s string, patterns []*regexp.Regexp) string {
	if city := FirstPatternLongest(s, patterns); city != "" {
		return city
	}
	if matches := FindAll(Hyphenated, s); len(matches) > 0 {
		return matches[0]
	}
	return Longest(FindAll(Broad, s))
}

// FindMunicipality returns the first municipality name in s that is followed
// by one of the given suffixes, or by end of text when atEnd is set.
func FindMunicipality(s string, atEnd bool, suffixes ...string) string {
	m, _ := findMunicipalityFrom(s, 0, atEnd, suffixes)
	return m
}

// FindAllMunicipalities is like FindMunicipality but returns every occurrence.
func FindAllMunicipalities(s string, atEnd bool, suffixes ...string) []string {
	var out []string
	for offset := 0; offset < len(s); {
		m, next := findMunicipalityFrom(s, offset, atEnd, suffixes)
		if m == "" {
			break
		}
		out = append(out, m)
		offset = next
	}
	return out
}

func findMunicipalityFrom(s string, offset int, atEnd bool, suffixes []string) (string, int) {
	for i := offset; i < len(s); {
		for _, name := range Municipalities {
			if !hasPrefixAt(s, i, name) {
				continue
			}
			rest := s[i+len(name):]
			if atEnd && rest == "" {
				return name, i + len(name)
			}
			for _, suf := range suffixes {
				if hasPrefixAt(rest, 0, suf) {
					return name, i + len(name)
				}
			}
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return "", len(s)
}

func hasPrefixAt(s string, i int, prefix string) bool {
	return len(s)-i >= len(prefix) && s[i:i+len(prefix)] == prefix
}

// RuneSlice returns runes [from, to) of s, clamped to its length.
func RuneSlice(s string, from, to int) string {
	r := []rune(s)
	if from > len(r) {
		from = len(r)
	}
	if to < 0 || to > len(r) {
		to = len(r)
	}
	return string(r[from:to])
}

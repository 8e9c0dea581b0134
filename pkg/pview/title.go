package pview

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var separatorRun = regexp.MustCompile(`[\s_\-]+`)

// TitleFormatter turns a raw group name into a display title.
type TitleFormatter struct{}

// Format strips prefix (or its hyphen variant) from groupName case-insensitively,
// converts separator runs to single spaces and title-cases the rest. A name
// that is nothing but the prefix is returned unchanged.
func (TitleFormatter) Format(groupName, prefix string) string {
	stripped := strings.TrimSpace(stripPrefix(groupName, prefix))
	if stripped == "" {
		return groupName
	}

	prettified := strings.TrimSpace(separatorRun.ReplaceAllString(stripped, " "))
	if prettified == "" {
		return groupName
	}
	return cases.Title(language.Und).String(prettified)
}

// stripPrefix removes prefix or its hyphen variant from the start of name.
// Matching is on the lowercased name; the cut is made in runes so that
// multi-byte names keep their original casing.
func stripPrefix(name, prefix string) string {
	if prefix == "" {
		return name
	}
	lower := strings.ToLower(name)
	for _, p := range prefixVariants(prefix) {
		if strings.HasPrefix(lower, p) {
			return skipRunes(name, utf8.RuneCountInString(p))
		}
	}
	return name
}

// prefixVariants returns the lowercased prefix followed by its hyphen form.
func prefixVariants(prefix string) []string {
	lower := strings.ToLower(prefix)
	alt := strings.ReplaceAll(lower, "_", "-")
	if alt == lower {
		return []string{lower}
	}
	return []string{lower, alt}
}

// matchesPrefix reports whether name starts with prefix or its hyphen variant,
// ignoring case.
func matchesPrefix(name, prefix string) bool {
	lower := strings.ToLower(name)
	for _, p := range prefixVariants(prefix) {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

func skipRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[i:]
		}
		n--
	}
	return ""
}

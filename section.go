package docgap

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	headingRe   = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)
	codeBlockRe = regexp.MustCompile("(?s)```.*?```")
)

// Section is a heading in a markdown document.
type Section struct {
	Level  int    `json:"level"`
	Title  string `json:"title"`
	Anchor string `json:"anchor"`
}

// ExtractSections returns the H1-H6 headings of a markdown document,
// ignoring anything inside fenced code blocks. Anchors are URL-safe and
// duplicates get numeric suffixes.
func ExtractSections(markdown string) []Section {
	matches := headingRe.FindAllStringSubmatch(codeBlockRe.ReplaceAllString(markdown, ""), -1)
	if len(matches) == 0 {
		return nil
	}

	sections := make([]Section, 0, len(matches))
	used := make(map[string]int)
	for _, m := range matches {
		title := strings.TrimSpace(m[2])
		anchor := slugify(title)
		if n, ok := used[anchor]; ok {
			used[anchor] = n + 1
			anchor += "-" + strconv.Itoa(n)
		} else {
			used[anchor] = 1
		}
		sections = append(sections, Section{Level: len(m[1]), Title: title, Anchor: anchor})
	}
	return sections
}

// FormatOutline renders sections as an indented outline with anchor links
// relative to pageURL. Headings deeper than maxLevel are skipped.
func FormatOutline(pageURL string, sections []Section, maxLevel int) string {
	var sb strings.Builder
	for _, s := range sections {
		if s.Level > maxLevel {
			continue
		}
		sb.WriteString(strings.Repeat("  ", s.Level-1))
		sb.WriteString("- ")
		sb.WriteString(s.Title)
		sb.WriteString(" (")
		sb.WriteString(pageURL)
		sb.WriteString("#")
		sb.WriteString(s.Anchor)
		sb.WriteString(")\n")
	}
	return sb.String()
}

// slugify lower-cases title, joins words with hyphens and drops punctuation.
func slugify(title string) string {
	var sb strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
			hyphen = false
		case unicode.IsSpace(r) || r == '-':
			if !hyphen && sb.Len() > 0 {
				sb.WriteRune('-')
				hyphen = true
			}
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}

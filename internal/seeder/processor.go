package seeder

import (
	"regexp"
	"strings"
	"unicode"
)

// ContentProcessor normalizes insight text before it is stored as feedback.
type ContentProcessor struct {
	multiWhitespace *regexp.Regexp
	htmlTags        *regexp.Regexp
	markdownMarks   *regexp.Regexp
	listBullet      *regexp.Regexp
}

func NewContentProcessor() *ContentProcessor {
	return &ContentProcessor{
		multiWhitespace: regexp.MustCompile(`\s+`),
		htmlTags:        regexp.MustCompile(`<[^>]*>`),
		markdownMarks:   regexp.MustCompile("\\*\\*|__|`"),
		listBullet:      regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+`),
	}
}

// CleanContent strips markup and list bullets and collapses whitespace
// so the same insight always stores as the same text.
func (cp *ContentProcessor) CleanContent(content string) string {
	content = cp.htmlTags.ReplaceAllString(content, "")
	content = cp.markdownMarks.ReplaceAllString(content, "")
	content = cp.listBullet.ReplaceAllString(content, "")
	content = cp.multiWhitespace.ReplaceAllString(content, " ")
	return strings.TrimSpace(content)
}

// CountWords estimates word count in text
func (cp *ContentProcessor) CountWords(text string) int {
	if text == "" {
		return 0
	}

	words := strings.FieldsFunc(text, func(c rune) bool {
		return unicode.IsSpace(c) || unicode.IsPunct(c)
	})

	// Filter out very short "words"
	count := 0
	for _, word := range words {
		if len(strings.TrimSpace(word)) > 1 {
			count++
		}
	}

	return count
}

// removeDuplicates keeps the first occurrence of each key
func removeDuplicates[T any](items []T, key func(T) string) []T {
	seen := make(map[string]bool)
	var result []T

	for _, item := range items {
		k := key(item)
		if !seen[k] {
			seen[k] = true
			result = append(result, item)
		}
	}

	return result
}

// Package text normalizes free text typed by users and produced by the model
// before it is stored or sent.
package text

import (
	"regexp"
	"strings"
)

var (
	// controlChars are ASCII control characters other than \t and \n.
	controlChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)

	// excessNewlines collapses runs of blank lines to one empty line.
	excessNewlines = regexp.MustCompile(`\n{3,}`)

	// invisibles drops zero-width marks and maps exotic spaces and separators
	// to plain ones.
	invisibles = strings.NewReplacer(
		"\u2060", "", // word joiner
		"\uFEFF", "", // byte order mark
		"\u00AD", "", // soft hyphen
		"\u200E", "",
		"\u200F", "",
		"\u200B", "", // zero width space
		"\u2028", "\n",
		"\u2029", "\n\n",
		"\u00A0", " ",
		"\u2009", " ",
		"\u200A", " ",
		"\u202F", " ",
		"\u3000", " ",
	)
)

// Clean normalizes line endings, strips control and invisible characters,
// collapses long runs of blank lines and trims the result. Wording and inner
// spacing are left untouched. A result of "" means the input carried no
// visible text.
func Clean(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = invisibles.Replace(s)
	s = controlChars.ReplaceAllString(s, "")
	s = excessNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// IsBlank reports whether s has no visible text.
func IsBlank(s string) bool {
	return Clean(s) == ""
}

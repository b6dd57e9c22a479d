package parser

import (
	"regexp"

	"golang.org/x/text/unicode/norm"
)

var (
	// Bidirectional and invisible control marks the source channel embeds
	// around Arabic text (LRM, RLM, LRE..PDF).
	bidiMarks = regexp.MustCompile("[‎‏‪-‮]")

	// Markdown emphasis wrapping labels and prices (**text**).
	boldMarkup = regexp.MustCompile(`\*\*(.*?)\*\*`)
)

// Normalize canonicalizes alert text before any extraction strategy runs:
// Unicode NFKC composition, then bidi/invisible mark stripping, then
// emphasis markup removal. Applying it once up front keeps the extraction
// patterns themselves free of cleanup concerns.
func Normalize(text string) string {
	text = norm.NFKC.String(text)
	text = bidiMarks.ReplaceAllString(text, "")
	text = boldMarkup.ReplaceAllString(text, "$1")
	return text
}

package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

// tokenSplitPattern matches the separators between keyword tokens.
var tokenSplitPattern = regexp.MustCompile(`[^a-z0-9_]+`)

// Words splits text on whitespace.
func Words(text string) []string {
	return strings.Fields(text)
}

// WordCount returns len(Words(text)) without allocating the slice.
func WordCount(text string) int {
	count := 0
	inWord := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			inWord = false
			continue
		}
		if !inWord {
			count++
			inWord = true
		}
	}
	return count
}

// Tokenize lowercases text and splits it into alphanumeric tokens.
func Tokenize(text string) []string {
	raw := tokenSplitPattern.Split(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, token := range raw {
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// codeSyntaxChars are the punctuation marks that dominate source listings.
const codeSyntaxChars = "{}()[];:=<>"

// CodeSyntaxCount counts occurrences of code punctuation in text.
func CodeSyntaxCount(text string) int {
	count := 0
	for _, r := range text {
		if strings.ContainsRune(codeSyntaxChars, r) {
			count++
		}
	}
	return count
}

// Slug converts a string to a lowercase filesystem-safe token. Letters and
// digits are kept, hyphens and underscores survive, everything else becomes an
// underscore. Returns "untitled" when nothing usable remains.
func Slug(value string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(value) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "untitled"
	}
	return out
}

package textutil

import "strings"

// Vocabulary is a named, ordered set of single- and multi-word terms.
type Vocabulary struct {
	Name  string
	terms []string
	words map[string]struct{}
}

// NewVocabulary builds a vocabulary; terms are lowercased and tokenized.
func NewVocabulary(name string, terms ...string) Vocabulary {
	v := Vocabulary{Name: name, words: make(map[string]struct{}, len(terms))}
	for _, term := range terms {
		tokens := Tokenize(term)
		if len(tokens) == 0 {
			continue
		}
		joined := strings.Join(tokens, " ")
		v.terms = append(v.terms, joined)
		if len(tokens) == 1 {
			v.words[joined] = struct{}{}
		}
	}
	return v
}

// Terms returns the vocabulary terms in declaration order.
func (v Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Matches returns the distinct vocabulary terms found in text, in declaration order.
func (v Vocabulary) Matches(text string) []string {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	present := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		if _, ok := v.words[token]; ok {
			present[token] = struct{}{}
		}
	}
	var padded string
	var matches []string
	for _, term := range v.terms {
		if !strings.Contains(term, " ") {
			if _, ok := present[term]; ok {
				matches = append(matches, term)
			}
			continue
		}
		if padded == "" {
			padded = " " + strings.Join(tokens, " ") + " "
		}
		if strings.Contains(padded, " "+term+" ") {
			matches = append(matches, term)
		}
	}
	return matches
}

// Present reports whether any term occurs in text.
func (v Vocabulary) Present(text string) bool {
	return len(v.Matches(text)) > 0
}

// CodeKeywords are the programming terms a narrator uses when talking about code.
var CodeKeywords = NewVocabulary("code",
	"function", "method", "class", "variable", "code", "implement", "implementation",
	"algorithm", "loop", "return", "parameter", "argument", "compile", "debug",
	"syntax", "import", "library", "api", "def", "const", "struct", "interface",
	"array", "string", "integer", "boolean", "exception", "callback", "refactor",
)

// SourceKeywords are tokens that show up in source listings read by OCR.
var SourceKeywords = NewVocabulary("source",
	"def", "function", "class", "import", "return", "const", "let", "var",
	"func", "package", "public", "private", "static", "void", "if", "else",
	"for", "while", "struct", "interface", "async", "await", "lambda", "print",
	"console", "select", "from", "where", "include", "namespace",
)

// ArchitectureKeywords are terms used when narrating system structure.
var ArchitectureKeywords = NewVocabulary("architecture",
	"architecture", "diagram", "component", "service", "microservice", "database",
	"server", "client", "system design", "layer", "pipeline", "infrastructure",
	"load balancer", "queue", "cache", "gateway", "data flow", "deployment",
	"cluster", "module", "topology", "backend", "frontend",
)

// Language vocabularies drive the language hint insights.
var (
	PythonKeywords = NewVocabulary("python",
		"python", "def", "pip", "django", "flask", "numpy", "pandas", "self", "elif", "pytest")
	JavaScriptKeywords = NewVocabulary("javascript",
		"javascript", "typescript", "node", "npm", "react", "const", "let", "console", "async", "await", "promise")
	SQLKeywords = NewVocabulary("sql",
		"sql", "select", "query", "join", "where", "insert", "table", "postgres", "mysql", "sqlite")
)

// LanguageVocabularies lists the language vocabularies in reporting order.
var LanguageVocabularies = []Vocabulary{PythonKeywords, JavaScriptKeywords, SQLKeywords}

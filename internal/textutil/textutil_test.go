package textutil

import (
	"reflect"
	"testing"
)

func TestWordCountMatchesFields(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"one",
		"one two\tthree\nfour",
		"  leading and trailing  ",
		"non breaking space",
	}
	for _, text := range tests {
		if got, want := WordCount(text), len(Words(text)); got != want {
			t.Errorf("WordCount(%q) = %d, want %d", text, got, want)
		}
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("def Parse(data):\n  return data.Items[0]")
	want := []string{"def", "parse", "data", "return", "data", "items", "0"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
	if got := Tokenize("  ,.;  "); len(got) != 0 {
		t.Fatalf("expected no tokens, got %v", got)
	}
}

func TestVocabularyMatches(t *testing.T) {
	tests := []struct {
		name  string
		vocab Vocabulary
		text  string
		want  []string
	}{
		{"distinct in declaration order", CodeKeywords, "the Class has a method, the method returns", []string{"method", "class"}},
		{"punctuation ignored", SourceKeywords, "import os\ndef main():", []string{"def", "import"}},
		{"multi word term", ArchitectureKeywords, "a Load-Balancer sits in front", []string{"load balancer"}},
		{"substring is not a match", CodeKeywords, "classification of functionality", nil},
		{"empty text", SQLKeywords, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.vocab.Matches(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVocabularyPresent(t *testing.T) {
	if !ArchitectureKeywords.Present("the database layer") {
		t.Fatal("expected architecture keyword")
	}
	if PythonKeywords.Present("nothing relevant here") {
		t.Fatal("unexpected python keyword")
	}
}

func TestCodeSyntaxCount(t *testing.T) {
	if got := CodeSyntaxCount("if (a[0] == b) { x := 1; }"); got != 11 {
		t.Fatalf("CodeSyntaxCount = %d, want 11", got)
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Intro to Go: Part 1": "intro_to_go__part_1",
		"  ":                  "untitled",
		"--ok--":              "ok",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

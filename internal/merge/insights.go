package merge

import (
	"strings"

	"vidscribe/internal/textutil"
)

// Insight tags, in emission order.
const (
	InsightCodeExplained                 = "code_explained"
	InsightDiagramExplained              = "diagram_explained"
	InsightLanguagePrefix                = "language:"
	InsightVisualWithoutNarration        = "visual_without_narration"
	InsightCodeMentionedNotShown         = "code_mentioned_not_shown"
	InsightArchitectureMentionedNotShown = "architecture_mentioned_not_shown"
	InsightHighPriority                  = "high_priority"
)

var insightDescriptions = map[string]string{
	InsightCodeExplained:                 "Code on screen is discussed in the narration",
	InsightDiagramExplained:              "Diagram on screen is discussed in the narration",
	InsightVisualWithoutNarration:        "Visual content has little or no narration",
	InsightCodeMentionedNotShown:         "Narration mentions code that is not clearly shown",
	InsightArchitectureMentionedNotShown: "Narration describes architecture without a diagram",
	InsightHighPriority:                  "High-value frame for reference",
}

var languageNames = map[string]string{
	"python":     "Python",
	"javascript": "JavaScript",
	"sql":        "SQL",
}

// Describe returns the human description of an insight tag.
func Describe(tag string) string {
	if lang, ok := strings.CutPrefix(tag, InsightLanguagePrefix); ok {
		name := languageNames[lang]
		if name == "" {
			name = lang
		}
		return name + " code likely on screen"
	}
	if desc, ok := insightDescriptions[tag]; ok {
		return desc
	}
	return tag
}

// Insights derives the ordered insight tags for one segment. languageText is
// scanned for language hints when the frame shows code.
func Insights(f Features, languageText string) []string {
	var out []string
	if f.HasCode && f.CodeKeywords {
		out = append(out, InsightCodeExplained)
	}
	if f.HasDiagram && f.ArchitectureKeywords {
		out = append(out, InsightDiagramExplained)
	}
	if f.HasCode {
		for _, vocab := range textutil.LanguageVocabularies {
			if vocab.Present(languageText) {
				out = append(out, InsightLanguagePrefix+vocab.Name)
			}
		}
	}
	if f.visual() && f.WordCount < 10 {
		out = append(out, InsightVisualWithoutNarration)
	}
	if f.CodeKeywords && f.CodeScore < 0.3 {
		out = append(out, InsightCodeMentionedNotShown)
	}
	if f.ArchitectureKeywords && f.DiagramScore < 0.3 {
		out = append(out, InsightArchitectureMentionedNotShown)
	}
	if f.Priority >= 0.7 {
		out = append(out, InsightHighPriority)
	}
	return out
}

package classify

import (
	"context"
	"fmt"

	"vidscribe/internal/textutil"
)

// Reason tags emitted by the scorers.
const (
	ReasonDarkBackground   = "dark_background"
	ReasonTextPattern      = "text_pattern"
	ReasonEditorWindow     = "editor_window"
	ReasonCodeKeywords     = "code_keywords"
	ReasonCodeSyntax       = "code_syntax"
	ReasonOrganizedContent = "organized_content"
	ReasonHighContrast     = "high_contrast_slide"
	ReasonOCRUnavailable   = "ocr_unavailable"
	reasonErrorSuffix      = "_error"
)

// Score is one scorer's capped total and the rules that fired.
type Score struct {
	Value   float64
	Reasons []string
}

// scorer turns image measurements into a score in [0,1].
type scorer interface {
	Name() string
	Score(ctx context.Context, a *analysis) (Score, error)
}

// tally accumulates rule weights in tenths so threshold comparisons are exact.
type tally struct {
	tenths  int
	reasons []string
}

func (t *tally) add(tenths int, reason string) {
	t.tenths += tenths
	t.reasons = append(t.reasons, reason)
}

func (t tally) score() Score {
	if t.tenths > 10 {
		t.tenths = 10
	}
	return Score{Value: float64(t.tenths) / 10, Reasons: t.reasons}
}

// codeSignals are the inputs of the code presence rules.
type codeSignals struct {
	Mean          float64
	EdgeDensity   float64
	LargeContours int
	OCR           bool
	Keywords      int
	SyntaxChars   int
}

func codeScore(s codeSignals) Score {
	var t tally
	if s.Mean < 80 {
		t.add(3, ReasonDarkBackground)
	}
	if s.EdgeDensity > 0.05 && s.EdgeDensity < 0.3 {
		t.add(2, ReasonTextPattern)
	}
	if s.LargeContours >= 1 {
		t.add(2, ReasonEditorWindow)
	}
	if s.OCR {
		if s.Keywords >= 2 {
			t.add(4, ReasonCodeKeywords)
		}
		if s.SyntaxChars >= 5 {
			t.add(2, ReasonCodeSyntax)
		}
	}
	return t.score()
}

// diagramSignals are the inputs of the diagram presence rules.
type diagramSignals struct {
	Shapes      int
	Lines       int
	EdgeDensity float64
	Mean        float64
	StdDev      float64
}

func diagramScore(s diagramSignals) Score {
	var t tally
	if s.Shapes >= 3 {
		t.add(4, fmt.Sprintf("%d_shapes", s.Shapes))
	}
	if s.Lines >= 5 {
		t.add(3, fmt.Sprintf("%d_lines", s.Lines))
	}
	if s.EdgeDensity > 0.02 && s.EdgeDensity < 0.15 {
		t.add(2, ReasonOrganizedContent)
	}
	if s.StdDev > 60 && (s.Mean > 150 || s.Mean < 80) {
		t.add(2, ReasonHighContrast)
	}
	return t.score()
}

// codePresence scores editor-like frames.
type codePresence struct{}

func (codePresence) Name() string { return "code_presence" }

func (codePresence) Score(_ context.Context, a *analysis) (Score, error) {
	mean, _, err := a.brightness()
	if err != nil {
		return Score{}, err
	}
	density, err := a.edgeDensity()
	if err != nil {
		return Score{}, err
	}
	contours, err := a.edgeContours()
	if err != nil {
		return Score{}, err
	}
	large := 0
	for _, c := range contours {
		if c.Area > editorWindowArea {
			large++
		}
	}
	signals := codeSignals{Mean: mean, EdgeDensity: density, LargeContours: large, OCR: a.ocrOK}
	if a.ocrOK {
		signals.Keywords = len(textutil.SourceKeywords.Matches(a.ocrText))
		signals.SyntaxChars = textutil.CodeSyntaxCount(a.ocrText)
	}
	return codeScore(signals), nil
}

// diagramPresence scores slide and diagram frames.
type diagramPresence struct{}

func (diagramPresence) Name() string { return "diagram_presence" }

func (diagramPresence) Score(_ context.Context, a *analysis) (Score, error) {
	contours, err := a.edgeContours()
	if err != nil {
		return Score{}, err
	}
	shapes := 0
	for _, c := range contours {
		if c.IsPolygon() && c.Perimeter > shapeMinPerimeter {
			shapes++
		}
	}
	lines, err := a.lineCount()
	if err != nil {
		return Score{}, err
	}
	density, err := a.edgeDensity()
	if err != nil {
		return Score{}, err
	}
	mean, std, err := a.brightness()
	if err != nil {
		return Score{}, err
	}
	return diagramScore(diagramSignals{
		Shapes:      shapes,
		Lines:       lines,
		EdgeDensity: density,
		Mean:        mean,
		StdDev:      std,
	}), nil
}

package compare

import (
	"github.com/kailas-cloud/dupscan/internal/domain/match"
)

// DefaultThreshold is the minimum inclusive similarity percentage kept.
const DefaultThreshold = 50.0

// Scorer scores two decoded texts in [0, 100].
type Scorer interface {
	ScoreRunes(a, b []rune) float64
}

// Engine compares one pivot document against every later document.
type Engine struct {
	scorer    Scorer
	threshold float64
}

// NewEngine creates an Engine keeping pairs with score >= threshold.
func NewEngine(scorer Scorer, threshold float64) *Engine {
	return &Engine{scorer: scorer, threshold: threshold}
}

// Threshold returns the configured threshold.
func (e *Engine) Threshold() float64 { return e.threshold }

// CompareOne returns the matches between document i and every document j > i.
// Documents without valid text are skipped on either side.
func (e *Engine) CompareOne(c *Corpus, i int) []match.Match {
	matches, _ := e.compareOne(c, i)
	return matches
}

// compareOne also reports how many pairs were scored.
func (e *Engine) compareOne(c *Corpus, i int) ([]match.Match, int) {
	pivot, ok := c.text(i)
	if !ok {
		return nil, 0
	}

	var matches []match.Match
	scored := 0
	for j := i + 1; j < c.Len(); j++ {
		other, ok := c.text(j)
		if !ok {
			continue
		}
		score := e.scorer.ScoreRunes(pivot, other)
		scored++
		if score >= e.threshold {
			matches = append(matches, match.New(c.Document(i), c.Document(j), score))
		}
	}
	return matches, scored
}

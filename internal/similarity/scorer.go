package similarity

import "slices"

// Scorer computes symmetric similarity percentages.
type Scorer struct {
	opts Options
}

// NewScorer creates a Scorer.
func NewScorer(opts Options) *Scorer {
	return &Scorer{opts: opts}
}

// Score returns the similarity of a and b in [0, 100].
func (s *Scorer) Score(a, b string) float64 {
	return s.ScoreRunes([]rune(a), []rune(b))
}

// ScoreRunes is Score over pre-decoded text. The pair is aligned in a fixed
// canonical order (lexicographically smaller text on the left), so
// ScoreRunes(a, b) == ScoreRunes(b, a).
func (s *Scorer) ScoreRunes(a, b []rune) float64 {
	if slices.Compare(a, b) > 0 {
		a, b = b, a
	}
	return ratio(a, b, s.opts)
}

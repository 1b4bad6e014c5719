package similarity

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var samplePairs = [][2]string{
	{"tide", "diet"},
	{"abcd", "bcde"},
	{"alpha beta", "gamma delta"},
	{"the quick brown fox", "the quick brown fox"},
	{"the quick brown fox", "a quick brown dog"},
	{"Haber ajansı açıklama yaptı", "Haber ajansı açıklamada bulundu"},
	{"", "something"},
	{"", ""},
	{strings.Repeat("ab", 150) + "xyz", strings.Repeat("ba", 150) + "xyz"},
}

func TestScore_Symmetry(t *testing.T) {
	for _, opts := range []Options{{}, {AutoJunk: true}} {
		s := NewScorer(opts)
		for _, p := range samplePairs {
			assert.Equalf(t, s.Score(p[0], p[1]), s.Score(p[1], p[0]),
				"score(%q, %q) not symmetric (autojunk=%v)", p[0], p[1], opts.AutoJunk)
		}
	}
}

func TestScore_CanonicalOrder(t *testing.T) {
	s := NewScorer(Options{})
	// "diet" < "tide", so both orders align diet against tide.
	assert.InDelta(t, 50.0, s.Score("tide", "diet"), 1e-9)
	assert.InDelta(t, 50.0, s.Score("diet", "tide"), 1e-9)
}

func TestScore_Identity(t *testing.T) {
	s := NewScorer(Options{AutoJunk: true})
	for _, text := range []string{"a", "the quick brown fox", "çok güzel", strings.Repeat("lorem ipsum ", 40)} {
		assert.Equal(t, 100.0, s.Score(text, text))
	}
}

func TestScore_Range(t *testing.T) {
	s := NewScorer(Options{})
	for _, p := range samplePairs {
		got := s.Score(p[0], p[1])
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 100.0)
	}
}

func TestScore_Deterministic(t *testing.T) {
	s := NewScorer(Options{})
	a := strings.Repeat("abc def ", 30)
	b := strings.Repeat("abd cef ", 30)
	first := s.Score(a, b)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, s.Score(a, b))
	}
}

// Directional ratios from difflib.SequenceMatcher(None, a, b, autojunk=...).ratio()*100.
func TestRatio_DifflibGolden(t *testing.T) {
	tests := []struct {
		a, b            string
		plain, autoJunk float64
	}{
		{"the cat sat on the mat", "the cat sat on a hat", 85.71428571428571, 85.71428571428571},
		{"tide", "diet", 25, 25},
		{strings.Repeat("ab", 150) + "xyz", strings.Repeat("ba", 150) + "xyz", 99.66996699669967, 0.9900990099009901},
		{strings.Repeat("ba", 150) + "xyz", strings.Repeat("ab", 150) + "xyz", 99.66996699669967, 0.9900990099009901},
		{strings.Repeat("lorem ipsum ", 20), strings.Repeat("lorem ipsam ", 20), 91.66666666666666, 3.75},
		{strings.Repeat("a", 10) + "bcdef", strings.Repeat("a", 250) + "bcdef", 11.11111111111111, 11.11111111111111},
		{strings.Repeat("abc def ", 30), strings.Repeat("abd cef ", 30), 75, 0.8333333333333334},
		{"çok güzel bir gün " + strings.Repeat("x", 5), strings.Repeat("çok güzel bir gün ", 12), 15.062761506276152, 15.062761506276152},
	}
	for _, tc := range tests {
		a, b := []rune(tc.a), []rune(tc.b)
		assert.InDeltaf(t, tc.plain, ratio(a, b, Options{}), 1e-9, "ratio(%.20q, %.20q)", tc.a, tc.b)
		assert.InDeltaf(t, tc.autoJunk, ratio(a, b, Options{AutoJunk: true}), 1e-9,
			"ratio(%.20q, %.20q) with autojunk", tc.a, tc.b)
	}
}

func randomText(r *rand.Rand, alphabet []rune, maxLen int) []rune {
	out := make([]rune, r.IntN(maxLen+1))
	for i := range out {
		out[i] = alphabet[r.IntN(len(alphabet))]
	}
	return out
}

func TestScore_RandomizedProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	// Few distinct runes and lengths past 200 so blocks repeat and AutoJunk kicks in.
	alphabet := []rune("ab cç")

	for _, opts := range []Options{{}, {AutoJunk: true}} {
		s := NewScorer(opts)
		for range 500 {
			a := randomText(r, alphabet, 260)
			b := randomText(r, alphabet, 260)
			if r.IntN(4) == 0 {
				// shared prefix to get high scores too
				b = append(slices.Clone(a[:len(a)/2]), b...)
			}

			ab, ba := s.ScoreRunes(a, b), s.ScoreRunes(b, a)
			if ab != ba {
				t.Fatalf("not symmetric (autojunk=%v): %v vs %v for %q / %q", opts.AutoJunk, ab, ba, string(a), string(b))
			}
			if ab < 0 || ab > 100 {
				t.Fatalf("score %v out of range for %q / %q", ab, string(a), string(b))
			}
			if got := s.ScoreRunes(a, a); got != 100 {
				t.Fatalf("self score %v for %q", got, string(a))
			}

			lo, hi := a, b
			if slices.Compare(lo, hi) > 0 {
				lo, hi = hi, lo
			}
			if want := ratio(lo, hi, opts); ab != want {
				t.Fatalf("score %v, canonical ratio %v", ab, want)
			}
		}
	}
}

func TestMatchingBlocks_RandomizedInvariants(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	alphabet := []rune("abc ")

	for range 300 {
		a := randomText(r, alphabet, 240)
		b := randomText(r, alphabet, 240)
		blocks := newMatcher(a, b, Options{AutoJunk: true}).blocks()

		prevA, prevB := 0, 0
		for _, blk := range blocks {
			if blk.A < prevA || blk.B < prevB {
				t.Fatalf("blocks overlap or go backwards: %+v", blocks)
			}
			if !slices.Equal(a[blk.A:blk.A+blk.Size], b[blk.B:blk.B+blk.Size]) {
				t.Fatalf("block %+v does not match", blk)
			}
			prevA, prevB = blk.A+blk.Size, blk.B+blk.Size
		}
	}
}

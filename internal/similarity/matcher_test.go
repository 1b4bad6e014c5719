package similarity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Expected values cross-checked against difflib.SequenceMatcher(autojunk=False).
func TestRatio_KnownValues(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"abcd", "bcde", 75},
		{"tide", "diet", 25},
		{"diet", "tide", 50},
		{"alpha beta", "gamma delta", 57.14285714285714},
		{"the quick brown fox", "the quick brown fax", 94.73684210526315},
		{"Haber ajansı açıklama yaptı", "Haber ajansı açıklamada bulundu", 75.86206896551724},
		{"abxcd", "abcd", 88.88888888888889},
		{"qabxcd", "abycdf", 66.66666666666666},
		{"", "", 100},
		{"abc", "", 0},
		{"", "abc", 0},
		{"abc", "xyz", 0},
	}
	for _, tc := range tests {
		t.Run(tc.a+"|"+tc.b, func(t *testing.T) {
			assert.InDelta(t, tc.want, Ratio(tc.a, tc.b), 1e-9)
		})
	}
}

func TestMatchingBlocks(t *testing.T) {
	tests := []struct {
		a, b string
		want []Block
	}{
		{"abcd", "bcde", []Block{{A: 1, B: 0, Size: 3}}},
		{"diet", "tide", []Block{{A: 0, B: 2, Size: 1}, {A: 2, B: 3, Size: 1}}},
		{"alpha beta", "gamma delta", []Block{
			{A: 0, B: 1, Size: 1},
			{A: 4, B: 4, Size: 2},
			{A: 7, B: 7, Size: 1},
			{A: 8, B: 9, Size: 2},
		}},
		{"abxcd", "abcd", []Block{{A: 0, B: 0, Size: 2}, {A: 3, B: 2, Size: 2}}},
		// offsets are runes, not bytes
		{"Haber ajansı açıklama yaptı", "Haber ajansı açıklamada bulundu", []Block{
			{A: 0, B: 0, Size: 21},
			{A: 21, B: 23, Size: 1},
		}},
	}
	for _, tc := range tests {
		t.Run(tc.a+"|"+tc.b, func(t *testing.T) {
			assert.Equal(t, tc.want, MatchingBlocks(tc.a, tc.b, Options{}))
		})
	}
}

func TestMatchingBlocks_Disjoint(t *testing.T) {
	assert.Empty(t, MatchingBlocks("abc", "xyz", Options{}))
}

func TestLongest_PrefersEarliestInAThenB(t *testing.T) {
	// "ab" occurs twice in each text; the leftmost pair must win.
	m := newMatcher([]rune("ab-ab"), []rune("ab+ab"), Options{})
	got := m.longest(0, 5, 0, 5)
	assert.Equal(t, Block{A: 0, B: 0, Size: 2}, got)

	m = newMatcher([]rune("xab"), []rune("ab-ab"), Options{})
	got = m.longest(0, 3, 0, 5)
	assert.Equal(t, Block{A: 1, B: 0, Size: 2}, got)
}

func TestLongest_ReusableAcrossCalls(t *testing.T) {
	// Row buffers are shared between calls and must come back clean.
	m := newMatcher([]rune("abcabc"), []rune("abcabc"), Options{})
	first := m.longest(0, 6, 0, 6)
	second := m.longest(0, 6, 0, 6)
	assert.Equal(t, first, second)
	for i, v := range m.prev {
		assert.Zerof(t, v, "prev[%d] not cleared", i)
	}
	for i, v := range m.cur {
		assert.Zerof(t, v, "cur[%d] not cleared", i)
	}
}

func TestAutoJunk(t *testing.T) {
	a := strings.Repeat("ab", 150) + "xyz"
	b := strings.Repeat("ba", 150) + "xyz"

	plain := newMatcher([]rune(a), []rune(b), Options{})
	junk := newMatcher([]rune(a), []rune(b), Options{AutoJunk: true})

	assert.InDelta(t, 99.66996699669967, ratio([]rune(a), []rune(b), Options{}), 1e-9)
	assert.InDelta(t, 0.9900990099009901, ratio([]rune(a), []rune(b), Options{AutoJunk: true}), 1e-9)
	assert.Len(t, plain.b2j, 5)
	assert.Len(t, junk.b2j, 3, "popular runes a and b must be dropped")
}

func TestAutoJunk_ShortTextUnaffected(t *testing.T) {
	a := strings.Repeat("ab", 50)
	b := strings.Repeat("ba", 50)
	assert.Equal(t,
		ratio([]rune(a), []rune(b), Options{}),
		ratio([]rune(a), []rune(b), Options{AutoJunk: true}),
	)
}

func TestAutoJunk_AllPopular(t *testing.T) {
	a := strings.Repeat("the cat sat on the mat. ", 10)
	b := strings.Repeat("a dog sat on the log. ", 10)
	assert.InDelta(t, 65.21739130434783, ratio([]rune(a), []rune(b), Options{}), 1e-9)
	assert.Zero(t, ratio([]rune(a), []rune(b), Options{AutoJunk: true}))
}

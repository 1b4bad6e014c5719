package compare

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domdoc "github.com/kailas-cloud/dupscan/internal/domain/document"
	"github.com/kailas-cloud/dupscan/internal/similarity"
)

func doc(id, text string) domdoc.Document {
	return domdoc.New(id, "ext-"+id, "https://news.example/"+id, domdoc.TextOf(text))
}

func docNoText(id string) domdoc.Document {
	return domdoc.New(id, "ext-"+id, "https://news.example/"+id, domdoc.MissingText())
}

func newTestEngine(threshold float64) *Engine {
	return NewEngine(similarity.NewScorer(similarity.Options{}), threshold)
}

func TestCompareOne_IdenticalPair(t *testing.T) {
	c := NewCorpus([]domdoc.Document{doc("1", "the quick brown fox"), doc("2", "the quick brown fox")})

	got := newTestEngine(50).CompareOne(c, 0)

	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].A.ID)
	assert.Equal(t, "2", got[0].B.ID)
	assert.Equal(t, "ext-1", got[0].A.ExternalID)
	assert.Equal(t, "https://news.example/2", got[0].B.Origin)
	assert.Equal(t, 100.0, got[0].Score)
}

func TestCompareOne_LowOverlap(t *testing.T) {
	c := NewCorpus([]domdoc.Document{doc("1", "alpha beta"), doc("2", "xyz qrs")})
	assert.Empty(t, newTestEngine(50).CompareOne(c, 0))
}

func TestCompareOne_ShortTextsShareBlocks(t *testing.T) {
	// "a", "a ", "e" and "ta" align: 2*6/21.
	c := NewCorpus([]domdoc.Document{doc("1", "alpha beta"), doc("2", "gamma delta")})
	got := newTestEngine(50).CompareOne(c, 0)
	require.Len(t, got, 1)
	assert.InDelta(t, 57.142857142857, got[0].Score, 1e-9)
}

func TestCompareOne_OnlyLaterIndices(t *testing.T) {
	c := NewCorpus([]domdoc.Document{doc("1", "same"), doc("2", "same"), doc("3", "same")})
	e := newTestEngine(1)

	assert.Len(t, e.CompareOne(c, 0), 2)
	assert.Len(t, e.CompareOne(c, 1), 1)
	assert.Empty(t, e.CompareOne(c, 2), "last index has nothing after it")
}

func TestCompareOne_PivotWithoutText(t *testing.T) {
	c := NewCorpus([]domdoc.Document{docNoText("1"), doc("2", "x"), doc("3", "x")})
	matches, scored := newTestEngine(1).compareOne(c, 0)
	assert.Empty(t, matches)
	assert.Zero(t, scored)
}

func TestCompareOne_SkipsLaterDocumentWithoutText(t *testing.T) {
	c := NewCorpus([]domdoc.Document{doc("1", "x"), docNoText("2"), doc("3", "x")})
	matches, scored := newTestEngine(1).compareOne(c, 0)

	require.Len(t, matches, 1)
	assert.Equal(t, "3", matches[0].B.ID)
	assert.Equal(t, 1, scored)
}

func TestCompareOne_ThresholdInclusive(t *testing.T) {
	// abcd vs bcde scores exactly 75.
	c := NewCorpus([]domdoc.Document{doc("1", "abcd"), doc("2", "bcde")})

	assert.Len(t, newTestEngine(75).CompareOne(c, 0), 1)
	assert.Empty(t, newTestEngine(75.0001).CompareOne(c, 0))
}

func TestCompareOne_ThresholdFilter(t *testing.T) {
	texts := []string{
		"the quick brown fox jumps",
		"the quick brown fox leaps",
		"a slow green turtle walks",
		"the quick red fox jumps",
		"completely unrelated words",
	}
	docs := make([]domdoc.Document, len(texts))
	for i, text := range texts {
		docs[i] = doc(fmt.Sprint(i), text)
	}
	c := NewCorpus(docs)
	scorer := similarity.NewScorer(similarity.Options{})
	e := NewEngine(scorer, 60)

	for i := range texts {
		kept := map[string]bool{}
		for _, m := range e.CompareOne(c, i) {
			assert.GreaterOrEqual(t, m.Score, 60.0)
			kept[m.B.ID] = true
		}
		for j := i + 1; j < len(texts); j++ {
			score := scorer.Score(texts[i], texts[j])
			assert.Equalf(t, score >= 60, kept[fmt.Sprint(j)], "pair (%d,%d) score %.2f", i, j, score)
		}
	}
}

func TestNewCorpus_Snapshot(t *testing.T) {
	docs := []domdoc.Document{doc("1", "a"), docNoText("2")}
	c := NewCorpus(docs)
	docs[0] = doc("changed", "b")

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 1, c.Excluded())
	assert.Equal(t, "1", c.Document(0).ID(), "corpus must not alias the caller's slice")
}

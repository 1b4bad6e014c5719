// Package similarity scores text pairs with longest-matching-block sequence
// alignment (Ratcliff/Obershelp), the same measure difflib's SequenceMatcher
// reports as ratio().
package similarity

import (
	"cmp"
	"slices"
)

// autoJunkMinLen is the right-hand length from which AutoJunk applies.
const autoJunkMinLen = 200

// Block is a matching block: a[A:A+Size] equals b[B:B+Size].
type Block struct {
	A, B, Size int
}

// Options tunes the matcher.
type Options struct {
	// AutoJunk marks runes that occur more than len(b)/100+1 times in a
	// right-hand text of at least 200 runes as popular. Popular runes never
	// seed a match; they are only picked up by extending a neighbouring one.
	AutoJunk bool
}

// matcher aligns a against b. Not safe for concurrent use.
type matcher struct {
	a, b []rune
	b2j  map[rune][]int

	// Two rows of run lengths indexed by j+1, plus the entries each row set,
	// so rows are cleared in O(touched) instead of O(len(b)).
	prev, cur               []int
	prevTouched, curTouched []int
}

func newMatcher(a, b []rune, opts Options) *matcher {
	m := &matcher{
		a:    a,
		b:    b,
		b2j:  make(map[rune][]int),
		prev: make([]int, len(b)+1),
		cur:  make([]int, len(b)+1),
	}
	for j, r := range b {
		m.b2j[r] = append(m.b2j[r], j)
	}
	if opts.AutoJunk && len(b) >= autoJunkMinLen {
		ntest := len(b)/100 + 1
		for r, idx := range m.b2j {
			if len(idx) > ntest {
				delete(m.b2j, r)
			}
		}
	}
	return m
}

// longest finds the longest matching block in a[alo:ahi] and b[blo:bhi].
// Ties go to the block starting earliest in a, then earliest in b.
func (m *matcher) longest(alo, ahi, blo, bhi int) Block {
	besti, bestj, bestSize := alo, blo, 0

	prev, cur := m.prev, m.cur
	prevT, curT := m.prevTouched[:0], m.curTouched[:0]

	for i := alo; i < ahi; i++ {
		curT = curT[:0]
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := prev[j] + 1
			cur[j+1] = k
			curT = append(curT, j+1)
			if k > bestSize {
				besti, bestj, bestSize = i-k+1, j-k+1, k
			}
		}
		for _, t := range prevT {
			prev[t] = 0
		}
		prev, cur = cur, prev
		prevT, curT = curT, prevT
	}
	for _, t := range prevT {
		prev[t] = 0
	}
	m.prev, m.cur = prev, cur
	m.prevTouched, m.curTouched = prevT, curT

	// Popular runes were left out of b2j; pull equal neighbours back in.
	for besti > alo && bestj > blo && m.a[besti-1] == m.b[bestj-1] {
		besti, bestj, bestSize = besti-1, bestj-1, bestSize+1
	}
	for besti+bestSize < ahi && bestj+bestSize < bhi &&
		m.a[besti+bestSize] == m.b[bestj+bestSize] {
		bestSize++
	}

	return Block{A: besti, B: bestj, Size: bestSize}
}

// blocks returns all matching blocks ordered by position, adjacent blocks merged.
func (m *matcher) blocks() []Block {
	type span struct{ alo, ahi, blo, bhi int }

	var found []Block
	queue := []span{{0, len(m.a), 0, len(m.b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		x := m.longest(s.alo, s.ahi, s.blo, s.bhi)
		if x.Size == 0 {
			continue
		}
		found = append(found, x)
		if s.alo < x.A && s.blo < x.B {
			queue = append(queue, span{s.alo, x.A, s.blo, x.B})
		}
		if x.A+x.Size < s.ahi && x.B+x.Size < s.bhi {
			queue = append(queue, span{x.A + x.Size, s.ahi, x.B + x.Size, s.bhi})
		}
	}

	slices.SortFunc(found, func(x, y Block) int {
		if c := cmp.Compare(x.A, y.A); c != 0 {
			return c
		}
		return cmp.Compare(x.B, y.B)
	})

	merged := found[:0]
	for _, blk := range found {
		if n := len(merged); n > 0 {
			last := &merged[n-1]
			if last.A+last.Size == blk.A && last.B+last.Size == blk.B {
				last.Size += blk.Size
				continue
			}
		}
		merged = append(merged, blk)
	}
	return merged
}

// MatchingBlocks returns the matching blocks between a and b in rune offsets.
func MatchingBlocks(a, b string, opts Options) []Block {
	return newMatcher([]rune(a), []rune(b), opts).blocks()
}

// Ratio returns 2*M/T*100 for a aligned against b, where M is the total size
// of the matching blocks and T the combined rune length. Two empty texts are
// identical (100). Ratio is directional: Ratio(a, b) may differ from Ratio(b, a).
func Ratio(a, b string) float64 {
	return ratio([]rune(a), []rune(b), Options{})
}

func ratio(a, b []rune, opts Options) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if slices.Equal(a, b) {
		return 100
	}

	matched := 0
	for _, blk := range newMatcher(a, b, opts).blocks() {
		matched += blk.Size
	}
	return 2.0 * float64(matched) / float64(total) * 100
}

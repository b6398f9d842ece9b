// Package textsim scores how similar a user question is to a stored one.
//
// Ratio is the gestalt pattern matching ratio: twice the number of matched
// runes over the total rune count, where matches are found by recursively
// taking the longest common contiguous block and recursing on both sides.
package textsim

import (
	"regexp"
	"sort"
	"strings"
)

const (
	SequenceWeight = 0.7
	KeywordWeight  = 0.3
)

var hanRun = regexp.MustCompile(`[\x{4e00}-\x{9fff}]+`)

// Similarity blends the case-insensitive sequence ratio with the Jaccard
// overlap of CJK character runs. When either side has no CJK run only the
// sequence ratio is used.
func Similarity(query, question string) float64 {
	score := Ratio(strings.ToLower(query), strings.ToLower(question))

	qk := Keywords(query)
	sk := Keywords(question)
	if len(qk) > 0 && len(sk) > 0 {
		score = score*SequenceWeight + Jaccard(qk, sk)*KeywordWeight
	}
	return score
}

// Keywords returns the set of maximal CJK character runs in s.
func Keywords(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, m := range hanRun.FindAllString(s, -1) {
		set[m] = struct{}{}
	}
	return set
}

// Jaccard returns |a∩b| / |a∪b|, or 0 when both are empty.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// Ratio returns the matching ratio of a and b in [0, 1]. Two empty strings are
// identical.
func Ratio(a, b string) float64 {
	m := newMatcher([]rune(a), []rune(b))
	total := len(m.a) + len(m.b)
	if total == 0 {
		return 1.0
	}
	matches := 0
	for _, blk := range m.matchingBlocks() {
		matches += blk.size
	}
	return 2.0 * float64(matches) / float64(total)
}

// Match is a common block: a[A:A+Size] == b[B:B+Size].
type Match struct {
	A, B, Size int
}

// MatchingBlocks returns the common blocks of a and b ordered by position.
func MatchingBlocks(a, b string) []Match {
	m := newMatcher([]rune(a), []rune(b))
	blocks := m.matchingBlocks()
	out := make([]Match, len(blocks))
	for i, blk := range blocks {
		out[i] = Match{A: blk.i, B: blk.j, Size: blk.size}
	}
	return out
}

type block struct {
	i, j, size int
}

type matcher struct {
	a, b []rune
	b2j  map[rune][]int
	// popular runes are dropped from b2j for long b; they can still extend a
	// match at its edges.
	popular map[rune]struct{}
}

func newMatcher(a, b []rune) *matcher {
	m := &matcher{a: a, b: b, b2j: make(map[rune][]int), popular: make(map[rune]struct{})}
	for j, r := range b {
		m.b2j[r] = append(m.b2j[r], j)
	}

	n := len(b)
	if n >= 200 {
		ntest := n/100 + 1
		for r, idxs := range m.b2j {
			if len(idxs) > ntest {
				m.popular[r] = struct{}{}
				delete(m.b2j, r)
			}
		}
	}
	return m
}

func (m *matcher) findLongestMatch(alo, ahi, blo, bhi int) block {
	besti, bestj, bestsize := alo, blo, 0

	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		newj2len := map[int]int{}
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}

	for besti > alo && bestj > blo && m.a[besti-1] == m.b[bestj-1] {
		besti, bestj, bestsize = besti-1, bestj-1, bestsize+1
	}
	for besti+bestsize < ahi && bestj+bestsize < bhi && m.a[besti+bestsize] == m.b[bestj+bestsize] {
		bestsize++
	}

	return block{besti, bestj, bestsize}
}

func (m *matcher) matchingBlocks() []block {
	type span struct{ alo, ahi, blo, bhi int }

	var blocks []block
	queue := []span{{0, len(m.a), 0, len(m.b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		x := m.findLongestMatch(s.alo, s.ahi, s.blo, s.bhi)
		if x.size == 0 {
			continue
		}
		blocks = append(blocks, x)
		if s.alo < x.i && s.blo < x.j {
			queue = append(queue, span{s.alo, x.i, s.blo, x.j})
		}
		if x.i+x.size < s.ahi && x.j+x.size < s.bhi {
			queue = append(queue, span{x.i + x.size, s.ahi, x.j + x.size, s.bhi})
		}
	}

	sort.Slice(blocks, func(p, q int) bool {
		if blocks[p].i != blocks[q].i {
			return blocks[p].i < blocks[q].i
		}
		return blocks[p].j < blocks[q].j
	})

	// merge adjacent blocks
	var merged []block
	for _, blk := range blocks {
		if n := len(merged); n > 0 {
			last := &merged[n-1]
			if last.i+last.size == blk.i && last.j+last.size == blk.j {
				last.size += blk.size
				continue
			}
		}
		merged = append(merged, blk)
	}
	return merged
}

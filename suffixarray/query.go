// Copyright © the gomummer contributors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package suffixarray

import (
	"bytes"

	"github.com/mummer4/gomummer/core"
)

// Index is a compact suffix array over a single text. It supports the
// search and self-check operations spec.md §4.1.1 requires and is
// immutable once built.
type Index struct {
	text []byte
	sa   []int32
}

// New builds a suffix array over text.
func New(text []byte) *Index {
	return &Index{text: text, sa: Build(text)}
}

// SA returns the underlying suffix array permutation.
func (x *Index) SA() []int32 { return x.sa }

// Text returns the indexed text.
func (x *Index) Text() []byte { return x.text }

func suffixAt(text []byte, sa []int32, i int) []byte {
	return text[sa[i]:]
}

// compareSuffix compares pattern against the suffix at sa[i], resuming
// from an already-known common prefix length of skip bytes, and returns
// the comparison result together with the new common-prefix length.
func compareSuffix(text []byte, sa []int32, i int, pattern []byte, skip int) (cmp int, lcp int) {
	suf := suffixAt(text, sa, i)
	n := len(suf)
	m := len(pattern)
	k := skip
	for k < n && k < m {
		if suf[k] != pattern[k] {
			if suf[k] < pattern[k] {
				return -1, k
			}
			return 1, k
		}
		k++
	}
	switch {
	case n == m:
		return 0, k
	case n < m:
		return -1, k
	default:
		return 1, k
	}
}

// Search returns the number of occurrences of pattern in the indexed text
// and the index into SA of the first (lexicographically smallest) match.
// It uses two binary searches seeded with the lcp of pattern against the
// current search boundaries (lmatch/rmatch), resuming each comparison from
// min(lmatch, rmatch) so the whole search runs in O(m + log n). Search
// returns a BadArgs error if pattern is empty or the index is nil.
func (x *Index) Search(pattern []byte) (count, first int, err error) {
	if x == nil {
		return 0, 0, core.New(core.Suffix, core.BadArgs, "nil index")
	}
	if len(pattern) == 0 {
		return 0, 0, core.New(core.Suffix, core.BadArgs, "empty pattern")
	}
	n := len(x.sa)
	if n == 0 {
		return 0, 0, nil
	}

	lo := x.lowerBound(pattern)
	if lo >= n || !bytes.HasPrefix(suffixAt(x.text, x.sa, lo), pattern) {
		return 0, 0, nil
	}
	up := x.upperBound(pattern)
	return up - lo, lo, nil
}

// lowerBound returns the smallest index i such that suffix(sa[i]) >=
// pattern lexicographically (or n if none).
func (x *Index) lowerBound(pattern []byte) int {
	n := len(x.sa)
	lo, hi := 0, n
	lmatch, rmatch := 0, 0
	// boundary lcp against sa[0] (virtual -inf) and sa[n] (virtual +inf)
	// are both zero, matching the standard lcp-memoized binary search.
	for lo < hi {
		mid := (lo + hi) / 2
		skip := lmatch
		if rmatch < lmatch {
			skip = rmatch
		}
		cmp, lcp := compareSuffix(x.text, x.sa, mid, pattern, skip)
		if cmp < 0 {
			lo = mid + 1
			lmatch = lcp
		} else {
			hi = mid
			rmatch = lcp
		}
	}
	return lo
}

// upperBound returns one past the largest index i such that
// pattern is a prefix of suffix(sa[i]).
func (x *Index) upperBound(pattern []byte) int {
	n := len(x.sa)
	lo, hi := 0, n
	lmatch, rmatch := 0, 0
	for lo < hi {
		mid := (lo + hi) / 2
		skip := lmatch
		if rmatch < lmatch {
			skip = rmatch
		}
		suf := suffixAt(x.text, x.sa, mid)
		var cmp, lcp int
		if bytes.HasPrefix(suf, pattern) {
			cmp, lcp = -1, len(pattern)
		} else {
			cmp, lcp = compareSuffix(x.text, x.sa, mid, pattern, skip)
			if cmp == 0 {
				cmp = -1
			}
		}
		if cmp < 0 {
			lo = mid + 1
			lmatch = lcp
		} else {
			hi = mid
			rmatch = lcp
		}
	}
	return lo
}

// SearchChar returns the number of suffixes beginning with c, specialized
// to depth 1 of the same split binary search Search uses.
func (x *Index) SearchChar(c byte) int {
	if x == nil || len(x.sa) == 0 {
		return 0
	}
	return x.upperBound([]byte{c}) - x.lowerBound([]byte{c})
}

// Check verifies, in O(n), that sa is a valid suffix array of text: (a)
// every entry lies in [0,n) and sa is a permutation, (b) the
// first-character order is monotone, and (c) the inverse-permutation
// consistency holds — where two suffixes share a first character, the
// rank of the pair of suffixes one position further in (the
// "previous-character rule", read from the predecessor's side) must
// already agree with their order, so the whole array is verified without
// ever doing a full suffix-to-suffix byte comparison.
func Check(text []byte, sa []int32) core.CheckResult {
	n := len(text)
	if len(sa) != n {
		return core.OutOfRange
	}
	if n == 0 {
		return core.Ok
	}

	rank := make([]int32, n)
	seen := make([]bool, n)
	for i, v := range sa {
		if v < 0 || int(v) >= n {
			return core.OutOfRange
		}
		if seen[v] {
			return core.WrongPosition
		}
		seen[v] = true
		rank[v] = int32(i)
	}

	for i := 0; i < n-1; i++ {
		a, b := int(sa[i]), int(sa[i+1])
		if text[a] > text[b] {
			return core.WrongOrder
		}
		if text[a] < text[b] {
			continue
		}
		// Same leading character: order must be decided by the
		// suffixes one position further along, i.e. by rank.
		switch {
		case a+1 == n:
			// Suffix a is exhausted (the empty string), which is
			// always smaller than any nonempty continuation.
		case b+1 == n:
			return core.WrongOrder
		case rank[a+1] >= rank[b+1]:
			return core.WrongOrder
		}
	}

	// Inverse-permutation consistency: following the previous-character
	// rule from each non-zero suffix start must land back on its
	// predecessor.
	for _, v := range sa {
		if v == 0 {
			continue
		}
		iPrime := rank[v-1]
		if sa[iPrime] != v-1 {
			return core.WrongPosition
		}
	}
	return core.Ok
}

// Copyright © the gomummer contributors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package suffixarray

// This file implements the induced-sort construction spec.md §4.1.1 calls
// for: a right-to-left type classification into type A (descending) and
// type B (non-descending) positions, with B* positions (a type B position
// immediately preceded by a type A position) as the pivot class; the B*
// substrings are sorted and named, the named sequence is recursively
// suffix-sorted when names are not already unique (this stands in for the
// tandem-repeat / Larsson–Sadakane pass the design notes describe — both
// are the same idea, refining an under-determined order by doubling the
// amount of context considered), and the result is used to induce the
// B-type and then A-type suffixes into their final positions. This is the
// SA-IS family of algorithm that divsufsort itself belongs to.

// classify fills t with true for type B (non-descending) positions and
// false for type A (descending) positions, scanning s (length n, already
// including the terminal sentinel) from right to left.
func classify(s []int32, n int, t []bool) {
	t[n-1] = true // sentinel is type B by convention.
	if n == 1 {
		return
	}
	for i := n - 2; i >= 0; i-- {
		if s[i] < s[i+1] {
			t[i] = true
		} else if s[i] > s[i+1] {
			t[i] = false
		} else {
			t[i] = t[i+1]
		}
	}
}

// isBStar reports whether position i is a B* position: type B and
// immediately preceded by a type A position.
func isBStar(t []bool, i int) bool {
	return i > 0 && t[i] && !t[i-1]
}

// getBuckets computes, for each symbol value 0..K-1, the index one past
// the end of its bucket (end=true) or the start of its bucket (end=false)
// in a suffix array of s.
func getBuckets(s []int32, bucket []int32, n, K int, end bool) {
	for i := range bucket[:K] {
		bucket[i] = 0
	}
	for i := 0; i < n; i++ {
		bucket[s[i]]++
	}
	sum := int32(0)
	for i := 0; i < K; i++ {
		sum += bucket[i]
		if end {
			bucket[i] = sum
		} else {
			bucket[i] = sum - bucket[i]
		}
	}
}

// induceSortL scans left to right placing type A (L-type) suffixes
// immediately after the B* suffixes already seeded into SA.
func induceSortL(s []int32, SA []int32, t []bool, bucket []int32, n, K int) {
	getBuckets(s, bucket, n, K, false)
	for i := 0; i < n; i++ {
		j := SA[i] - 1
		if SA[i] <= 0 || j < 0 {
			continue
		}
		if !t[j] {
			SA[bucket[s[j]]] = j
			bucket[s[j]]++
		}
	}
}

// induceSortS scans right to left placing type B (S-type) suffixes.
func induceSortS(s []int32, SA []int32, t []bool, bucket []int32, n, K int) {
	getBuckets(s, bucket, n, K, true)
	for i := n - 1; i >= 0; i-- {
		j := SA[i] - 1
		if SA[i] <= 0 || j < 0 {
			continue
		}
		if t[j] {
			bucket[s[j]]--
			SA[bucket[s[j]]] = j
		}
	}
}

// sais computes the suffix array of s[0:n] (an alphabet of size K, symbols
// 0..K-1, with s[n-1] the unique smallest sentinel) into SA, which must
// have length n.
func sais(s []int32, SA []int32, n, K int) {
	if n == 1 {
		SA[0] = 0
		return
	}
	if n == 0 {
		return
	}

	t := make([]bool, n)
	classify(s, n, t)

	bucket := make([]int32, K)

	for i := range SA {
		SA[i] = -1
	}

	// Seed B* suffixes at the ends of their buckets, in text order; the
	// induced L/S passes below will place them in final sorted order.
	getBuckets(s, bucket, n, K, true)
	for i := 1; i < n; i++ {
		if isBStar(t, i) {
			bucket[s[i]]--
			SA[bucket[s[i]]] = int32(i)
		}
	}

	induceSortL(s, SA, t, bucket, n, K)
	induceSortS(s, SA, t, bucket, n, K)

	// Compact the sorted B* suffixes to the front of SA.
	n1 := 0
	for i := 0; i < n; i++ {
		if SA[i] > 0 && isBStar(t, int(SA[i])) {
			SA[n1] = SA[i]
			n1++
		}
	}

	// Clear the rest and name each B* substring, detecting collisions.
	for i := n1; i < n; i++ {
		SA[i] = -1
	}
	name := int32(0)
	prev := int32(-1)
	for i := 0; i < n1; i++ {
		pos := SA[i]
		diff := false
		for d := 0; d < n; d++ {
			if prev < 0 || s[pos+int32(d)] != s[prev+int32(d)] || t[pos+int32(d)] != t[prev+int32(d)] {
				diff = true
				break
			}
			if d > 0 && (isBStar(t, int(pos+int32(d))) || isBStar(t, int(prev+int32(d)))) {
				break
			}
		}
		if diff {
			name++
			prev = pos
		}
		// Store the name at pos/2 in the second half of SA, matching
		// the classic SA-IS bookkeeping trick.
		SA[n1+int(pos)/2] = name - 1
	}
	for i, j := n-1, n-1; i >= n1; i-- {
		if SA[i] >= 0 {
			SA[j] = SA[i]
			j--
		}
	}

	s1 := SA[n-n1:]
	SA1 := SA[:n1]

	if int(name) < n1 {
		// Names are not yet unique: recurse on the reduced problem,
		// the induced-sort analogue of doubling the probe depth in a
		// tandem-repeat pass.
		sais(s1, SA1, n1, int(name))
	} else {
		for i := 0; i < n1; i++ {
			SA1[s1[i]] = int32(i)
		}
	}

	// Translate the sorted names back to their text positions.
	bstar := make([]int32, 0, n1)
	for i := 1; i < n; i++ {
		if isBStar(t, i) {
			bstar = append(bstar, int32(i))
		}
	}
	for i := 0; i < n1; i++ {
		SA1[i] = bstar[SA1[i]]
	}

	for i := range SA[n1:] {
		SA[n1+i] = -1
	}
	getBuckets(s, bucket, n, K, true)
	for i := n1 - 1; i >= 0; i-- {
		j := SA1[i]
		SA1[i] = -1
		bucket[s[j]]--
		SA[bucket[s[j]]] = j
	}

	induceSortL(s, SA, t, bucket, n, K)
	induceSortS(s, SA, t, bucket, n, K)
}

// Build constructs the suffix array of text using an induced-sort pass in
// the style of spec.md §4.1.1: a type-A/type-B classification, a B*
// pivot class, and left-to-right / right-to-left induction from the
// sorted B* suffixes. A unique sentinel strictly smaller than every byte
// of text is appended internally (SA[0] always corresponds to it and is
// trimmed from the returned array).
func Build(text []byte) []int32 {
	n := len(text)
	if n == 0 {
		return []int32{}
	}
	s := make([]int32, n+1)
	for i, b := range text {
		s[i] = int32(b) + 1 // reserve 0 for the sentinel
	}
	s[n] = 0

	SA := make([]int32, n+1)
	sais(s, SA, n+1, 256+1)

	// SA[0] is always the sentinel position n; drop it.
	return SA[1:]
}

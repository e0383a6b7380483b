// Copyright © the gomummer contributors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cluster

// DisjointSet is a union-find structure over a fixed universe of
// 0..n-1 elements, used by groupByDiagonal to group matches by
// diagonal. It is an explicit struct rather than the
// negative-size-encoded array
// mgaps.cc uses, since Go has no equivalent of repurposing a signed
// int's sign bit without sacrificing readability for no real gain here.
type DisjointSet struct {
	parent []int
	rank   []int
}

// NewDisjointSet returns a DisjointSet over n singleton elements.
func NewDisjointSet(n int) *DisjointSet {
	d := &DisjointSet{parent: make([]int, n), rank: make([]int, n)}
	for i := range d.parent {
		d.parent[i] = i
	}
	return d
}

// Find returns the representative of x's set, path-compressing as it
// walks up.
func (d *DisjointSet) Find(x int) int {
	for d.parent[x] != x {
		d.parent[x] = d.parent[d.parent[x]]
		x = d.parent[x]
	}
	return x
}

// Union merges the sets containing a and b, by rank.
func (d *DisjointSet) Union(a, b int) {
	ra, rb := d.Find(a), d.Find(b)
	if ra == rb {
		return
	}
	switch {
	case d.rank[ra] < d.rank[rb]:
		d.parent[ra] = rb
	case d.rank[ra] > d.rank[rb]:
		d.parent[rb] = ra
	default:
		d.parent[rb] = ra
		d.rank[ra]++
	}
}

// Connected reports whether a and b are in the same set.
func (d *DisjointSet) Connected(a, b int) bool {
	return d.Find(a) == d.Find(b)
}

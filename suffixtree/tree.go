// Copyright © the gomummer contributors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package suffixtree implements the sparse suffix tree back-end for
// SuffixIndex, and the findMEM/findMAM/findMUM query operations built on
// top of it.
package suffixtree

import (
	"sort"

	"github.com/mummer4/gomummer/core"
	"github.com/mummer4/gomummer/seed"
)

// nodeRef is a tagged index into Tree's arena: a leaf encodes its suffix
// start position directly (leaves are never materialized as separate
// arena entries), a branch indexes into arb. This tag-plus-index scheme
// is the arena equivalent of the small-node/large-node encoding the
// design calls for — every node carries exactly the fields its role
// needs, with no bit-packed flag word.
type nodeRef int32

func leafRef(pos int) nodeRef  { return nodeRef(-(pos + 2)) }
func (r nodeRef) isLeaf() bool { return r <= -2 }
func (r nodeRef) leafPos() int { return int(-r) - 2 }

// branch is an explicit internal node. depth is its string depth (edge
// characters consumed from the root to reach it); head is the start
// position, in the text, of one suffix passing through it — used to read
// edge labels on demand so they are never copied. children is keyed by
// the byte selecting the edge.
type branch struct {
	depth    int
	head     int
	children map[byte]nodeRef
}

// sentinel terminates the internal working copy of the text so that no
// suffix's edge path can be a prefix of another's: without it, a shorter
// suffix that happens to match the start of a longer one would run out
// of bytes to route on partway through an existing edge.
const sentinel = 0x00

// Tree is a suffix tree over one reference text, sampled every k
// positions (k=1 is the dense tree findMAM and findMUM require).
//
// Construction inserts each sampled suffix by direct top-down descent
// from the root, splitting an edge when the new suffix departs partway
// along it. This is simpler than a full McCreight pass with suffix-link
// skip/count descents and costs O(n*depth/k) rather than O(n/k) in the
// worst case, but it builds the identical tree shape and is far easier
// to verify by inspection.
type Tree struct {
	text []byte // original coordinates; what RefPos refers to
	s    []byte // text with a trailing sentinel; what edges are built over
	k    int
	root nodeRef
	arb  []branch
}

func (t *Tree) newBranch(depth, head int) nodeRef {
	t.arb = append(t.arb, branch{depth: depth, head: head, children: make(map[byte]nodeRef)})
	return nodeRef(len(t.arb) - 1)
}

func (t *Tree) at(r nodeRef) *branch { return &t.arb[r] }

// headOf returns the text position a node reads its edge bytes from.
func (t *Tree) headOf(r nodeRef) int {
	if r.isLeaf() {
		return r.leafPos()
	}
	return t.at(r).head
}

// depthOf returns the string depth at which r's incoming edge ends: the
// node's own depth for a branch, or the length of the sentinel-terminated
// working text for a leaf (a leaf's edge always runs to the sentinel).
func (t *Tree) depthOf(r nodeRef) int {
	if r.isLeaf() {
		return len(t.s)
	}
	return t.at(r).depth
}

// Build constructs a sparse suffix tree over text, sampling every k-th
// suffix start; k=1 samples every position.
func Build(text []byte, k int) (*Tree, error) {
	if k <= 0 {
		return nil, core.New(core.Suffix, core.BadArgs, "sampling factor must be positive")
	}
	s := make([]byte, len(text)+1)
	copy(s, text)
	s[len(text)] = sentinel

	t := &Tree{text: text, s: s, k: k}
	t.arb = make([]branch, 0, len(text)/k+1)
	t.root = t.newBranch(0, 0)

	n := len(text)
	for start := 0; start < n; start += k {
		t.insert(start)
	}
	return t, nil
}

// insert adds the suffix s[start:] (which runs through the sentinel) to
// the tree.
func (t *Tree) insert(start int) {
	node := t.root
	depth := 0
	for {
		c := t.s[start+depth]
		child, ok := t.at(node).children[c]
		if !ok {
			t.at(node).children[c] = leafRef(start)
			return
		}
		end := t.depthOf(child)
		base := t.headOf(child)
		m := 0
		maxM := end - depth
		for m < maxM && t.s[base+depth+m] == t.s[start+depth+m] {
			m++
		}
		if depth+m == end {
			// child cannot be a leaf here: a leaf's edge runs to the
			// sentinel, and the sentinel appears exactly once in s, so
			// a second suffix can never match all the way through it.
			node, depth = child, end
			continue
		}
		// Mismatch partway along the edge: split it.
		split := t.newBranch(depth+m, base)
		t.at(split).children[t.s[base+depth+m]] = child
		t.at(split).children[t.s[start+depth+m]] = leafRef(start)
		t.at(node).children[c] = split
		return
	}
}

// leavesUnder collects every leaf's text position reachable under r.
func (t *Tree) leavesUnder(r nodeRef, out *[]int) {
	if r.isLeaf() {
		*out = append(*out, r.leafPos())
		return
	}
	for _, c := range t.at(r).children {
		t.leavesUnder(c, out)
	}
}

// descend walks p[i:] down the tree as far as it matches, returning the
// frontier reached — the node or leaf whose incoming edge was last
// traversed, whether fully or only partway — together with the matched
// depth. Every leaf reachable under frontier (itself, if frontier is
// already a leaf) shares that matched prefix with p[i:i+depth] and is a
// candidate completion; a leaf can never be matched all the way through,
// since its edge runs to a sentinel byte no real query contains, so
// reaching one is always a partial-edge stop.
func (t *Tree) descend(p []byte, i int) (frontier nodeRef, depth int) {
	node := t.root
	depth = 0
	n := len(p)
	for i+depth < n {
		c := p[i+depth]
		child, ok := t.at(node).children[c]
		if !ok {
			return node, depth
		}
		end := t.depthOf(child)
		base := t.headOf(child)
		m := 0
		maxM := end - depth
		for m < maxM && i+depth+m < n && t.s[base+depth+m] == p[i+depth+m] {
			m++
		}
		depth += m
		if m < maxM || child.isLeaf() {
			return child, depth
		}
		node = child
	}
	return node, depth
}

// findMEM emits every match of at least minLen between a suffix of p and
// some substring of the text that is maximal on both sides: it cannot be
// extended right (descent stopped at mismatch or end of either string)
// and cannot be extended left (the preceding characters differ, or one
// side is at its start).
func (t *Tree) findMEM(p []byte, minLen int, emit func(seed.Match)) error {
	if p == nil {
		return core.New(core.Suffix, core.BadArgs, "nil query")
	}
	if minLen < 0 {
		return core.New(core.Suffix, core.BadArgs, "negative minLen")
	}
	n := len(p)
	for i := 0; i < n; i++ {
		frontier, depth := t.descend(p, i)
		if depth < minLen || depth == 0 {
			continue
		}
		var positions []int
		t.leavesUnder(frontier, &positions)
		for _, refPos := range positions {
			if i > 0 && refPos > 0 && t.text[refPos-1] == p[i-1] {
				continue // left-extendable: not maximal on the left
			}
			emit(seed.Match{RefPos: refPos, QryPos: i, Len: depth})
		}
	}
	return nil
}

// findMAM performs the one-sided scan the design calls for: descend p[i:]
// until either a mismatch or a leaf is reached, and emit only when that
// location is exactly a leaf (so the match is unique in the reference)
// of depth at least minLen and left-maximal. findMAM requires the dense
// tree (k=1): a sparse tree cannot certify reference-uniqueness since
// unsampled starts are invisible to it.
func (t *Tree) findMAM(p []byte, minLen int, emit func(seed.Match)) error {
	if p == nil {
		return core.New(core.Suffix, core.BadArgs, "nil query")
	}
	if t.k != 1 {
		return core.New(core.Suffix, core.BadArgs, "findMAM requires a dense tree (k=1)")
	}
	n := len(p)
	for i := 0; i < n; i++ {
		frontier, depth := t.descend(p, i)
		if !frontier.isLeaf() || depth < minLen {
			continue
		}
		refPos := frontier.leafPos()
		if i > 0 && refPos > 0 && t.text[refPos-1] == p[i-1] {
			continue
		}
		emit(seed.Match{RefPos: refPos, QryPos: i, Len: depth})
	}
	return nil
}

// findMUM collects MAM candidates and applies the Kurtz cleanup: sort by
// reference start, then discard any candidate dominated on the right by
// its predecessor, and any candidate whose right endpoint coincides with
// its successor's — the two conditions that, together with findMAM's own
// reference-uniqueness guarantee, certify uniqueness in both sequences.
func (t *Tree) findMUM(p []byte, minLen int, emit func(seed.Match)) error {
	var candidates []seed.Match
	if err := t.findMAM(p, minLen, func(m seed.Match) {
		candidates = append(candidates, m)
	}); err != nil {
		return err
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].RefPos < candidates[j].RefPos })

	kept := make([]bool, len(candidates))
	for i := range kept {
		kept[i] = true
	}
	for i := 1; i < len(candidates); i++ {
		prev, cur := candidates[i-1], candidates[i]
		if kept[i-1] && prev.RefPos+prev.Len >= cur.RefPos+cur.Len {
			kept[i] = false
		}
	}
	for i := 0; i < len(candidates)-1; i++ {
		if kept[i] && candidates[i].RefPos+candidates[i].Len == candidates[i+1].RefPos+candidates[i+1].Len {
			kept[i] = false
		}
	}
	var out []seed.Match
	for i, m := range candidates {
		if kept[i] {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].QryPos < out[j].QryPos })
	for _, m := range out {
		emit(m)
	}
	return nil
}

// Find implements seed.Stream, dispatching to the appropriate query by
// flavor. forward is the caller's record of which strand query holds;
// Tree itself is strand-agnostic and just indexes whatever bytes it is
// given.
func (t *Tree) Find(flavor seed.Flavor, query []byte, minLen int, forward bool, emit seed.Emit) error {
	switch flavor {
	case seed.MEM:
		return t.findMEM(query, minLen, emit)
	case seed.MAM:
		return t.findMAM(query, minLen, emit)
	case seed.MUM:
		return t.findMUM(query, minLen, emit)
	default:
		return core.New(core.Suffix, core.BadArgs, "unknown flavor")
	}
}

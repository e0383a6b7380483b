// Copyright © the gomummer contributors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

// editState names which of a Node's three scores is in play: the
// substitution (match/mismatch) track, or one of the two affine-gap
// tracks. refGap consumes a query residue only (a gap opened in the
// reference track, the positive delta case); qryGap consumes a
// reference residue only (a gap opened in the query track, the
// negative delta case).
type editState int8

const (
	stateSub editState = iota
	stateRefGap
	stateQryGap
)

const negInf = -(1 << 30)

// Node holds the three score tracks the banded engine computes at one
// cell, which track currently holds the best score (edit), and which
// predecessor state fed each track (from) so a target alignment can be
// traced back.
type Node struct {
	Scores [3]int
	From   [3]editState
	Edit   editState
}

func (n *Node) best() int { return n.Scores[n.Edit] }

// Diagonal holds the nodes of one diagonal (offset = column − row),
// indexed by row. lbound/rbound record the row extent actually
// computed, widened as the frontier advances.
type Diagonal struct {
	lbound, rbound int
	nodes          map[int]*Node
}

func newDiagonal() *Diagonal {
	return &Diagonal{nodes: make(map[int]*Node)}
}

func (d *Diagonal) node(row int) *Node {
	n, ok := d.nodes[row]
	if !ok {
		n = &Node{}
		d.nodes[row] = n
		if len(d.nodes) == 1 {
			d.lbound, d.rbound = row, row
		} else {
			if row < d.lbound {
				d.lbound = row
			}
			if row > d.rbound {
				d.rbound = row
			}
		}
	}
	return n
}

func (d *Diagonal) get(row int) (*Node, bool) {
	n, ok := d.nodes[row]
	return n, ok
}

// DiagonalMatrix is the auto-expanding diagonal-sparse store the banded
// aligner fills as it advances: only cells the frontier actually
// visits are ever allocated, one Go map doing the job of the original
// engine's resizable per-diagonal vectors.
type DiagonalMatrix struct {
	diagonals map[int]*Diagonal
}

// NewDiagonalMatrix returns an empty matrix ready for one alignment
// call.
func NewDiagonalMatrix() *DiagonalMatrix {
	return &DiagonalMatrix{diagonals: make(map[int]*Diagonal)}
}

func (m *DiagonalMatrix) at(d int) *Diagonal {
	dg, ok := m.diagonals[d]
	if !ok {
		dg = newDiagonal()
		m.diagonals[d] = dg
	}
	return dg
}

func (m *DiagonalMatrix) node(d, row int) *Node {
	return m.at(d).node(row)
}

func (m *DiagonalMatrix) get(d, row int) (*Node, bool) {
	dg, ok := m.diagonals[d]
	if !ok {
		return nil, false
	}
	return dg.get(row)
}

// dropRow discards every node at the given row across all diagonals,
// the diagonal-matrix equivalent of the original engine destroying
// matrix rows as a search-mode alignment advances past them.
func (m *DiagonalMatrix) dropRow(row int) {
	for _, dg := range m.diagonals {
		delete(dg.nodes, row)
	}
}

// Clear empties the matrix so it can be reused by a buffered aligner.
func (m *DiagonalMatrix) Clear() {
	for d := range m.diagonals {
		delete(m.diagonals, d)
	}
}

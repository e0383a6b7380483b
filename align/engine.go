// Copyright © the gomummer contributors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

// engine runs the banded affine-gap DP between (Astart,Bstart) and
// (Aend,Bend). The direction bit is handled by reversing the two
// windows into a forward-equivalent problem and running the forward
// engine on them — the same "reverse the traversal order" trick the
// original engine uses to share one implementation between forward and
// backward extension. Only search modes run backward (alignTarget's
// contract requires the forward direction), so a backward call never
// asks for a delta script: reconstructing a forward-convention delta
// from a backward traceback would require regrouping every run length
// around the reversed event order, not just reversing the event list,
// and no caller needs it.
func (a *Aligner) engine(A, B []byte, Astart, Aend, Bstart, Bend int, modus uint, diag *DiagonalMatrix, wantDelta bool) (reached bool, fAend, fBend, score int, delta []int, err error) {
	forward := modus&DirectionBit != 0
	if forward {
		return a.forwardEngine(A, B, Astart, Aend, Bstart, Bend, modus, diag, wantDelta)
	}

	// Backward: Astart >= Aend, Bstart >= Bend. Reverse each window into
	// increasing coordinates and run forward over them.
	revA := reverseSlice(A[Aend : Astart+1])
	revB := reverseSlice(B[Bend : Bstart+1])
	lenA := Astart - Aend + 1
	lenB := Bstart - Bend + 1
	reached, rAend, rBend, score, _, err := a.forwardEngine(revA, revB, 0, lenA-1, 0, lenB-1, modus, diag, false)
	if err != nil {
		return false, Aend, Bend, 0, nil, err
	}
	// rAend/rBend are offsets into the reversed windows; translate back.
	fAend = Astart - rAend
	fBend = Bstart - rBend
	return reached, fAend, fBend, score, nil, nil
}

func reverseSlice(s []byte) []byte {
	out := make([]byte, len(s))
	for i, b := range s {
		out[len(s)-1-i] = b
	}
	return out
}

// forwardEngine runs the DP with Astart <= Aend and Bstart <= Bend.
func (a *Aligner) forwardEngine(A, B []byte, Astart, Aend, Bstart, Bend int, modus uint, diag *DiagonalMatrix, wantDelta bool) (reached bool, fAend, fBend, score int, delta []int, err error) {
	lenA := Aend - Astart + 1
	lenB := Bend - Bstart + 1
	forced := modus&ForcedBit != 0
	optimal := modus&OptimalBit != 0
	breakLen := a.cfg.BreakLen
	banding := a.cfg.Banding

	// oi/oj are 0-indexed offsets from Astart/Bstart; oi==0 or oj==0 is
	// the boundary row/column seeded below.
	seedBoundary(diag, lenA, lenB, a.scorer)

	bestOi, bestOj, bestScore := 0, 0, 0
	noImprove := 0
	reachedEnd := true

rows:
	for oi := 1; oi <= lenA; oi++ {
		rowBest := negInf
		loJ, hiJ := 1, lenB
		if banding > 0 {
			loJ = oi - banding
			hiJ = oi + banding
			if loJ < 1 {
				loJ = 1
			}
			if hiJ > lenB {
				hiJ = lenB
			}
		}
		for oj := loJ; oj <= hiJ; oj++ {
			n := computeCell(diag, A, B, Astart, Bstart, oi, oj, a.scorer)
			if n.best() > rowBest {
				rowBest = n.best()
			}
		}
		if rowBest > bestScore {
			bestScore = rowBest
			bestOi, bestOj = oi, rowBound(diag, oi, loJ, hiJ, bestScore)
			noImprove = 0
		} else {
			noImprove++
		}
		if modus&SearchBit != 0 && oi >= 2 {
			diag.dropRow(oi - 2)
		}
		if !forced && noImprove > breakLen {
			reachedEnd = false
			break rows
		}
	}

	finalOi, finalOj := lenA, lenB
	if !reachedEnd {
		finalOi, finalOj = bestOi, bestOj
	} else if optimal {
		finalOi, finalOj = bestOi, bestOj
	}

	fAend = Astart + finalOi - 1
	fBend = Bstart + finalOj - 1
	if finalOi == 0 {
		fAend = Astart - 1
	}
	if finalOj == 0 {
		fBend = Bstart - 1
	}

	if !reachedEnd || optimal {
		// (bestOi,bestOj) may sit in a row search mode has already
		// dropped, so use the score recorded when it was reached.
		score = bestScore
	} else if n, ok := diag.get(finalOj-finalOi, finalOi); ok {
		score = n.best()
	}

	if wantDelta {
		delta = traceback(diag, finalOi, finalOj)
	}
	return reachedEnd, fAend, fBend, score, delta, nil
}

// rowBound returns the column offset (within [loJ,hiJ]) at which the
// row's best score was achieved, used to record the falloff position.
func rowBound(diag *DiagonalMatrix, oi, loJ, hiJ, bestScore int) int {
	for oj := loJ; oj <= hiJ; oj++ {
		d := oj - oi
		if n, ok := diag.get(d, oi); ok && n.best() == bestScore {
			return oj
		}
	}
	return loJ
}

// seedBoundary primes the DP's row-0 and column-0 edge nodes: the
// start cell has a zero substitution score, the top edge is reachable
// only via a growing reference-gap run, the left edge only via a
// growing query-gap run.
func seedBoundary(diag *DiagonalMatrix, lenA, lenB int, sc scorer) {
	start := diag.node(0, 0)
	start.Scores = [3]int{0, negInf, negInf}
	start.Edit = stateSub

	for oj := 1; oj <= lenB; oj++ {
		n := diag.node(oj, 0)
		n.Scores[stateSub] = negInf
		n.Scores[stateQryGap] = negInf
		if oj == 1 {
			n.Scores[stateRefGap] = sc.gapOpen
			n.From[stateRefGap] = stateSub
		} else {
			n.Scores[stateRefGap] = diag.node(oj-1, 0).Scores[stateRefGap] + sc.gapExtend
			n.From[stateRefGap] = stateRefGap
		}
		n.Edit = stateRefGap
	}

	for oi := 1; oi <= lenA; oi++ {
		n := diag.node(-oi, oi)
		n.Scores[stateSub] = negInf
		n.Scores[stateRefGap] = negInf
		if oi == 1 {
			n.Scores[stateQryGap] = sc.gapOpen
			n.From[stateQryGap] = stateSub
		} else {
			n.Scores[stateQryGap] = diag.node(-(oi - 1), oi-1).Scores[stateQryGap] + sc.gapExtend
			n.From[stateQryGap] = stateQryGap
		}
		n.Edit = stateQryGap
	}
}

// computeCell fills the node at absolute offsets (oi,oj) from the
// three-state Gotoh affine-gap recurrence and returns it.
func computeCell(diag *DiagonalMatrix, A, B []byte, Astart, Bstart, oi, oj int, sc scorer) *Node {
	d := oj - oi
	n := diag.node(d, oi)

	subPrev, subOK := diag.get(d, oi-1) // (oi-1,oj-1)
	best, from := negInf, stateSub
	if subOK {
		for _, st := range [3]editState{stateSub, stateRefGap, stateQryGap} {
			if v := subPrev.Scores[st]; v > best {
				best, from = v, st
			}
		}
	}
	matchScore := sc.substitute(A[Astart+oi-1], B[Bstart+oj-1])
	n.Scores[stateSub] = addSat(best, matchScore)
	n.From[stateSub] = from

	refPrev, refOK := diag.get(d-1, oi) // (oi,oj-1)
	rOpen, rExt := negInf, negInf
	if refOK {
		rOpen = addSat(refPrev.Scores[stateSub], sc.gapOpen)
		rExt = addSat(refPrev.Scores[stateRefGap], sc.gapExtend)
	}
	if rExt >= rOpen {
		n.Scores[stateRefGap] = rExt
		n.From[stateRefGap] = stateRefGap
	} else {
		n.Scores[stateRefGap] = rOpen
		n.From[stateRefGap] = stateSub
	}

	qryPrev, qryOK := diag.get(d+1, oi-1) // (oi-1,oj)
	qOpen, qExt := negInf, negInf
	if qryOK {
		qOpen = addSat(qryPrev.Scores[stateSub], sc.gapOpen)
		qExt = addSat(qryPrev.Scores[stateQryGap], sc.gapExtend)
	}
	if qExt >= qOpen {
		n.Scores[stateQryGap] = qExt
		n.From[stateQryGap] = stateQryGap
	} else {
		n.Scores[stateQryGap] = qOpen
		n.From[stateQryGap] = stateSub
	}

	n.Edit = stateSub
	if n.Scores[stateRefGap] > n.Scores[n.Edit] {
		n.Edit = stateRefGap
	}
	if n.Scores[stateQryGap] > n.Scores[n.Edit] {
		n.Edit = stateQryGap
	}
	return n
}

func addSat(a, b int) int {
	if a <= negInf/2 {
		return negInf
	}
	return a + b
}

// traceback walks the DP backward from (finalOi,finalOj) to the start
// cell, then converts the path into the signed delta encoding: a run
// of k-1 aligned (match or mismatch) columns followed by a reference
// gap emits +k, followed by a query gap emits -k.
func traceback(diag *DiagonalMatrix, finalOi, finalOj int) []int {
	if finalOi == 0 && finalOj == 0 {
		return nil
	}
	n, ok := diag.get(finalOj-finalOi, finalOi)
	if !ok {
		return nil
	}
	state := n.Edit
	oi, oj := finalOi, finalOj

	// steps, oldest first after reversal, one entry per DP transition.
	var steps []editState
	for oi > 0 || oj > 0 {
		steps = append(steps, state)
		cur, ok := diag.get(oj-oi, oi)
		if !ok {
			break
		}
		prevState := cur.From[state]
		switch state {
		case stateSub:
			oi--
			oj--
		case stateRefGap:
			oj--
		case stateQryGap:
			oi--
		}
		state = prevState
	}
	for l, r := 0, len(steps)-1; l < r; l, r = l+1, r-1 {
		steps[l], steps[r] = steps[r], steps[l]
	}

	var delta []int
	run := 0
	for _, st := range steps {
		switch st {
		case stateSub:
			run++
		case stateRefGap:
			delta = append(delta, run+1)
			run = 0
		case stateQryGap:
			delta = append(delta, -(run + 1))
			run = 0
		}
	}
	return delta
}

// Copyright © the gomummer contributors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package postnuc implements the cluster-to-alignment extension stage:
// it turns each Cluster of colinear seed matches into one or more
// gapped Alignments, bridging the matches with banded Smith–Waterman
// and optionally reaching past them toward a neighboring alignment or
// sequence end.
package postnuc

import (
	"sort"

	"github.com/biogo/store/interval"

	"github.com/mummer4/gomummer/align"
	"github.com/mummer4/gomummer/cluster"
	"github.com/mummer4/gomummer/core"
)

// Alignment is an extended, gapped alignment between one reference and
// one query sequence, built by fusing and extending a cluster's seed
// matches.
type Alignment struct {
	Forward bool
	SA, EA  int // reference span, inclusive
	SB, EB  int // query span, inclusive
	Deltas  []int

	Errors, SimErrors, NonAlphas int
}

// DeltaApos is the running sum of abs(delta) minus the count of
// negative deltas: the offset, in the delta-script's own bookkeeping,
// at which the next fragment's coordinates continue.
func (a *Alignment) DeltaApos() int {
	sum, neg := 0, 0
	for _, d := range a.Deltas {
		if d < 0 {
			sum -= d
			neg++
		} else {
			sum += d
		}
	}
	return sum - neg
}

// Total reports the number of reference bases spanned by the
// alignment, counting each deletion (reference-only-consumed) event as
// an additional base beyond the raw EA-SA span.
func (a *Alignment) Total() int {
	n := a.EA - a.SA
	if n < 0 {
		n = -n
	}
	n++
	for _, d := range a.Deltas {
		if d < 0 {
			n++
		}
	}
	return n
}

// Identity reports the fraction of Total bases that are not Errors.
func (a *Alignment) Identity() float64 {
	t := a.Total()
	if t == 0 {
		return 0
	}
	return float64(t-a.Errors) / float64(t)
}

// Cluster is the unit of input to the extender: a colinear chain of
// seed matches sharing a diagonal band, as produced by package
// cluster.
type Cluster = cluster.Cluster

// Synteny groups every cluster found between one reference sequence
// and the fixed query sequence.
type Synteny struct {
	RefID    string
	RefLen   int
	QryID    string
	QryLen   int
	Clusters []Cluster
}

// Config holds the ClusterExtender's behavioral flags, matching the
// original engine's DO_EXTEND/TO_SEQEND/DO_SHADOWS switches.
type Config struct {
	// DoExtend extends an alignment past its last seed match, in
	// search mode, when no neighboring target is reached.
	DoExtend bool
	// ToSeqEnd extends the last alignment of a cluster all the way to
	// the end of both sequences, regardless of DoExtend.
	ToSeqEnd bool
	// DoShadows disables shadow elimination: when false (the
	// default), a cluster fully spanned by a prior alignment of
	// matching strand is dropped.
	DoShadows bool
}

// Extender turns Synteny clusters into Alignments using a configured
// banded aligner.
type Extender struct {
	cfg     Config
	aligner *align.Aligner
}

// New returns an Extender that bridges clusters with a.
func New(cfg Config, a *align.Aligner) *Extender {
	return &Extender{cfg: cfg, aligner: a}
}

// minScore is the threshold below which a bridging extension is
// treated as not having "improved" the alignment, even though the
// banded aligner reports reached=true: a net-negative bridge is worse
// than leaving the two pieces as separate alignments.
const minScore = 0

// ExtendClusters converts every cluster of one Synteny into Alignments,
// ordered ascending by reference start. Aseq/Bseq are the full
// reference and query sequences the cluster coordinates index into.
func (e *Extender) ExtendClusters(clusters []Cluster, Aseq, Bseq []byte) ([]Alignment, error) {
	cs := make([]Cluster, 0, len(clusters))
	for _, c := range clusters {
		if len(c.Matches) > 0 {
			cs = append(cs, c)
		}
	}
	sort.Slice(cs, func(i, j int) bool {
		return cs[i].Matches[0].SA < cs[j].Matches[0].SA
	})

	var alignments []Alignment
	var tree interval.IntTree
	for i := range cs {
		c := &cs[i]
		if !e.cfg.DoShadows && isShadowed(c, &tree) {
			continue
		}
		if err := e.extendOneCluster(c, Aseq, Bseq, &alignments); err != nil {
			return alignments, err
		}
		// Rebuilt wholesale rather than incrementally: a backward fuse
		// grows an already-indexed alignment's span in place, and the
		// tree caches each node's range at insert time, so a stale
		// entry from an earlier cluster would otherwise under-report
		// containment for every cluster processed after it.
		tree = interval.IntTree{}
		for j := range alignments {
			if err := tree.Insert(alignmentSpan{uid: uintptr(j), al: &alignments[j]}, true); err != nil {
				return alignments, err
			}
		}
		tree.AdjustRanges()
	}
	sort.SliceStable(alignments, func(i, j int) bool {
		return alignments[i].SA < alignments[j].SA
	})
	return alignments, nil
}

// alignmentSpan adapts an *Alignment's reference span to
// biogo/store/interval's Interface, following the same
// "stored-interval contains the query range" shape cmd/ins/main.go's
// cullContained runs over BLAST hits, here repointed at postnuc's own
// alignments for shadow elimination.
type alignmentSpan struct {
	uid uintptr
	al  *Alignment
}

func (s alignmentSpan) ID() uintptr { return s.uid }

func (s alignmentSpan) Range() interval.IntRange {
	return interval.IntRange{Start: s.al.SA, End: s.al.EA + 1}
}

// Overlap reports whether s's alignment fully contains the query range
// b, mirroring cullContained's Overlap method.
func (s alignmentSpan) Overlap(b interval.IntRange) bool {
	return s.al.SA <= b.Start && b.End <= s.al.EA+1
}

// spanQuery is the lookup key passed to IntTree.Get: its own Overlap
// is never consulted (Get only calls the stored side's Overlap with
// this query's Range), but the Interface still requires it.
type spanQuery struct {
	sa, ea int // half-open
}

func (q spanQuery) ID() uintptr                     { return 0 }
func (q spanQuery) Range() interval.IntRange        { return interval.IntRange{Start: q.sa, End: q.ea} }
func (q spanQuery) Overlap(b interval.IntRange) bool { return q.sa < b.End && b.Start < q.ea }

// isShadowed reports whether some already-extended alignment of
// matching strand fully contains c's reference and query span.
func isShadowed(c *Cluster, tree *interval.IntTree) bool {
	sa, ea := c.Matches[0].SA, c.Matches[0].EA
	sb, eb := c.Matches[0].SB, c.Matches[0].EB
	for _, m := range c.Matches[1:] {
		if m.SA < sa {
			sa = m.SA
		}
		if m.EA > ea {
			ea = m.EA
		}
		if m.SB < sb {
			sb = m.SB
		}
		if m.EB > eb {
			eb = m.EB
		}
	}
	for _, hit := range tree.Get(spanQuery{sa: sa, ea: ea}) {
		al := hit.(alignmentSpan).al
		if al.Forward != c.Forward {
			continue
		}
		if al.SB <= sb && al.EB >= eb-1 {
			return true
		}
	}
	return false
}

// extendOneCluster runs the anchor / backward-target / forward /
// forward-tail state machine for one cluster, appending the resulting
// alignment(s) to *alignments. cur always points at the live entry in
// *alignments currently being extended, whether that entry is a fresh
// anchor or an earlier alignment this cluster fused backward into —
// never a disconnected local copy — so every mutation below lands in
// the slice the caller sees.
func (e *Extender) extendOneCluster(c *Cluster, Aseq, Bseq []byte, alignments *[]Alignment) error {
	m0 := c.Matches[0]
	anchor := Alignment{Forward: c.Forward, SA: m0.SA, EA: m0.EA - 1, SB: m0.SB, EB: m0.EB - 1}

	target, err := e.extendBackward(&anchor, Aseq, Bseq, *alignments)
	if err != nil {
		return err
	}

	var cur *Alignment
	if target != nil {
		cur = target
	} else {
		if e.cfg.DoExtend {
			if err := e.extendBackwardSearch(&anchor, Aseq, Bseq, *alignments); err != nil {
				return err
			}
		}
		*alignments = append(*alignments, anchor)
		cur = &(*alignments)[len(*alignments)-1]
	}

	for _, m := range c.Matches[1:] {
		reached, score, delta, err := e.bridgeForward(Aseq, Bseq, cur.EA+1, m.SA-1, cur.EB+1, m.SB-1)
		if err != nil {
			return err
		}
		if reached && score >= minScore {
			cur.Deltas = append(cur.Deltas, delta...)
			cur.Errors += len(delta)
			cur.EA, cur.EB = m.EA-1, m.EB-1
			continue
		}
		next := Alignment{Forward: c.Forward, SA: m.SA, EA: m.EA - 1, SB: m.SB, EB: m.EB - 1}
		*alignments = append(*alignments, next)
		cur = &(*alignments)[len(*alignments)-1]
	}

	if e.cfg.ToSeqEnd || e.cfg.DoExtend {
		targetA, targetB := len(Aseq)-1, len(Bseq)-1
		if e.cfg.DoExtend && !e.cfg.ToSeqEnd {
			if targetA > cur.EA+align.MaxSearchLength {
				targetA = cur.EA + align.MaxSearchLength
			}
			if targetB > cur.EB+align.MaxSearchLength {
				targetB = cur.EB + align.MaxSearchLength
			}
		}
		if targetA > cur.EA && targetB > cur.EB {
			modus := uint(align.ForwardSearch)
			if e.cfg.ToSeqEnd {
				modus = align.ForcedForwardSearch
			}
			_, newEA, newEB, _, err := e.aligner.AlignSearch(Aseq, Bseq, cur.EA+1, targetA, cur.EB+1, targetB, modus)
			if err != nil {
				if ce, ok := err.(*core.Error); !ok || ce.Kind != core.BadArgs {
					return err
				}
			} else {
				cur.EA, cur.EB = newEA, newEB
			}
		}
	}

	return nil
}

// extendBackward looks for the nearest prior alignment on a compatible
// diagonal and, if found, bridges the gap between that alignment's end
// and cur's start with a forward-targeted alignment. Framing the fuse
// as "extend the prior alignment forward to reach cur" rather than
// "extend cur backward to reach the prior alignment" sidesteps
// needing a backward-target delta translation entirely: the bridged
// region and its delta script are identical either way, and the
// forward framing is the one the banded aligner actually supports
// (see align.engine's doc comment on why backward+delta is
// unsupported). On success cur is fused into the returned alignment in
// place (which lives in alignments' backing array) and the caller
// should continue extending that one rather than append cur on its
// own.
func (e *Extender) extendBackward(cur *Alignment, Aseq, Bseq []byte, alignments []Alignment) (target *Alignment, err error) {
	target = nearestBackward(cur, alignments)
	if target == nil {
		return nil, nil
	}
	if target.EA+1 > cur.SA-1 || target.EB+1 > cur.SB-1 {
		if target.EA+1 == cur.SA && target.EB+1 == cur.SB {
			mergeInto(target, cur, nil, 0)
			return target, nil
		}
		return nil, nil
	}
	reached, score, delta, err := e.bridgeForward(Aseq, Bseq, target.EA+1, cur.SA-1, target.EB+1, cur.SB-1)
	if err != nil {
		return nil, err
	}
	if !reached || score < minScore {
		return nil, nil
	}
	mergeInto(target, cur, delta, len(delta))
	return target, nil
}

// mergeInto absorbs cur into target: target's span grows to cover
// cur's end, with bridgeDelta (and its error count) spliced in between
// target's own delta script and cur's (always empty at this point,
// since cur is still a freshly anchored seed match).
func mergeInto(target, cur *Alignment, bridgeDelta []int, bridgeErrors int) {
	target.Deltas = append(target.Deltas, bridgeDelta...)
	target.Errors += bridgeErrors
	target.EA, target.EB = cur.EA, cur.EB
}

// nearestBackward returns the most recently built alignment of
// matching strand that ends strictly before cur starts and sits within
// a plausible diagonal band of it, or nil if none qualifies.
func nearestBackward(cur *Alignment, alignments []Alignment) *Alignment {
	const diagTolerance = 1000
	for i := len(alignments) - 1; i >= 0; i-- {
		a := &alignments[i]
		if a.Forward != cur.Forward {
			continue
		}
		if a.EA >= cur.SA || a.EB >= cur.SB {
			continue
		}
		curDiag := (cur.SB - cur.SA)
		aDiag := (a.EB - a.EA)
		drift := curDiag - aDiag
		if drift < 0 {
			drift = -drift
		}
		if drift > diagTolerance {
			return nil
		}
		return a
	}
	return nil
}

// extendBackwardSearch runs a backward search (no delta) from cur's
// start toward either the nearest prior alignment's end or sequence
// start, recording the falloff position as cur's new start.
func (e *Extender) extendBackwardSearch(cur *Alignment, Aseq, Bseq []byte, alignments []Alignment) error {
	targetA, targetB := 0, 0
	if target := nearestBackward(cur, alignments); target != nil {
		targetA, targetB = target.EA+1, target.EB+1
	}
	if cur.SA-1 < 0 || cur.SB-1 < 0 || cur.SA-1 < targetA || cur.SB-1 < targetB {
		return nil
	}
	_, newSA, newSB, _, err := e.aligner.AlignSearch(Aseq, Bseq, cur.SA-1, targetA, cur.SB-1, targetB, align.BackwardSearch)
	if err != nil {
		if ce, ok := err.(*core.Error); ok && ce.Kind == core.BadArgs {
			return nil
		}
		return err
	}
	cur.SA, cur.SB = newSA, newSB
	return nil
}

// bridgeForward runs a forward-targeted alignment over a (possibly
// empty or negative-length) gap region, tolerating the trivial case
// where the two endpoints are already adjacent.
func (e *Extender) bridgeForward(Aseq, Bseq []byte, Astart, Aend, Bstart, Bend int) (reached bool, score int, delta []int, err error) {
	if Astart > Aend || Bstart > Bend {
		if Astart == Aend+1 && Bstart == Bend+1 {
			return true, 0, nil, nil
		}
		return false, 0, nil, nil
	}
	reached, _, _, score, delta, err = e.aligner.AlignTarget(Aseq, Bseq, Astart, Aend, Bstart, Bend, align.ForwardAlign)
	if err != nil {
		if ce, ok := err.(*core.Error); ok && ce.Kind == core.BadArgs {
			return false, 0, nil, nil
		}
		return false, 0, nil, err
	}
	return reached, score, delta, nil
}

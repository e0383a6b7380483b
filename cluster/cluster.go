// Copyright © the gomummer contributors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cluster groups a stream of seed matches into colinear chains
// on shared diagonals (the mgaps stage of the pipeline), ready for the
// extender to turn into gapped alignments.
package cluster

import (
	"math"
	"sort"

	"github.com/mummer4/gomummer/seed"
)

// Match mirrors a seed.Match but in the half-open [start,end) span form
// the clustering math is phrased in terms of.
type Match struct {
	SA, EA int // reference span
	SB, EB int // query span
}

// Len returns the match length (equal in both sequences by construction).
func (m Match) Len() int { return m.EA - m.SA }

// Diagonal returns the match's diagonal offset, sB - sA.
func (m Match) Diagonal() int { return m.SB - m.SA }

// FromSeed converts a seed.Match into the span form Process operates on.
func FromSeed(m seed.Match) Match {
	return Match{SA: m.RefPos, EA: m.RefPos + m.Len, SB: m.QryPos, EB: m.QryPos + m.Len}
}

// Cluster is a colinear chain of matches on one diagonal band.
type Cluster struct {
	Forward  bool
	Matches  []Match
	WasFused bool
	Score    int
}

// Config holds the tunables of the clustering pass. Defaults mirror
// the literal values required for test reproducibility.
type Config struct {
	FixedDiagDiff    int
	MaxSeparation    int
	SeparationFactor float64
	MinOutputScore   int
	// UseExtents selects end-minus-start extent scoring instead of the
	// default sum-of-lengths scoring.
	UseExtents bool
}

// DefaultConfig returns the literal default tunables.
func DefaultConfig() Config {
	return Config{
		FixedDiagDiff:    5,
		MaxSeparation:    1000,
		SeparationFactor: 0.05,
		MinOutputScore:   200,
	}
}

// Process runs the full clustering pipeline over one run of matches
// sharing a (reference, query, strand) triple: sort, same-diagonal
// merging, repeat filtering, diagonal union-find, then iterated
// local-DP chain extraction. It
// returns the clusters whose score reached cfg.MinOutputScore, ordered
// by the query-start of their first match.
func Process(matches []Match, forward bool, cfg Config) []Cluster {
	ms := append([]Match(nil), matches...)
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].SB != ms[j].SB {
			return ms[i].SB < ms[j].SB
		}
		if ms[i].SA != ms[j].SA {
			return ms[i].SA < ms[j].SA
		}
		// Longer match first, so that when two matches share both
		// starts the shorter (repeat-contained) one is the "later"
		// match mergeSameDiagonal discards.
		return ms[i].Len() > ms[j].Len()
	})

	ms = mergeSameDiagonal(ms)
	ms = filterRepeats(ms)
	if len(ms) == 0 {
		return nil
	}

	groups := groupByDiagonal(ms, cfg)

	var out []Cluster
	for _, g := range groups {
		out = append(out, chainCluster(g, forward, cfg)...)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Matches[0].SB < out[j].Matches[0].SB
	})
	return out
}

// mergeSameDiagonal combines matches that lie on the same diagonal and
// overlap (in query order): the earlier match is extended to the
// later one's extent and the later one is discarded. ms must already
// be sorted by query-start. Mirrors mgaps.cc's Filter_Matches
// same-diagonal branch, split out here as its own pass ahead of
// filterRepeats's separate repeat-containment suppression.
func mergeSameDiagonal(ms []Match) []Match {
	bad := make([]bool, len(ms))
	for i := range ms {
		if bad[i] {
			continue
		}
		iDiag := ms[i].Diagonal()
		iEnd := ms[i].EB
		for j := i + 1; j < len(ms) && ms[j].SB <= iEnd; j++ {
			if bad[j] {
				continue
			}
			if ms[j].Diagonal() != iDiag {
				continue
			}
			jExtent := ms[j].EB - ms[i].SB
			if jExtent > ms[i].Len() {
				ms[i].EA = ms[i].SA + jExtent
				ms[i].EB = ms[i].SB + jExtent
				iEnd = ms[i].EB
			}
			bad[j] = true
		}
	}
	out := make([]Match, 0, len(ms))
	for i, m := range ms {
		if !bad[i] {
			out = append(out, m)
		}
	}
	return out
}

// filterRepeats eliminates matches that are contained, at or above a
// 50% overlap of either piece's length, within an earlier match sharing
// either its reference-start or its query-start; matches of exactly
// equal span mutually suppress each other. ms must already be sorted
// by query-start.
func filterRepeats(ms []Match) []Match {
	bad := make([]bool, len(ms))
	for i := range ms {
		if bad[i] {
			continue
		}
		for j := i + 1; j < len(ms); j++ {
			if ms[j].SB >= ms[i].EB {
				break // sorted by SB: no further match can start before i's end
			}
			if bad[j] {
				continue
			}
			if ms[j].SA != ms[i].SA && ms[j].SB != ms[i].SB {
				continue
			}
			overlapA := overlapLen(ms[i].SA, ms[i].EA, ms[j].SA, ms[j].EA)
			overlapB := overlapLen(ms[i].SB, ms[i].EB, ms[j].SB, ms[j].EB)
			overlap := overlapA
			if overlapB > overlap {
				overlap = overlapB
			}
			shorter := ms[i].Len()
			if ms[j].Len() < shorter {
				shorter = ms[j].Len()
			}
			if shorter == 0 || float64(overlap) < 0.5*float64(shorter) {
				continue
			}
			if ms[i].Len() == ms[j].Len() {
				bad[i] = true
				bad[j] = true
				break
			}
			bad[j] = true
		}
	}
	out := make([]Match, 0, len(ms))
	for i, m := range ms {
		if !bad[i] {
			out = append(out, m)
		}
	}
	return out
}

func overlapLen(s1, e1, s2, e2 int) int {
	lo, hi := s1, e1
	if s2 > lo {
		lo = s2
	}
	if e2 < hi {
		hi = e2
	}
	if hi < lo {
		return 0
	}
	return hi - lo
}

// groupByDiagonal unions matches whose separation and diagonal drift
// both fall within cfg's bounds, and returns each resulting component
// as a slice of matches in their original (query-start) order.
func groupByDiagonal(ms []Match, cfg Config) [][]Match {
	ds := NewDisjointSet(len(ms))
	for i := range ms {
		for j := i + 1; j < len(ms); j++ {
			sep := ms[j].SB - ms[i].EB
			if sep > cfg.MaxSeparation {
				continue
			}
			drift := ms[j].Diagonal() - ms[i].Diagonal()
			if drift < 0 {
				drift = -drift
			}
			bound := cfg.FixedDiagDiff
			if f := int(math.Ceil(cfg.SeparationFactor * float64(abs(sep)))); f > bound {
				bound = f
			}
			if drift <= bound {
				ds.Union(i, j)
			}
		}
	}

	groupIdx := make(map[int][]int)
	for i := range ms {
		r := ds.Find(i)
		groupIdx[r] = append(groupIdx[r], i)
	}
	var groups [][]Match
	for _, idxs := range groupIdx {
		g := make([]Match, len(idxs))
		for k, idx := range idxs {
			g[k] = ms[idx]
		}
		groups = append(groups, g)
	}
	return groups
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// chainCluster runs the local DP chain-scoring/traceback pass over one
// diagonal group, repeatedly extracting the best-scoring chain and
// removing its matches until no chain reaches cfg.MinOutputScore.
func chainCluster(group []Match, forward bool, cfg Config) []Cluster {
	remaining := append([]Match(nil), group...)
	var out []Cluster
	for len(remaining) > 0 {
		chain, score := bestChain(remaining, cfg)
		if len(chain) == 0 || score < cfg.MinOutputScore {
			break
		}
		out = append(out, Cluster{Forward: forward, Matches: chain, Score: score})
		remaining = removeMatches(remaining, chain)
	}
	return out
}

// bestChain runs the chain-scoring DP once: for each match i (in
// query-start order), score[i] = len(i) + max over j<i of (score[j] -
// overlapPenalty(i,j) - offDiagonalPenalty(i,j)), and returns the
// highest-scoring chain via traceback.
func bestChain(ms []Match, cfg Config) ([]Match, int) {
	n := len(ms)
	score := make([]int, n)
	from := make([]int, n)
	for i := range from {
		from[i] = -1
	}
	best, bestAt := math.MinInt32, -1
	for i := 0; i < n; i++ {
		score[i] = ms[i].Len()
		for j := 0; j < i; j++ {
			if ms[j].SB >= ms[i].SB || ms[j].SA >= ms[i].SA {
				continue // chain must be strictly increasing in both sequences
			}
			overlapA := overlapLen(ms[j].SA, ms[j].EA, ms[i].SA, ms[i].EA)
			overlapB := overlapLen(ms[j].SB, ms[j].EB, ms[i].SB, ms[i].EB)
			overlapPenalty := overlapA
			if overlapB > overlapPenalty {
				overlapPenalty = overlapB
			}
			offDiag := ms[i].Diagonal() - ms[j].Diagonal()
			if offDiag < 0 {
				offDiag = -offDiag
			}
			cand := score[j] - overlapPenalty - offDiag + ms[i].Len()
			if cand > score[i] {
				score[i] = cand
				from[i] = j
			}
		}
		if score[i] > best {
			best = score[i]
			bestAt = i
		}
	}
	if bestAt < 0 {
		return nil, 0
	}
	var chainIdx []int
	for i := bestAt; i != -1; i = from[i] {
		chainIdx = append(chainIdx, i)
	}
	for l, r := 0, len(chainIdx)-1; l < r; l, r = l+1, r-1 {
		chainIdx[l], chainIdx[r] = chainIdx[r], chainIdx[l]
	}
	chain := make([]Match, len(chainIdx))
	for k, idx := range chainIdx {
		chain[k] = ms[idx]
	}
	finalScore := best
	if cfg.UseExtents && len(chain) > 0 {
		spanA := chain[len(chain)-1].EA - chain[0].SA
		spanB := chain[len(chain)-1].EB - chain[0].SB
		finalScore = spanA
		if spanB > finalScore {
			finalScore = spanB
		}
	}
	return chain, finalScore
}

func removeMatches(ms []Match, chain []Match) []Match {
	used := make(map[Match]bool, len(chain))
	for _, m := range chain {
		used[m] = true
	}
	out := make([]Match, 0, len(ms))
	for _, m := range ms {
		if !used[m] {
			out = append(out, m)
		}
	}
	return out
}

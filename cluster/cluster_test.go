// Copyright © the gomummer contributors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cluster

import "testing"

func TestProcessChainsColinearMatches(t *testing.T) {
	// Three matches on the same diagonal (sB - sA == 10), well within
	// separation and drift bounds, each scoring below minOutputScore
	// alone but well above it combined.
	ms := []Match{
		{SA: 0, EA: 90, SB: 10, EB: 100},
		{SA: 100, EA: 190, SB: 110, EB: 200},
		{SA: 200, EA: 290, SB: 210, EB: 300},
	}
	cfg := DefaultConfig()
	clusters := Process(ms, true, cfg)
	if len(clusters) != 1 {
		t.Fatalf("expected a single cluster, got %d", len(clusters))
	}
	if len(clusters[0].Matches) != 3 {
		t.Fatalf("expected all 3 matches chained, got %d", len(clusters[0].Matches))
	}
	if clusters[0].Score < cfg.MinOutputScore {
		t.Fatalf("score %d below minimum %d", clusters[0].Score, cfg.MinOutputScore)
	}
}

func TestProcessDropsOffDiagonalMatch(t *testing.T) {
	ms := []Match{
		{SA: 0, EA: 300, SB: 0, EB: 300},
		// Far off diagonal and far separated: must not join the cluster.
		{SA: 10000, EA: 10050, SB: 50000, EB: 50050},
	}
	cfg := DefaultConfig()
	clusters := Process(ms, true, cfg)
	if len(clusters) != 1 {
		t.Fatalf("expected only the single large match to form a cluster, got %d clusters", len(clusters))
	}
	if len(clusters[0].Matches) != 1 {
		t.Fatalf("expected the off-diagonal match to stay separate, got %d matches in cluster", len(clusters[0].Matches))
	}
}

func TestMergeSameDiagonalExtendsAndDrops(t *testing.T) {
	ms := []Match{
		{SA: 0, EA: 50, SB: 0, EB: 50},
		// Same diagonal (0), overlapping in query order: should be
		// absorbed into the first match, extending its extent.
		{SA: 30, EA: 100, SB: 30, EB: 100},
	}
	out := mergeSameDiagonal(ms)
	if len(out) != 1 {
		t.Fatalf("expected the two same-diagonal matches to merge into one, got %d", len(out))
	}
	if out[0].SA != 0 || out[0].EA != 100 || out[0].SB != 0 || out[0].EB != 100 {
		t.Fatalf("expected the surviving match to extend to the later one's extent, got %+v", out[0])
	}
}

func TestMergeSameDiagonalLeavesDistinctDiagonalsAlone(t *testing.T) {
	ms := []Match{
		{SA: 0, EA: 50, SB: 0, EB: 50},
		// Overlaps in query order but on a different diagonal: must not
		// be merged.
		{SA: 10, EA: 70, SB: 30, EB: 90},
	}
	out := mergeSameDiagonal(ms)
	if len(out) != 2 {
		t.Fatalf("expected both matches to survive, got %d", len(out))
	}
}

func TestFilterRepeatsSuppressesContainedMatch(t *testing.T) {
	ms := []Match{
		{SA: 0, EA: 100, SB: 0, EB: 100},
		// Shares sA and sB with the first, fully contained: should be
		// suppressed as a repeat-contained match.
		{SA: 0, EA: 40, SB: 0, EB: 40},
	}
	out := filterRepeats(ms)
	if len(out) != 1 {
		t.Fatalf("expected the contained match to be filtered, got %d remaining", len(out))
	}
	if out[0].EA != 100 {
		t.Fatalf("expected the longer match to survive, got %+v", out[0])
	}
}

func TestFilterRepeatsMutualSuppressionOnEqualSpan(t *testing.T) {
	ms := []Match{
		{SA: 0, EA: 50, SB: 0, EB: 50},
		{SA: 0, EA: 50, SB: 0, EB: 50},
	}
	out := filterRepeats(ms)
	if len(out) != 0 {
		t.Fatalf("expected both equal-span matches to mutually suppress, got %d remaining", len(out))
	}
}

func TestProcessBelowMinScoreYieldsNoCluster(t *testing.T) {
	ms := []Match{{SA: 0, EA: 20, SB: 0, EB: 20}}
	cfg := DefaultConfig()
	clusters := Process(ms, true, cfg)
	if len(clusters) != 0 {
		t.Fatalf("expected no cluster below minOutputScore, got %d", len(clusters))
	}
}

func TestDisjointSetUnionFind(t *testing.T) {
	d := NewDisjointSet(5)
	d.Union(0, 1)
	d.Union(1, 2)
	if !d.Connected(0, 2) {
		t.Fatal("expected 0 and 2 to be connected transitively")
	}
	if d.Connected(0, 3) {
		t.Fatal("expected 0 and 3 to be in different sets")
	}
}

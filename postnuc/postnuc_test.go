// Copyright © the gomummer contributors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package postnuc

import (
	"testing"

	"github.com/mummer4/gomummer/align"
	"github.com/mummer4/gomummer/cluster"
)

func newAligner(t *testing.T) *align.Aligner {
	t.Helper()
	a, err := align.New(align.Config{BreakLen: 50, Banding: 0, MatrixType: align.Nucleotide})
	if err != nil {
		t.Fatalf("align.New: %v", err)
	}
	return a
}

func TestExtendClustersBridgesWithinCluster(t *testing.T) {
	A := []byte("ACGTACGTACGT")
	B := []byte("ACGTACGTACGT")
	c := cluster.Cluster{
		Forward: true,
		Matches: []cluster.Match{
			{SA: 0, EA: 4, SB: 0, EB: 4},
			{SA: 8, EA: 12, SB: 8, EB: 12},
		},
	}
	e := New(Config{}, newAligner(t))
	alignments, err := e.ExtendClusters([]cluster.Cluster{c}, A, B)
	if err != nil {
		t.Fatalf("ExtendClusters: %v", err)
	}
	if len(alignments) != 1 {
		t.Fatalf("got %d alignments, want 1: %+v", len(alignments), alignments)
	}
	al := alignments[0]
	if al.SA != 0 || al.EA != 11 || al.SB != 0 || al.EB != 11 {
		t.Fatalf("alignment span = (%d,%d,%d,%d), want (0,11,0,11)", al.SA, al.EA, al.SB, al.EB)
	}
	if len(al.Deltas) != 0 {
		t.Fatalf("expected no edits bridging an exact match, got %v", al.Deltas)
	}
}

func TestExtendClustersDropsShadowedCluster(t *testing.T) {
	A := []byte("ACGTACGTACGT")
	B := []byte("ACGTACGTACGT")
	big := cluster.Cluster{
		Forward: true,
		Matches: []cluster.Match{
			{SA: 0, EA: 4, SB: 0, EB: 4},
			{SA: 8, EA: 12, SB: 8, EB: 12},
		},
	}
	shadowed := cluster.Cluster{
		Forward: true,
		Matches: []cluster.Match{
			{SA: 2, EA: 6, SB: 2, EB: 6},
		},
	}
	e := New(Config{}, newAligner(t))
	alignments, err := e.ExtendClusters([]cluster.Cluster{big, shadowed}, A, B)
	if err != nil {
		t.Fatalf("ExtendClusters: %v", err)
	}
	if len(alignments) != 1 {
		t.Fatalf("got %d alignments, want 1 (shadowed cluster should be dropped): %+v", len(alignments), alignments)
	}
}

func TestExtendClustersToSeqEndExtendsTail(t *testing.T) {
	A := []byte("ACGTACGTACGTACGT")
	B := []byte("ACGTACGTACGTACGT")
	c := cluster.Cluster{
		Forward: true,
		Matches: []cluster.Match{
			{SA: 0, EA: 8, SB: 0, EB: 8},
		},
	}
	e := New(Config{ToSeqEnd: true}, newAligner(t))
	alignments, err := e.ExtendClusters([]cluster.Cluster{c}, A, B)
	if err != nil {
		t.Fatalf("ExtendClusters: %v", err)
	}
	if len(alignments) != 1 {
		t.Fatalf("got %d alignments, want 1", len(alignments))
	}
	al := alignments[0]
	if al.EA != len(A)-1 || al.EB != len(B)-1 {
		t.Fatalf("tail extension = (%d,%d), want (%d,%d)", al.EA, al.EB, len(A)-1, len(B)-1)
	}
}

func TestExtendClustersFusesAcrossClusters(t *testing.T) {
	A := []byte("ACGTACGTACGTACGT")
	B := []byte("ACGTACGTACGTACGT")
	first := cluster.Cluster{
		Forward: true,
		Matches: []cluster.Match{{SA: 0, EA: 4, SB: 0, EB: 4}},
	}
	second := cluster.Cluster{
		Forward: true,
		Matches: []cluster.Match{{SA: 8, EA: 12, SB: 8, EB: 12}},
	}
	e := New(Config{}, newAligner(t))
	alignments, err := e.ExtendClusters([]cluster.Cluster{first, second}, A, B)
	if err != nil {
		t.Fatalf("ExtendClusters: %v", err)
	}
	// The gap between the two clusters' matches is an exact match, so
	// the backward-target fuse should merge them into one alignment
	// rather than leaving two separate ones.
	if len(alignments) != 1 {
		t.Fatalf("got %d alignments, want 1 (expected a fuse across clusters): %+v", len(alignments), alignments)
	}
	al := alignments[0]
	if al.SA != 0 || al.EA != 11 || al.SB != 0 || al.EB != 11 {
		t.Fatalf("fused span = (%d,%d,%d,%d), want (0,11,0,11)", al.SA, al.EA, al.SB, al.EB)
	}
}

func TestAlignmentDeltaApos(t *testing.T) {
	al := Alignment{Deltas: []int{3, -2, 5}}
	// |3| + |2| + |5| - (1 negative) = 10 - 1 = 9
	if got := al.DeltaApos(); got != 9 {
		t.Fatalf("DeltaApos = %d, want 9", got)
	}
}

// Copyright © the gomummer contributors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

import (
	"reflect"
	"testing"
)

func TestAlignTargetIdenticalSequences(t *testing.T) {
	a, err := New(Config{BreakLen: 10, Banding: 0, MatrixType: Nucleotide})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	A := []byte("ACGTACGT")
	B := []byte("ACGTACGT")
	reached, aEnd, bEnd, score, delta, err := a.AlignTarget(A, B, 0, 7, 0, 7, ForwardAlign)
	if err != nil {
		t.Fatalf("AlignTarget: %v", err)
	}
	if !reached {
		t.Fatal("expected the alignment to reach its target")
	}
	if aEnd != 7 || bEnd != 7 {
		t.Fatalf("endpoints = (%d,%d), want (7,7)", aEnd, bEnd)
	}
	if len(delta) != 0 {
		t.Fatalf("expected no edits, got %v", delta)
	}
	// 8 matches at +2 each.
	if score != 16 {
		t.Fatalf("score = %d, want 16", score)
	}
}

func TestAlignTargetSingleDeletion(t *testing.T) {
	a, err := New(Config{BreakLen: 200, Banding: 0, MatrixType: Nucleotide})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	A := []byte("ACGTACGT")
	B := []byte("ACGTCGT")
	reached, aEnd, bEnd, _, delta, err := a.AlignTarget(A, B, 0, 7, 0, 6, ForwardAlign)
	if err != nil {
		t.Fatalf("AlignTarget: %v", err)
	}
	if !reached {
		t.Fatal("expected the alignment to reach its target")
	}
	if aEnd != 7 || bEnd != 6 {
		t.Fatalf("endpoints = (%d,%d), want (7,6)", aEnd, bEnd)
	}
	want := []int{-5}
	if !reflect.DeepEqual(delta, want) {
		t.Fatalf("delta = %v, want %v", delta, want)
	}
}

func TestAlignSearchReachesTarget(t *testing.T) {
	a, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	A := []byte("ACGT")
	B := []byte("ACGT")
	reached, aEnd, bEnd, _, err := a.AlignSearch(A, B, 0, 3, 0, 3, ForwardSearch)
	if err != nil {
		t.Fatalf("AlignSearch: %v", err)
	}
	if !reached || aEnd != 3 || bEnd != 3 {
		t.Fatalf("got reached=%v end=(%d,%d), want true (3,3)", reached, aEnd, bEnd)
	}
}

func TestAlignSearchBreakLengthFalloff(t *testing.T) {
	a, err := New(Config{BreakLen: 1, Banding: 0, MatrixType: Nucleotide})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// First two bases match, the last two diverge with no way to
	// recover a better score: the search should fall off before
	// reaching the nominal target.
	A := []byte("AATT")
	B := []byte("AAGG")
	reached, aEnd, bEnd, _, err := a.AlignSearch(A, B, 0, 3, 0, 3, ForwardSearch)
	if err != nil {
		t.Fatalf("AlignSearch: %v", err)
	}
	if reached {
		t.Fatal("expected the search to fall off before reaching the target")
	}
	if aEnd != 1 || bEnd != 1 {
		t.Fatalf("falloff endpoints = (%d,%d), want (1,1)", aEnd, bEnd)
	}
}

func TestForcedModeIgnoresScoreDecline(t *testing.T) {
	a, err := New(Config{BreakLen: 1, Banding: 0, MatrixType: Nucleotide})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	A := []byte("AATT")
	B := []byte("AAGG")
	reached, aEnd, bEnd, _, err := a.AlignSearch(A, B, 0, 3, 0, 3, ForcedForwardSearch)
	if err != nil {
		t.Fatalf("AlignSearch: %v", err)
	}
	if !reached || aEnd != 3 || bEnd != 3 {
		t.Fatalf("forced search got reached=%v end=(%d,%d), want true (3,3)", reached, aEnd, bEnd)
	}
}

func TestBufferedAlignerMatchesStateless(t *testing.T) {
	ba, err := NewBuffered(Config{BreakLen: 10, Banding: 0, MatrixType: Nucleotide})
	if err != nil {
		t.Fatalf("NewBuffered: %v", err)
	}
	A := []byte("ACGTACGT")
	B := []byte("ACGTACGT")
	reached, aEnd, bEnd, _, delta, err := ba.AlignTarget(A, B, 0, 7, 0, 7, ForwardAlign)
	if err != nil {
		t.Fatalf("AlignTarget: %v", err)
	}
	if !reached || aEnd != 7 || bEnd != 7 || len(delta) != 0 {
		t.Fatalf("buffered aligner result mismatch: reached=%v end=(%d,%d) delta=%v", reached, aEnd, bEnd, delta)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, err := New(Config{BreakLen: 0}); err == nil {
		t.Fatal("expected error for break length 0")
	}
	if _, err := New(Config{BreakLen: 10, Banding: -1}); err == nil {
		t.Fatal("expected error for negative banding")
	}
	if _, err := New(Config{BreakLen: 10, MatrixType: MatrixType(99)}); err == nil {
		t.Fatal("expected error for unknown matrix type")
	}
}

func TestAlignTargetRejectsSearchModus(t *testing.T) {
	a, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	A := []byte("ACGT")
	B := []byte("ACGT")
	if _, _, _, _, _, err := a.AlignTarget(A, B, 0, 3, 0, 3, ForwardSearch); err == nil {
		t.Fatal("expected an error passing a search modus to AlignTarget")
	}
}

func TestAlignSearchRejectsNonSearchModus(t *testing.T) {
	a, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	A := []byte("ACGT")
	B := []byte("ACGT")
	if _, _, _, _, err := a.AlignSearch(A, B, 0, 3, 0, 3, ForwardAlign); err == nil {
		t.Fatal("expected an error passing a non-search modus to AlignSearch")
	}
}

func TestProteinMatrixIdenticalSequences(t *testing.T) {
	a, err := New(Config{BreakLen: 50, Banding: 0, MatrixType: Protein62})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	A := []byte("MKVLA")
	B := []byte("MKVLA")
	reached, aEnd, bEnd, _, delta, err := a.AlignTarget(A, B, 0, 4, 0, 4, ForwardAlign)
	if err != nil {
		t.Fatalf("AlignTarget: %v", err)
	}
	if !reached || aEnd != 4 || bEnd != 4 || len(delta) != 0 {
		t.Fatalf("protein identical-sequence alignment mismatch: reached=%v end=(%d,%d) delta=%v", reached, aEnd, bEnd, delta)
	}
}

// Copyright © the gomummer contributors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package suffixtree

import (
	"testing"

	"github.com/mummer4/gomummer/seed"
)

func TestFindMEMBanana(t *testing.T) {
	tree, err := Build([]byte("banana"), 1)
	if err != nil {
		t.Fatal(err)
	}
	var got []seed.Match
	if err := tree.findMEM([]byte("anan"), 2, func(m seed.Match) { got = append(got, m) }); err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 {
		t.Fatal("expected at least one MEM for \"anan\" against \"banana\"")
	}
	found := false
	for _, m := range got {
		if m.RefPos == 1 && m.QryPos == 0 && m.Len == 4 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected match {RefPos:1 QryPos:0 Len:4}, got %+v", got)
	}
}

func TestFindMAMUniqueOnly(t *testing.T) {
	// "xyzxyzabc": "abc" occurs once, "xyz" occurs twice.
	tree, err := Build([]byte("xyzxyzabc"), 1)
	if err != nil {
		t.Fatal(err)
	}
	var got []seed.Match
	if err := tree.findMAM([]byte("abc"), 3, func(m seed.Match) { got = append(got, m) }); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].RefPos != 6 {
		t.Fatalf("expected a single unique match at RefPos 6, got %+v", got)
	}

	got = nil
	if err := tree.findMAM([]byte("xyz"), 3, func(m seed.Match) { got = append(got, m) }); err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("xyz is not reference-unique, expected no MAM, got %+v", got)
	}
}

func TestFindMAMRequiresDenseTree(t *testing.T) {
	tree, err := Build([]byte("banana"), 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := tree.findMAM([]byte("ana"), 1, func(seed.Match) {}); err == nil {
		t.Fatal("expected an error for findMAM on a sparse tree")
	}
}

func TestFindMUMFiltersDominatedCandidates(t *testing.T) {
	tree, err := Build([]byte("abcdefghij"), 1)
	if err != nil {
		t.Fatal(err)
	}
	var got []seed.Match
	if err := tree.findMUM([]byte("abcdefghij"), 3, func(m seed.Match) { got = append(got, m) }); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].RefPos != 0 || got[0].Len != 10 {
		t.Fatalf("expected the single whole-string MUM, got %+v", got)
	}
}

func TestBuildRejectsNonPositiveSampling(t *testing.T) {
	if _, err := Build([]byte("abc"), 0); err == nil {
		t.Fatal("expected BadArgs for a zero sampling factor")
	}
}

func TestFindMEMRejectsNilQuery(t *testing.T) {
	tree, err := Build([]byte("abc"), 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := tree.findMEM(nil, 1, func(seed.Match) {}); err == nil {
		t.Fatal("expected BadArgs for a nil query")
	}
}


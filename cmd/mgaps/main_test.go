// Copyright © the gomummer contributors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/mummer4/gomummer/cluster"
)

// TestRunChainsOverlappingMatches feeds two overlapping matches through
// one header group and checks the adjusted start/length and gap
// columns of the emitted chain.
func TestRunChainsOverlappingMatches(t *testing.T) {
	in := strings.NewReader(`> seq1 vs seq2
100 200 50
145 245 50
`)
	cfg := cluster.DefaultConfig()
	cfg.MinOutputScore = 0

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if err := run(in, w, cfg, false, false); err != nil {
		t.Fatalf("run: %v", err)
	}
	w.Flush()

	want := "> seq1 vs seq2\n" +
		"     100      200     50    none      -      -\n" +
		"     150      250     45      -5      0      0\n" +
		"#\n"
	if buf.String() != want {
		t.Fatalf("output mismatch:\ngot:\n%q\nwant:\n%q", buf.String(), want)
	}
}

// TestRunExternalMatchesMemoryResult checks that -external mode
// produces byte-identical output to the in-memory path.
func TestRunExternalMatchesMemoryResult(t *testing.T) {
	src := `> seq1 vs seq2
100 200 50
145 245 50
`
	cfg := cluster.DefaultConfig()
	cfg.MinOutputScore = 0

	var memBuf, extBuf bytes.Buffer
	wMem := bufio.NewWriter(&memBuf)
	if err := run(strings.NewReader(src), wMem, cfg, false, false); err != nil {
		t.Fatalf("run (memory): %v", err)
	}
	wMem.Flush()

	wExt := bufio.NewWriter(&extBuf)
	if err := run(strings.NewReader(src), wExt, cfg, false, true); err != nil {
		t.Fatalf("run (external): %v", err)
	}
	wExt.Flush()

	if memBuf.String() != extBuf.String() {
		t.Fatalf("external mode diverged from memory mode:\nmemory:\n%q\nexternal:\n%q", memBuf.String(), extBuf.String())
	}
}

// TestRunDropsLowScoringRun checks that a run whose best chain never
// reaches MinOutputScore still emits its header line, with no chain
// rows after it, matching mgaps.cc's Process_Matches always writing
// the label even when a run produces zero good matches.
func TestRunDropsLowScoringRun(t *testing.T) {
	in := strings.NewReader(`> seq1 vs seq2
100 200 10
`)
	cfg := cluster.DefaultConfig() // MinOutputScore defaults to 200

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if err := run(in, w, cfg, false, false); err != nil {
		t.Fatalf("run: %v", err)
	}
	w.Flush()

	if got, want := buf.String(), "> seq1 vs seq2\n"; got != want {
		t.Fatalf("expected only the header line, got %q, want %q", got, want)
	}
}

// TestRunMultipleChainsSeparatedByHash checks that a second accepted
// chain within the same header group is separated by a bare "#" line
// rather than repeating the header.
func TestRunMultipleChainsSeparatedByHash(t *testing.T) {
	in := strings.NewReader(`> seq1 vs seq2
0 0 300
10000 10000 300
`)
	cfg := cluster.DefaultConfig()
	cfg.MinOutputScore = 0

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if err := run(in, w, cfg, false, false); err != nil {
		t.Fatalf("run: %v", err)
	}
	w.Flush()

	out := buf.String()
	if strings.Count(out, "> seq1 vs seq2") != 1 {
		t.Fatalf("expected exactly one header line, got:\n%s", out)
	}
	if strings.Count(out, "#\n") != 2 {
		t.Fatalf("expected two chain terminators, got:\n%s", out)
	}
}

// TestRunRejectsNonAlternatingLabels exercises -C's alternating
// Forward/Reverse header validation.
func TestRunRejectsNonAlternatingLabels(t *testing.T) {
	in := strings.NewReader(`> seq1 vs seq2 Forward
100 200 50
> seq1 vs seq2 Forward
100 200 50
`)
	cfg := cluster.DefaultConfig()

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if err := run(in, w, cfg, true, false); err == nil {
		t.Fatal("expected an error for non-alternating header labels")
	}
}

// TestSimpleAdjNoOverlap confirms adjacent, non-overlapping matches
// produce a zero adjustment.
func TestSimpleAdjNoOverlap(t *testing.T) {
	prev := cluster.Match{SA: 0, EA: 50, SB: 0, EB: 50}
	cur := cluster.Match{SA: 100, EA: 150, SB: 100, EB: 150}
	if got := simpleAdj(prev, cur); got != 0 {
		t.Fatalf("simpleAdj() = %d, want 0", got)
	}
}

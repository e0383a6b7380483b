// Copyright © the gomummer contributors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package delta

import (
	"bytes"
	"io"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteHeader("ref.fasta", "qry.fasta", NUCMER); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	rec := Record{
		RefID: "chr1", QryID: "contig7",
		RefLen: 5000, QryLen: 4800,
		SA: 100, EA: 300, SB: 90, EB: 290,
		Errors: 2, SimErrors: 1, NonAlphas: 0,
		Deltas: []int{5, -3, 12},
	}
	if err := w.WriteRecord(rec); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if r.RefPath != "ref.fasta" || r.QryPath != "qry.fasta" || r.Program != NUCMER {
		t.Fatalf("unexpected header: %+v", r)
	}
	got, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got.RefID != rec.RefID || got.QryID != rec.QryID {
		t.Fatalf("id mismatch: got %+v", got)
	}
	if got.SA != rec.SA || got.EA != rec.EA || got.SB != rec.SB || got.EB != rec.EB {
		t.Fatalf("span mismatch: got %+v", got)
	}
	if len(got.Deltas) != len(rec.Deltas) {
		t.Fatalf("delta length mismatch: got %v want %v", got.Deltas, rec.Deltas)
	}
	for i, d := range rec.Deltas {
		if got.Deltas[i] != d {
			t.Fatalf("delta[%d] = %d, want %d", i, got.Deltas[i], d)
		}
	}

	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF after single record, got %v", err)
	}
}

func TestWriteRecordRejectsLiteralZeroDelta(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteHeader("a", "b", NUCMER); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	err := w.WriteRecord(Record{RefID: "x", QryID: "y", Deltas: []int{0}})
	if err == nil {
		t.Fatal("expected error writing a literal zero delta entry")
	}
}

func TestWriteRecordRequiresHeaderFirst(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteRecord(Record{RefID: "x", QryID: "y"}); err == nil {
		t.Fatal("expected error writing a record before the header")
	}
}

func TestNewReaderRejectsUnknownProgram(t *testing.T) {
	in := "ref.fasta qry.fasta\nBOGUS\n"
	if _, err := NewReader(bytes.NewBufferString(in)); err == nil {
		t.Fatal("expected error for unrecognized program identifier")
	}
}

func TestDeltaApos(t *testing.T) {
	r := Record{Deltas: []int{5, -3, 2}}
	// 5 (insertion) + (3-1) (deletion) + 2 (insertion) = 9
	if got := r.DeltaApos(); got != 9 {
		t.Fatalf("DeltaApos() = %d, want 9", got)
	}
}

func TestCompressedRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w, closer := NewCompressedWriter(&buf)
	if err := w.WriteHeader("ref.fasta", "qry.fasta", PROMER); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	rec := Record{RefID: "p1", QryID: "q1", SA: 1, EA: 2, SB: 1, EB: 2, Deltas: []int{1}}
	if err := w.WriteRecord(rec); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := NewCompressedReader(&buf)
	if err != nil {
		t.Fatalf("NewCompressedReader: %v", err)
	}
	if r.Program != PROMER {
		t.Fatalf("program = %v, want PROMER", r.Program)
	}
	got, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got.RefID != "p1" {
		t.Fatalf("unexpected record: %+v", got)
	}
}

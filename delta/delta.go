// Copyright © the gomummer contributors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package delta reads and writes the canonical delta alignment file
// format: a header naming the two FASTA inputs and the alignment
// program, followed by one record per alignment and a signed,
// zero-terminated edit script per record.
package delta

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/golang/snappy"
	"github.com/mummer4/gomummer/core"
)

// Program names the alignment kind a delta file holds, matching the
// NUCMER/PROMER identifiers the original format uses.
type Program string

const (
	NUCMER Program = "NUCMER"
	PROMER Program = "PROMER"
)

// Record is one alignment's entry in a delta file: the span in each
// sequence, the running error counters, and the signed edit script.
// deltaApos — the sum of the absolute value of every delta entry minus
// the count of negative entries — is an invariant derivable from Deltas
// rather than stored, so it is exposed as a method, not a field.
type Record struct {
	RefID, QryID   string
	RefLen, QryLen int
	SA, EA         int
	SB, EB         int
	Errors         int
	SimErrors      int
	NonAlphas      int
	Deltas         []int
}

// DeltaApos returns the running sum spec.md calls for:
// Σ|delta[i]| − count(delta[i] < 0).
func (r Record) DeltaApos() int {
	sum := 0
	for _, d := range r.Deltas {
		if d < 0 {
			sum += -d - 1
		} else {
			sum += d
		}
	}
	return sum
}

// Writer serializes a sequence of Records into the wire format, a
// header line identifying the two FASTA inputs and the program once,
// followed by one block per Record.
type Writer struct {
	w           *bufio.Writer
	wroteHeader bool
}

// NewWriter wraps w. WriteHeader must be called exactly once before any
// WriteRecord call.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteHeader writes the file's first two lines: the reference and
// query FASTA paths, then the program identifier.
func (dw *Writer) WriteHeader(refPath, qryPath string, program Program) error {
	if dw.wroteHeader {
		return core.New(core.Mgaps, core.BadArgs, "delta header already written")
	}
	if _, err := fmt.Fprintf(dw.w, "%s %s\n%s\n", refPath, qryPath, program); err != nil {
		return err
	}
	dw.wroteHeader = true
	return nil
}

// WriteRecord appends one alignment record: its `>refId qryId refLen
// qryLen` line, its `sA eA sB eB Errors SimErrors NonAlphas` line, then
// one delta integer per line terminated by a 0 line. A delta script
// must never itself contain a literal 0 — that value is reserved as the
// wire terminator.
func (dw *Writer) WriteRecord(r Record) error {
	if !dw.wroteHeader {
		return core.New(core.Mgaps, core.BadArgs, "delta header not yet written")
	}
	for _, d := range r.Deltas {
		if d == 0 {
			return core.New(core.Mgaps, core.MalformedInput, "delta script contains a literal zero")
		}
	}
	if _, err := fmt.Fprintf(dw.w, ">%s %s %d %d\n", r.RefID, r.QryID, r.RefLen, r.QryLen); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(dw.w, "%d %d %d %d %d %d %d\n",
		r.SA, r.EA, r.SB, r.EB, r.Errors, r.SimErrors, r.NonAlphas); err != nil {
		return err
	}
	for _, d := range r.Deltas {
		if _, err := fmt.Fprintf(dw.w, "%d\n", d); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(dw.w, 0)
	return err
}

// Flush flushes any buffered output to the underlying writer.
func (dw *Writer) Flush() error { return dw.w.Flush() }

// NewCompressedWriter wraps w in a snappy block stream before handing it
// to NewWriter, for callers writing whole-genome delta output straight
// to disk. The returned Closer finishes the snappy frame only: call the
// Writer's Flush first so its buffered delta output reaches the stream.
func NewCompressedWriter(w io.Writer) (*Writer, io.Closer) {
	sw := snappy.NewBufferedWriter(w)
	dw := NewWriter(sw)
	return dw, sw
}

// NewCompressedReader wraps r in a snappy block reader before handing it
// to NewReader, mirroring NewCompressedWriter.
func NewCompressedReader(r io.Reader) (*Reader, error) {
	return NewReader(snappy.NewReader(r))
}

// Reader parses a delta file written by Writer.
type Reader struct {
	sc               *bufio.Scanner
	RefPath, QryPath string
	Program          Program
}

// NewReader wraps r and parses the two header lines immediately.
func NewReader(r io.Reader) (*Reader, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	if !sc.Scan() {
		return nil, core.New(core.Mgaps, core.MalformedInput, "empty delta file")
	}
	paths := strings.Fields(sc.Text())
	if len(paths) != 2 {
		return nil, core.New(core.Mgaps, core.MalformedInput, "malformed delta path header")
	}
	if !sc.Scan() {
		return nil, core.New(core.Mgaps, core.MalformedInput, "missing program header")
	}
	prog := Program(strings.TrimSpace(sc.Text()))
	if prog != NUCMER && prog != PROMER {
		return nil, core.New(core.Mgaps, core.MalformedInput, "unrecognized program: "+string(prog))
	}
	return &Reader{sc: sc, RefPath: paths[0], QryPath: paths[1], Program: prog}, nil
}

// Next returns the next Record, or io.EOF once the file is exhausted.
func (dr *Reader) Next() (Record, error) {
	var rec Record
	if !dr.sc.Scan() {
		if err := dr.sc.Err(); err != nil {
			return rec, err
		}
		return rec, io.EOF
	}
	header := strings.TrimPrefix(dr.sc.Text(), ">")
	fields := strings.Fields(header)
	if len(fields) != 4 {
		return rec, core.New(core.Mgaps, core.MalformedInput, "malformed record header: "+header)
	}
	rec.RefID, rec.QryID = fields[0], fields[1]
	var err error
	if rec.RefLen, err = strconv.Atoi(fields[2]); err != nil {
		return rec, core.New(core.Mgaps, core.MalformedInput, "bad refLen")
	}
	if rec.QryLen, err = strconv.Atoi(fields[3]); err != nil {
		return rec, core.New(core.Mgaps, core.MalformedInput, "bad qryLen")
	}

	if !dr.sc.Scan() {
		return rec, core.New(core.Mgaps, core.MalformedInput, "truncated record: missing span line")
	}
	spanFields := strings.Fields(dr.sc.Text())
	if len(spanFields) != 7 {
		return rec, core.New(core.Mgaps, core.MalformedInput, "malformed span line")
	}
	spans := [7]*int{&rec.SA, &rec.EA, &rec.SB, &rec.EB, &rec.Errors, &rec.SimErrors, &rec.NonAlphas}
	for i, sp := range spans {
		v, err := strconv.Atoi(spanFields[i])
		if err != nil {
			return rec, core.New(core.Mgaps, core.MalformedInput, "bad span field")
		}
		*sp = v
	}

	for dr.sc.Scan() {
		v, err := strconv.Atoi(strings.TrimSpace(dr.sc.Text()))
		if err != nil {
			return rec, core.New(core.Mgaps, core.MalformedInput, "bad delta integer")
		}
		if v == 0 {
			return rec, nil
		}
		rec.Deltas = append(rec.Deltas, v)
	}
	return rec, core.New(core.Mgaps, core.MalformedInput, "unterminated delta script")
}

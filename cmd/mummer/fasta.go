// Copyright © the gomummer contributors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/biogo/biogo/alphabet"
	bioseqio "github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/biogo/hts/fai"
)

// record is the plain (id, bytes) pair the core pipeline consumes;
// FASTA reading stays entirely at this command's boundary, as spec.md
// §1 requires.
type record struct {
	id  string
	seq []byte
}

// loadRecords reads every record of a FASTA file into memory, the way
// cmd/ins/fragment.go's split reads a whole genome file before
// fragmenting it. Used for the subject side, which is indexed once and
// kept resident for the life of the run regardless.
func loadRecords(path string) ([]record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var out []record
	sc := bioseqio.NewScanner(fasta.NewReader(f, linear.NewSeq("", nil, alphabet.DNA)))
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		out = append(out, record{id: s.ID, seq: letterBytes(s.Seq)})
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return out, nil
}

// forEachQueryRecord visits every query record one at a time via
// biogo/hts/fai random access, so a multi-gigabase query FASTA never
// needs to sit entirely in memory: only the record fn is currently
// processing is ever resident, mirroring cmd/ins/main.go's
// fai.NewIndex/fai.NewFile use for on-demand sequence extraction.
func forEachQueryRecord(path string, fn func(record) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	idx, err := fai.NewIndex(f)
	if err != nil {
		return fmt.Errorf("indexing %s: %w", path, err)
	}

	names := make([]string, 0, len(idx))
	lengths := make(map[string]int, len(idx))
	for name, rec := range idx {
		names = append(names, name)
		lengths[name] = rec.Length
	}
	sort.Strings(names)

	qfa := fai.NewFile(f, idx)
	for _, name := range names {
		r, err := qfa.SeqRange(name, 0, lengths[name])
		if err != nil {
			return fmt.Errorf("reading %s from %s: %w", name, path, err)
		}
		b := make([]byte, lengths[name])
		if _, err := io.ReadFull(r, b); err != nil {
			return fmt.Errorf("reading %s from %s: %w", name, path, err)
		}
		if err := fn(record{id: name, seq: b}); err != nil {
			return err
		}
	}
	return nil
}

// letterBytes converts a biogo alphabet.Letters sequence into the plain
// byte slice the core pipeline operates on.
func letterBytes(l alphabet.Letters) []byte {
	return l.Bytes()
}

// Copyright © the gomummer contributors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/mummer4/gomummer/seed"
	"github.com/mummer4/gomummer/seqio"
	"github.com/mummer4/gomummer/suffixtree"
)

// refIndex pairs one reference record with the suffix tree built over
// it.
type refIndex struct {
	id     string
	length int
	tree   *suffixtree.Tree
}

// buildIndex builds a dense (k=1) suffix tree over seq: findMAM and
// findMUM both require the full suffix array spec.md §4.1.2 calls for.
func buildIndex(seq []byte) (*suffixtree.Tree, error) {
	return suffixtree.Build(seq, 1)
}

// searchConfig bundles the flag-derived settings searchQuery needs.
type searchConfig struct {
	flavor     seed.Flavor
	minLen     int
	onlyACGT   bool
	forward    bool
	reverse    bool
	showSubstr bool
	origCoords bool
	forceFour  bool
}

// maskNonACGT returns a copy of seq with every byte outside {A,C,G,T}
// replaced by a distinct, never-repeating placeholder so that no two
// ambiguous positions can ever compare equal during a match: the same
// technique the original engine's "-n" flag relies on, reusing
// DNA-alphabet rejection without special-casing the suffix tree itself.
func maskNonACGT(seq []byte) []byte {
	out := make([]byte, len(seq))
	next := byte(1)
	for i, b := range seq {
		switch b {
		case 'A', 'C', 'G', 'T':
			out[i] = b
		default:
			// Bytes 1..8 never collide with an uppercase ACGT base (0x41,
			// 0x43, 0x47, 0x54) or with each other across positions more
			// than 8 apart; within 8 positions a repeat only suppresses a
			// match that a real base would have suppressed too, since
			// -n's whole point is to never let ambiguous bases align.
			out[i] = next
			next++
			if next == 0 {
				next = 1
			}
		}
	}
	return out
}

// searchQuery runs every configured flavor/strand combination of q
// against every reference index and writes one match line per hit.
func searchQuery(indices []refIndex, q record, cfg searchConfig, out io.Writer, emitLen func(int)) error {
	qseq := q.seq
	if cfg.onlyACGT {
		qseq = maskNonACGT(qseq)
	}

	multiRef := cfg.forceFour || len(indices) > 1

	if cfg.forward {
		for _, ri := range indices {
			err := ri.tree.Find(cfg.flavor, qseq, cfg.minLen, true, func(m seed.Match) {
				emitLen(m.Len)
				writeMatch(out, ri.id, multiRef, m.RefPos+1, m.QryPos+1, m.Len, cfg.showSubstr, qseq[m.QryPos:m.QryPos+m.Len])
			})
			if err != nil {
				return err
			}
		}
	}

	if cfg.reverse {
		rev := seqio.NewFromBytes(q.id, qseq).ReverseComplement(q.id)
		revBytes := rev.Slice(0, rev.Len())
		qryLen := len(qseq)
		for _, ri := range indices {
			err := ri.tree.Find(cfg.flavor, revBytes, cfg.minLen, false, func(m seed.Match) {
				emitLen(m.Len)
				qryPos := m.QryPos
				if cfg.origCoords {
					qryPos = qryLen - m.QryPos - m.Len
				}
				writeMatch(out, ri.id, multiRef, m.RefPos+1, qryPos+1, m.Len, cfg.showSubstr, revBytes[m.QryPos:m.QryPos+m.Len])
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func writeMatch(out io.Writer, refID string, multiRef bool, refPos, qryPos, length int, showSubstr bool, substr []byte) {
	var line bytes.Buffer
	if multiRef {
		fmt.Fprintf(&line, "%-12s %8d %8d %8d", refID, refPos, qryPos, length)
	} else {
		fmt.Fprintf(&line, "%8d %8d %8d", refPos, qryPos, length)
	}
	if showSubstr {
		fmt.Fprintf(&line, " %s", substr)
	}
	fmt.Fprintln(out, line.String())
}

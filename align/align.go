// Copyright © the gomummer contributors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package align implements the banded Smith–Waterman core that extends
// a cluster's seed matches into a gapped alignment: alignSearch probes
// how far an extension can go, alignTarget produces the signed delta
// edit script for a chosen extension.
package align

import (
	"github.com/mummer4/gomummer/core"
)

// Modus operandi bit masks, unchanged from the original engine's naming
// so extension logic reads the same way regardless of which language
// it is written in.
const (
	DirectionBit uint = 0x1
	SearchBit    uint = 0x2
	ForcedBit    uint = 0x4
	OptimalBit   uint = 0x8
	SeqEndBit    uint = 0x10
)

// Composed modes of the primary alignment functions.
const (
	ForwardAlign        = 0x1
	OptimalForwardAlign = 0x9
	ForcedForwardAlign  = 0x5

	ForwardSearch        = 0x3
	OptimalForwardSearch = 0xB
	ForcedForwardSearch  = 0x7

	BackwardSearch        = 0x2
	OptimalBackwardSearch = 0xA
	ForcedBackwardSearch  = 0x6
)

// MaxSearchLength bounds alignSearch's extent in either sequence.
const MaxSearchLength = 10000

// MaxAlignmentLength bounds alignTarget's extent in either sequence.
const MaxAlignmentLength = 10000

// Config holds an Aligner's tunables.
type Config struct {
	BreakLen   int
	Banding    int
	MatrixType MatrixType
}

// DefaultConfig returns the engine's documented defaults: extend 200
// bases past the best score before giving up, no fixed band, DNA
// scoring.
func DefaultConfig() Config {
	return Config{BreakLen: 200, Banding: 0, MatrixType: Nucleotide}
}

// Aligner runs banded Smith–Waterman extension. It is stateless and
// safe for concurrent use: every call allocates its own DiagonalMatrix.
type Aligner struct {
	cfg    Config
	scorer scorer
}

// New validates cfg and returns a ready Aligner.
func New(cfg Config) (*Aligner, error) {
	if cfg.BreakLen < 1 || cfg.BreakLen > MaxAlignmentLength {
		return nil, core.New(core.SWAlign, core.BadArgs, "break length must be between 1 and MaxAlignmentLength")
	}
	if cfg.Banding < 0 {
		return nil, core.New(core.SWAlign, core.BadArgs, "banding must be >= 0")
	}
	sc, err := newScorer(cfg.MatrixType)
	if err != nil {
		return nil, err
	}
	return &Aligner{cfg: cfg, scorer: sc}, nil
}

// BreakLen reports the configured break length.
func (a *Aligner) BreakLen() int { return a.cfg.BreakLen }

// Banding reports the configured band width (0 = unbanded).
func (a *Aligner) Banding() int { return a.cfg.Banding }

// MatrixType reports the configured scoring matrix.
func (a *Aligner) MatrixType() MatrixType { return a.cfg.MatrixType }

// BufferedAligner wraps an Aligner and reuses a single DiagonalMatrix
// across calls, trading thread-safety for avoiding repeated
// allocation. Callers must serialize their own access.
type BufferedAligner struct {
	*Aligner
	diag *DiagonalMatrix
}

// NewBuffered wraps cfg's Aligner with a reusable scratch matrix.
func NewBuffered(cfg Config) (*BufferedAligner, error) {
	a, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return &BufferedAligner{Aligner: a, diag: NewDiagonalMatrix()}, nil
}

// AlignSearch runs ba's Aligner reusing the buffered scratch matrix.
// Not safe for concurrent use.
func (ba *BufferedAligner) AlignSearch(A, B []byte, Astart, Aend, Bstart, Bend int, modus uint) (reached bool, newAend, newBend, score int, err error) {
	ba.diag.Clear()
	return ba.Aligner.alignSearchWith(A, B, Astart, Aend, Bstart, Bend, modus, ba.diag)
}

// AlignTarget runs ba's Aligner reusing the buffered scratch matrix.
// Not safe for concurrent use.
func (ba *BufferedAligner) AlignTarget(A, B []byte, Astart, Aend, Bstart, Bend int, modus uint) (reached bool, newAend, newBend, score int, delta []int, err error) {
	ba.diag.Clear()
	return ba.Aligner.alignTargetWith(A, B, Astart, Aend, Bstart, Bend, modus, ba.diag)
}

// AlignSearch aligns A and B starting at (Astart,Bstart), advancing
// toward (Aend,Bend) until the cumulative score stops improving for
// BreakLen bases or the target is reached. It reports whether the
// target was reached; when it was not, newAend/newBend hold the
// falloff position. score is the cumulative score at the returned
// endpoint, letting a caller judge whether a reached-but-poor
// extension is worth keeping. Positions are 0-indexed and inclusive on
// both ends — the original engine's 1-indexed-with-sentinel convention
// has no Go equivalent worth keeping once slices replace raw C arrays.
func (a *Aligner) AlignSearch(A, B []byte, Astart, Aend, Bstart, Bend int, modus uint) (reached bool, newAend, newBend, score int, err error) {
	return a.alignSearchWith(A, B, Astart, Aend, Bstart, Bend, modus, NewDiagonalMatrix())
}

func (a *Aligner) alignSearchWith(A, B []byte, Astart, Aend, Bstart, Bend int, modus uint, diag *DiagonalMatrix) (reached bool, newAend, newBend, score int, err error) {
	if modus&SearchBit == 0 {
		return false, Aend, Bend, 0, core.New(core.SWAlign, core.BadArgs, "alignSearch requires a search modus")
	}
	if err := checkBounds(A, B, Astart, Aend, Bstart, Bend, modus, MaxSearchLength); err != nil {
		return false, Aend, Bend, 0, err
	}
	reached, fAend, fBend, sc, _, err := a.engine(A, B, Astart, Aend, Bstart, Bend, modus, diag, false)
	return reached, fAend, fBend, sc, err
}

// AlignTarget aligns A and B the same way AlignSearch does, but
// preserves the DP matrix and returns the signed delta edit script for
// the extension (without the wire-format terminator; delta.Writer
// supplies that at serialization time).
func (a *Aligner) AlignTarget(A, B []byte, Astart, Aend, Bstart, Bend int, modus uint) (reached bool, newAend, newBend, score int, delta []int, err error) {
	return a.alignTargetWith(A, B, Astart, Aend, Bstart, Bend, modus, NewDiagonalMatrix())
}

func (a *Aligner) alignTargetWith(A, B []byte, Astart, Aend, Bstart, Bend int, modus uint, diag *DiagonalMatrix) (reached bool, newAend, newBend, score int, delta []int, err error) {
	if modus&SearchBit != 0 || modus&DirectionBit == 0 {
		return false, Aend, Bend, 0, nil, core.New(core.SWAlign, core.BadArgs, "alignTarget requires a forward, non-search modus")
	}
	if err := checkBounds(A, B, Astart, Aend, Bstart, Bend, modus, MaxAlignmentLength); err != nil {
		return false, Aend, Bend, 0, nil, err
	}
	reached, fAend, fBend, sc, d, err := a.engine(A, B, Astart, Aend, Bstart, Bend, modus, diag, true)
	return reached, fAend, fBend, sc, d, err
}

func checkBounds(A, B []byte, Astart, Aend, Bstart, Bend int, modus uint, maxExtent int) error {
	if Astart < 0 || Bstart < 0 || Astart >= len(A) || Bstart >= len(B) {
		return core.New(core.SWAlign, core.BadArgs, "start position out of range")
	}
	if Aend < 0 || Bend < 0 || Aend >= len(A) || Bend >= len(B) {
		return core.New(core.SWAlign, core.BadArgs, "end position out of range")
	}
	forward := modus&DirectionBit != 0
	if forward {
		if Astart > Aend || Bstart > Bend {
			return core.New(core.SWAlign, core.BadArgs, "forward modus requires Astart <= Aend and Bstart <= Bend")
		}
		if Aend-Astart+1 > maxExtent || Bend-Bstart+1 > maxExtent {
			return core.New(core.SWAlign, core.BadArgs, "extent exceeds the configured maximum")
		}
	} else {
		if Astart < Aend || Bstart < Bend {
			return core.New(core.SWAlign, core.BadArgs, "backward modus requires Astart >= Aend and Bstart >= Bend")
		}
		if Astart-Aend+1 > maxExtent || Bstart-Bend+1 > maxExtent {
			return core.New(core.SWAlign, core.BadArgs, "extent exceeds the configured maximum")
		}
	}
	return nil
}

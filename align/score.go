// Copyright © the gomummer contributors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

import (
	"github.com/mummer4/gomummer/core"
)

// MatrixType selects the scoring parameters a BandedAligner uses, DNA or
// one of three protein substitution schemes, matching the four-way
// choice the original engine exposes.
type MatrixType int

const (
	Nucleotide MatrixType = iota
	Protein45
	Protein62
	Protein80
)

func (m MatrixType) String() string {
	switch m {
	case Nucleotide:
		return "nucleotide"
	case Protein45:
		return "protein45"
	case Protein62:
		return "protein62"
	case Protein80:
		return "protein80"
	default:
		return "unknown"
	}
}

// scorer supplies the match/substitution score for a pair of residues
// and the affine gap penalties used by the DP engine.
type scorer struct {
	matrixType         MatrixType
	substitute         func(a, b byte) int
	gapOpen, gapExtend int
}

func newScorer(mt MatrixType) (scorer, error) {
	switch mt {
	case Nucleotide:
		return scorer{matrixType: mt, substitute: nucleotideScore, gapOpen: -3, gapExtend: -1}, nil
	case Protein45, Protein62, Protein80:
		return scorer{matrixType: mt, substitute: proteinScore(mt), gapOpen: proteinGapOpen[mt], gapExtend: proteinGapExtend[mt]}, nil
	default:
		return scorer{}, core.New(core.SWAlign, core.BadArgs, "matrix type must be between 0 and 3")
	}
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

// nucleotideScore is a simple match/mismatch scheme: exact bases (case
// insensitive) score +2, anything else -3.
func nucleotideScore(a, b byte) int {
	if upper(a) == upper(b) {
		return 2
	}
	return -3
}

// aaGroup classifies the standard 20 amino acids into broad chemical
// groups. Residues outside the alphabet (ambiguity codes, stop codons)
// fall into their own group so they never spuriously match.
func aaGroup(b byte) int {
	switch upper(b) {
	case 'A', 'V', 'L', 'I', 'M', 'C':
		return 0 // aliphatic / hydrophobic
	case 'F', 'W', 'Y':
		return 1 // aromatic
	case 'S', 'T', 'N', 'Q':
		return 2 // polar uncharged
	case 'D', 'E':
		return 3 // acidic
	case 'K', 'R', 'H':
		return 4 // basic
	case 'G', 'P':
		return 5 // structural
	default:
		return -1
	}
}

// proteinScore builds a grouped-similarity substitution function for a
// protein matrix type: identical residues score highest, same-group
// residues score a small non-negative amount, everything else a negative
// penalty whose magnitude grows with the matrix's strictness (45 is the
// most permissive of the three, 80 the least).
func proteinScore(mt MatrixType) func(a, b byte) int {
	identical, sameGroup, mismatch := proteinScores[mt][0], proteinScores[mt][1], proteinScores[mt][2]
	return func(a, b byte) int {
		ua, ub := upper(a), upper(b)
		if ua == ub {
			return identical
		}
		ga, gb := aaGroup(ua), aaGroup(ub)
		if ga >= 0 && ga == gb {
			return sameGroup
		}
		return mismatch
	}
}

var proteinScores = map[MatrixType][3]int{
	Protein45: {6, 2, -2},
	Protein62: {7, 1, -3},
	Protein80: {8, 0, -4},
}

var proteinGapOpen = map[MatrixType]int{
	Protein45: -8,
	Protein62: -10,
	Protein80: -12,
}

var proteinGapExtend = map[MatrixType]int{
	Protein45: -1,
	Protein62: -2,
	Protein80: -2,
}

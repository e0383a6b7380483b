// Copyright © the gomummer contributors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package seed defines the Match value produced by a suffix index query and
// streamed into the clusterer, and the Flavor selecting which of MAM, MUM
// or MEM semantics a query uses.
package seed

// Match is a single maximal common substring between a reference and a
// query: T[RefPos:RefPos+Len] == Q[QryPos:QryPos+Len], right-maximal per
// the contract of the Flavor that produced it. Matches are values passed
// by copy down the pipeline and are never mutated after they are emitted.
type Match struct {
	RefPos int
	QryPos int
	Len    int
}

// Flavor selects which family of exact matches a SeedStream extracts.
type Flavor int

const (
	// MEM matches are maximal on both sides with no uniqueness
	// constraint.
	MEM Flavor = iota
	// MAM matches are unique in the reference, not necessarily in the
	// query, and maximal on both sides.
	MAM
	// MUM matches are unique in both reference and query, and maximal
	// on both sides.
	MUM
)

func (f Flavor) String() string {
	switch f {
	case MEM:
		return "MEM"
	case MAM:
		return "MAM"
	case MUM:
		return "MUM"
	default:
		return "unknown"
	}
}

// Emit is the callback a SeedStream invokes once per Match found. Query
// implementations call it synchronously and in increasing query-position
// order; returning early is the caller's prerogative, not the producer's.
type Emit func(Match)

// Stream finds seed matches of the given Flavor between an index built
// over a reference and a supplied query, invoking emit once per match of
// at least minLen. query is scanned exactly as given; forward records
// which strand it holds, so a reverse-strand caller passes the reverse
// complement itself and converts the reported positions as it needs.
type Stream interface {
	Find(flavor Flavor, query []byte, minLen int, forward bool, emit Emit) error
}

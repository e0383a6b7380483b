// Copyright © the gomummer contributors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package seqio provides the immutable byte-sequence view shared by every
// stage of the alignment pipeline, and the two concrete backings (an owned
// buffer and an mmapped file) that satisfy it.
package seqio

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// Source is a byte source indexable in O(1) by position. It is the trait
// called for in the design notes: a single interface implemented by either
// an owned in-memory buffer or a memory-mapped view, so the suffix index
// and the aligner never need to know which.
type Source interface {
	// At returns the byte at i.
	At(i int) byte
	// Len returns the number of bytes in the source.
	Len() int
	// Slice returns the bytes in [i, j).
	Slice(i, j int) []byte
}

// ownedSource is a Source backed by a plain Go byte slice.
type ownedSource []byte

func (s ownedSource) At(i int) byte         { return s[i] }
func (s ownedSource) Len() int              { return len(s) }
func (s ownedSource) Slice(i, j int) []byte { return s[i:j] }

// mmapSource is a Source backed by a memory-mapped file.
type mmapSource struct {
	m mmap.MMap
}

func (s mmapSource) At(i int) byte         { return s.m[i] }
func (s mmapSource) Len() int              { return len(s.m) }
func (s mmapSource) Slice(i, j int) []byte { return s.m[i:j] }

// Sequence is an immutable named view over reference or query bytes. It is
// never mutated after construction and is safe to share by read-only
// reference across concurrent per-query workers.
type Sequence struct {
	ID   string
	Data Source

	file *os.File
	mm   mmap.MMap
}

// NewFromBytes builds a Sequence that owns a copy of b.
func NewFromBytes(id string, b []byte) *Sequence {
	return &Sequence{ID: id, Data: ownedSource(append([]byte(nil), b...))}
}

// mmapThreshold is the size, in bytes, above which OpenMmap prefers a
// memory-mapped view of the file over reading it into an owned buffer.
const mmapThreshold = 1 << 20 // 1 MiB

// OpenMmap maps path into memory and returns a Sequence backed by the
// mapping when the file is larger than mmapThreshold; smaller files are
// read into an owned buffer instead, since the mapping overhead is not
// worth it for them. Close must be called to release the mapping.
func OpenMmap(id, path string) (*Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("seqio: open %s: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("seqio: stat %s: %w", path, err)
	}
	if fi.Size() <= mmapThreshold {
		b := make([]byte, fi.Size())
		if _, err := readFull(f, b); err != nil {
			f.Close()
			return nil, fmt.Errorf("seqio: read %s: %w", path, err)
		}
		f.Close()
		return &Sequence{ID: id, Data: ownedSource(b)}, nil
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("seqio: mmap %s: %w", path, err)
	}
	return &Sequence{ID: id, Data: mmapSource{m: m}, file: f, mm: m}, nil
}

func readFull(f *os.File, b []byte) (int, error) {
	total := 0
	for total < len(b) {
		n, err := f.Read(b[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Close releases the underlying mapping and file handle, if any. It is a
// no-op for owned-buffer sequences.
func (s *Sequence) Close() error {
	if s.mm == nil {
		return nil
	}
	err := s.mm.Unmap()
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	s.mm = nil
	s.file = nil
	return err
}

// Len returns the number of bytes in the sequence.
func (s *Sequence) Len() int { return s.Data.Len() }

// At returns the byte at position i.
func (s *Sequence) At(i int) byte { return s.Data.At(i) }

// Slice returns the bytes in [i, j).
func (s *Sequence) Slice(i, j int) []byte { return s.Data.Slice(i, j) }

// ReverseComplement returns a new owned Sequence holding the reverse
// complement of s under the DNA alphabet. Non-ACGT bytes are complemented
// to themselves (case preserved) so ambiguity codes and masking characters
// pass through unchanged; that folding is an external responsibility.
func (s *Sequence) ReverseComplement(id string) *Sequence {
	n := s.Len()
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[n-1-i] = complement(s.At(i))
	}
	return NewFromBytes(id, out)
}

func complement(b byte) byte {
	switch b {
	case 'A':
		return 'T'
	case 'C':
		return 'G'
	case 'G':
		return 'C'
	case 'T':
		return 'A'
	case 'a':
		return 't'
	case 'c':
		return 'g'
	case 'g':
		return 'c'
	case 't':
		return 'a'
	default:
		return b
	}
}

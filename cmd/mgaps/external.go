// Copyright © the gomummer contributors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"modernc.org/kv"

	"github.com/mummer4/gomummer/cluster"
)

// externalCollector accumulates one header group's matches in an
// on-disk kv.DB instead of an in-memory slice, for the -external mode
// spec.md's domain stack calls for on very large seed-match streams.
// Matches are inserted in query-start, reference-start order as keys
// so Close can stream them back out already sorted, the way
// cmd/ins/fragment.go's merge reads hits.SeekFirst/it.Next in sorted
// key order rather than loading the whole set into memory.
type externalCollector struct {
	path  string
	db    *kv.DB
	seq   int64
	inTx  bool
	count int
}

const externalBatch = 100

func newExternalCollector() (*externalCollector, error) {
	f, err := os.CreateTemp("", "mgaps-external-*.kv")
	if err != nil {
		return nil, err
	}
	path := f.Name()
	f.Close()
	os.Remove(path)

	db, err := kv.Create(path, &kv.Options{Compare: compareMatchKey})
	if err != nil {
		return nil, err
	}
	return &externalCollector{path: path, db: db}, nil
}

func (c *externalCollector) Add(m cluster.Match) error {
	if c.count%externalBatch == 0 {
		if err := c.db.BeginTransaction(); err != nil {
			return err
		}
		c.inTx = true
	}
	key := marshalMatchKey(m.SB, m.SA, c.seq)
	val := marshalInt64(int64(m.Len()))
	if err := c.db.Set(key, val); err != nil {
		return err
	}
	c.seq++
	c.count++
	if c.count%externalBatch == 0 {
		if err := c.db.Commit(); err != nil {
			return err
		}
		c.inTx = false
	}
	return nil
}

// Close flushes any open transaction, reads every match back out in
// sorted (query-start, reference-start) order, and removes the
// backing file.
func (c *externalCollector) Close() ([]cluster.Match, error) {
	defer os.Remove(c.path)
	defer c.db.Close()

	if c.inTx {
		if err := c.db.Commit(); err != nil {
			return nil, err
		}
		c.inTx = false
	}

	var out []cluster.Match
	it, err := c.db.SeekFirst()
	if err == io.EOF {
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	for {
		k, v, err := it.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		sb, sa, _ := unmarshalMatchKey(k)
		length := unmarshalInt64(v)
		out = append(out, cluster.Match{SA: int(sa), EA: int(sa) + int(length), SB: int(sb), EB: int(sb) + int(length)})
	}
	return out, nil
}

// compareMatchKey orders keys by query-start, then reference-start,
// then insertion sequence (to keep otherwise-identical matches
// distinct and stable).
func compareMatchKey(x, y []byte) int {
	return bytes.Compare(x, y)
}

var order = binary.BigEndian

func marshalMatchKey(sb, sa, seq int64) []byte {
	var buf [24]byte
	order.PutUint64(buf[0:8], uint64(sb))
	order.PutUint64(buf[8:16], uint64(sa))
	order.PutUint64(buf[16:24], uint64(seq))
	return buf[:]
}

func unmarshalMatchKey(k []byte) (sb, sa, seq int64) {
	sb = int64(order.Uint64(k[0:8]))
	sa = int64(order.Uint64(k[8:16]))
	seq = int64(order.Uint64(k[16:24]))
	return sb, sa, seq
}

func marshalInt64(n int64) []byte {
	var buf [8]byte
	order.PutUint64(buf[:], uint64(n))
	return buf[:]
}

func unmarshalInt64(b []byte) int64 {
	return int64(order.Uint64(b))
}

// Copyright © the gomummer contributors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// mgaps reads a stream of seed matches grouped by header lines on
// stdin, chains each group into colinear clusters, and writes the
// resulting chains to stdout in the classic mgaps match-list format.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/mummer4/gomummer/cluster"
)

func main() {
	log.SetFlags(0)

	cfg := cluster.DefaultConfig()
	var (
		checkLabels = flag.Bool("C", false, "verify that headers alternate Forward/Reverse")
		fixedDiag   = flag.Int("d", cfg.FixedDiagDiff, "fixed diagonal difference bound")
		useExtents  = flag.Bool("e", false, "score clusters by end-minus-start extent instead of sum of lengths")
		sepFactor   = flag.Float64("f", cfg.SeparationFactor, "separation factor used in the diagonal difference bound")
		minScore    = flag.Int("l", cfg.MinOutputScore, "minimum output score")
		maxSep      = flag.Int("s", cfg.MaxSeparation, "maximum separation between matches in a cluster")
		external    = flag.Bool("external", false, "spill each header group's matches to an on-disk kv store instead of holding them in memory")
	)

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), `Usage of %[1]s:
  $ %[1]s [options] <matches >clusters

Options:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 0 {
		flag.Usage()
		os.Exit(1)
	}

	cfg.FixedDiagDiff = *fixedDiag
	cfg.UseExtents = *useExtents
	cfg.SeparationFactor = *sepFactor
	cfg.MinOutputScore = *minScore
	cfg.MaxSeparation = *maxSep

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	if err := run(os.Stdin, out, cfg, *checkLabels, *external); err != nil {
		log.Printf("mgaps: %v", err)
		os.Exit(1)
	}
}

// matchCollector gathers one header group's matches, either in memory
// or (in -external mode) spilled to an on-disk kv store.
type matchCollector interface {
	Add(m cluster.Match) error
	Close() ([]cluster.Match, error)
}

type memCollector struct{ matches []cluster.Match }

func (c *memCollector) Add(m cluster.Match) error {
	c.matches = append(c.matches, m)
	return nil
}

func (c *memCollector) Close() ([]cluster.Match, error) { return c.matches, nil }

// run drives the header/body scan, clustering each run as its
// terminating header (or EOF) is reached.
func run(r io.Reader, w *bufio.Writer, cfg cluster.Config, checkLabels, external bool) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	newCollector := func() (matchCollector, error) {
		if external {
			return newExternalCollector()
		}
		return &memCollector{}, nil
	}

	var (
		header     string
		collector  matchCollector
		headerSeen bool
		headerLine int
	)

	flush := func() error {
		if !headerSeen {
			return nil
		}
		matches, err := collector.Close()
		if err != nil {
			return err
		}
		forward := !strings.Contains(header, "Reverse")
		clusters := cluster.Process(matches, forward, cfg)
		writeRun(w, header, clusters)
		return nil
	}

	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		if line[0] == '>' {
			if err := flush(); err != nil {
				return err
			}
			headerLine++
			if checkLabels && headerLine%2 == 0 && !strings.Contains(line, "Reverse") {
				return fmt.Errorf("expected alternating Forward/Reverse header, got %q", line)
			}
			header = line
			var err error
			collector, err = newCollector()
			if err != nil {
				return err
			}
			headerSeen = true
			continue
		}
		var refPos, qryPos, length int
		if _, err := fmt.Sscanf(line, "%d %d %d", &refPos, &qryPos, &length); err != nil {
			return fmt.Errorf("malformed match line %q: %w", line, err)
		}
		if err := collector.Add(cluster.Match{
			SA: refPos, EA: refPos + length,
			SB: qryPos, EB: qryPos + length,
		}); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return flush()
}

// writeRun prints header unconditionally, even when clusters is empty,
// matching mgaps.cc's Process_Matches always writing its label line;
// followed by each cluster's chain rows, each chain terminated by a "#"
// line so a reader never needs to peek at the next line to know a
// chain has ended.
func writeRun(w *bufio.Writer, header string, clusters []cluster.Cluster) {
	fmt.Fprintln(w, header)
	for _, c := range clusters {
		writeChain(w, c)
	}
}

func writeChain(w *bufio.Writer, c cluster.Cluster) {
	var prev cluster.Match
	for i, m := range c.Matches {
		if i == 0 {
			fmt.Fprintf(w, "%8d %8d %6d %7s %6s %6s\n", m.SA, m.SB, m.Len(), "none", "-", "-")
			prev = m
			continue
		}
		adj := simpleAdj(prev, m)
		start1 := m.SA + adj
		start2 := m.SB + adj
		length := m.Len() - adj
		adjCol := "none"
		if adj != 0 {
			adjCol = fmt.Sprintf("%d", -adj)
		}
		gapRef := start1 - prev.EA
		gapQry := start2 - prev.EB
		fmt.Fprintf(w, "%8d %8d %6d %7s %6d %6d\n", start1, start2, length, adjCol, gapRef, gapQry)
		prev = m
	}
	fmt.Fprint(w, "#\n")
}

// simpleAdj returns the overlap trimmed from m's start to remove the
// double-counted span shared with its immediate chain predecessor:
// max(0, overlap in the reference piece, overlap in the query piece).
func simpleAdj(prev, m cluster.Match) int {
	adj := 0
	if olap := prev.EA - m.SA; olap > adj {
		adj = olap
	}
	if olap := prev.EB - m.SB; olap > adj {
		adj = olap
	}
	return adj
}

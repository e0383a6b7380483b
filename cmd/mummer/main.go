// Copyright © the gomummer contributors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// mummer finds maximal exact matches between a reference (subject) FASTA
// and a query FASTA, streaming one suffixtree.Tree per reference record
// and reporting hits in the classic mummer match-list format that a
// downstream mgaps/postnuc pass expects on its stdin.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"gonum.org/v1/gonum/stat"

	"github.com/mummer4/gomummer/seed"
)

func main() {
	log.SetFlags(0)

	var (
		mum          = flag.Bool("mum", false, "compute MUMs (unique in both reference and query)")
		mumreference = flag.Bool("mumreference", true, "compute matches unique in the reference only (default)")
		maxmatch     = flag.Bool("maxmatch", false, "compute all maximal matches, regardless of uniqueness")
		onlyACGT     = flag.Bool("n", false, "restrict matches to literal a,c,g,t bases")
		minLen       = flag.Int("l", 20, "minimum match length")
		both         = flag.Bool("b", false, "also search the reverse complement of the query")
		revOnly      = flag.Bool("r", false, "only search the reverse complement of the query")
		showSubstr   = flag.Bool("s", false, "also print the matching substring")
		origCoords   = flag.Bool("c", false, "report reverse-complement positions relative to the original query")
		forceFour    = flag.Bool("F", false, "force 4-column output")
		showLengths  = flag.Bool("L", false, "show sequence lengths on headers")
		verbose      = flag.Bool("verbose", false, "print a match-length summary to stderr when done")
	)

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), `Usage of %[1]s:
  $ %[1]s [options] <subject.fa> <query.fa> >out.matches

Options:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		flag.Usage()
		os.Exit(1)
	}
	subjectPath, queryPath := args[0], args[1]

	flavor := seed.MAM
	switch {
	case *mum:
		flavor = seed.MUM
	case *maxmatch:
		flavor = seed.MEM
	case *mumreference:
		flavor = seed.MAM
	}

	cfg := searchConfig{
		flavor:     flavor,
		minLen:     *minLen,
		onlyACGT:   *onlyACGT,
		forward:    !*revOnly,
		reverse:    *both || *revOnly,
		showSubstr: *showSubstr,
		origCoords: *origCoords,
		forceFour:  *forceFour,
	}

	log.Println("indexing reference")
	refs, err := loadRecords(subjectPath)
	if err != nil {
		log.Printf("reading subject: %v", err)
		os.Exit(1)
	}
	indices := make([]refIndex, len(refs))
	for i, r := range refs {
		log.Printf("building suffix tree for %s (%d bp)", r.id, len(r.seq))
		refSeq := r.seq
		if *onlyACGT {
			refSeq = maskNonACGT(refSeq)
		}
		tree, err := buildIndex(refSeq)
		if err != nil {
			log.Printf("indexing %s: %v", r.id, err)
			os.Exit(1)
		}
		indices[i] = refIndex{id: r.id, length: len(r.seq), tree: tree}
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	log.Println("streaming seeds")
	var lengths []float64
	emitLen := func(n int) { lengths = append(lengths, float64(n)) }

	err = forEachQueryRecord(queryPath, func(q record) error {
		header := q.id
		if *showLengths {
			header = fmt.Sprintf("%s  Len = %d", q.id, len(q.seq))
		}
		fmt.Fprintf(out, "> %s\n", header)
		return searchQuery(indices, q, cfg, out, emitLen)
	})
	if err != nil {
		log.Printf("searching query: %v", err)
		os.Exit(1)
	}

	if *verbose && len(lengths) > 0 {
		mean, std := stat.MeanStdDev(lengths, nil)
		log.Printf("%d matches, length mean=%.1f stddev=%.1f", len(lengths), mean, std)
	}
}

package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"text/tabwriter"
	"time"

	"github.com/golang/glog"
	"github.com/sbezverk/msort/report"
	"github.com/sbezverk/msort/sort"
	"golang.org/x/exp/slices"
)

func bench() error {
	reports := report.NewStore()
	defer reports.Stop()

	input := randomValues(size, seed)
	for _, s := range sort.Strategies() {
		r, err := benchStrategy(s, workers, runs, input)
		if err != nil {
			return err
		}
		if err := reports.Add(r); err != nil {
			return err
		}
	}

	return printReports(os.Stdout, reports.List())
}

func randomValues(n int, seed int64) []int32 {
	r := rand.New(rand.NewSource(seed))
	vs := make([]int32, n)
	for i := range vs {
		vs[i] = r.Int31()
	}
	return vs
}

// benchStrategy sorts input runs times with strategy and checks every result.
func benchStrategy(strategy sort.Strategy, workers, runs int, input []int32) (*report.Report, error) {
	s, err := sort.NewSorter[int32](strategy, workers)
	if err != nil {
		return nil, err
	}
	r := &report.Report{
		Strategy: strategy.String(),
		Length:   len(input),
		Passes:   passes(len(input)),
	}
	if strategy != sort.Sequential && strategy != sort.Parallel {
		r.Workers = workers
	}
	for i := 0; i < runs; i++ {
		start := time.Now()
		sorted, err := s.Sort(input)
		elapsed := time.Since(start)
		if err != nil {
			return nil, fmt.Errorf("%s run %d failed with error: %w", r.Key(), i, err)
		}
		if !slices.IsSorted(sorted) {
			return nil, fmt.Errorf("%s run %d returned an unsorted result", r.Key(), i)
		}
		r.Runs++
		r.Elapsed += elapsed
	}
	glog.Infof("%s: %d runs of %d values took %s", r.Key(), r.Runs, r.Length, r.Elapsed)

	return r, nil
}

// passes returns the number of passes a bottom-up merge sort of n values makes.
func passes(n int) int {
	p := 0
	for b := 1; b < n; b *= 2 {
		p++
	}
	return p
}

func printReports(w io.Writer, reports []*report.Report) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "STRATEGY\tWORKERS\tLENGTH\tPASSES\tRUNS\tPER RUN")
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\n", r.Strategy, r.Workers, r.Length, r.Passes, r.Runs, r.PerRun())
	}
	return tw.Flush()
}

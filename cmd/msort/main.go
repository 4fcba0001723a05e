package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/sbezverk/msort"
	"github.com/sbezverk/msort/remote"
	"github.com/sbezverk/msort/sort"
)

const sampleValues = "15,53,1,24,3,1765,22,2,8,7,4"

var (
	mode     string
	strategy string
	workers  int
	values   string
	addr     string
	timeout  time.Duration
	size     int
	runs     int
	seed     int64
	config   string
	listen   string
)

func init() {
	flag.StringVar(&mode, "mode", "sort", "sort, bench or serve")
	flag.StringVar(&strategy, "strategy", sort.PoolChunks.String(), "sequential, parallel, limit, pool or chunks")
	flag.IntVar(&workers, "workers", runtime.NumCPU(), "number of workers for limit, pool and chunks strategies")
	flag.StringVar(&values, "values", sampleValues, "comma separated numbers to sort")
	flag.StringVar(&addr, "remote", "", "address of a sort server, sorting is done locally when empty")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "deadline of a remote sort request")
	flag.IntVar(&size, "size", 100000, "number of random values sorted by bench")
	flag.IntVar(&runs, "runs", 5, "number of runs per strategy in bench")
	flag.Int64Var(&seed, "seed", 1, "seed of the bench random values")
	flag.StringVar(&config, "config", "", "TOML configuration file of the serve mode")
	flag.StringVar(&listen, "listen", "", "listen address of the serve mode, overrides the config file")
}

func main() {
	flag.Parse()
	_ = flag.Set("logtostderr", "true")
	defer glog.Flush()

	var err error
	switch mode {
	case "sort":
		err = sortValues()
	case "bench":
		err = bench()
	case "serve":
		err = serve()
	default:
		err = fmt.Errorf("unknown mode %q", mode)
	}
	if err != nil {
		glog.Errorf("%s failed with error: %+v", mode, err)
		glog.Flush()
		os.Exit(1)
	}
}

func parseValues(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	vs := make([]float64, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", f, err)
		}
		vs = append(vs, v)
	}
	return vs, nil
}

func backend(s sort.Strategy) (sort.Backend[float64], func(), error) {
	if addr == "" {
		b, err := sort.NewSorter[float64](s, workers)
		return b, func() {}, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	c, err := remote.Dial(ctx, addr)
	if err != nil {
		return nil, nil, err
	}
	b := &remote.Backend{
		Client:   c,
		Strategy: s,
		Workers:  workers,
		Timeout:  timeout,
	}
	return b, func() { c.Close() }, nil
}

func sortValues() error {
	s, err := sort.ParseStrategy(strategy)
	if err != nil {
		return err
	}
	vs, err := parseValues(values)
	if err != nil {
		return err
	}
	b, release, err := backend(s)
	if err != nil {
		return err
	}
	defer release()
	sorted, err := b.Sort(vs)
	if err != nil {
		return err
	}
	fmt.Printf("Sorted vec: %v\n", sorted)

	return nil
}

func serve() error {
	cfg, err := loadServerConfig(config)
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Listen = listen
	}
	srv, err := remote.New(cfg.Listen, cfg.serverOptions()...)
	if err != nil {
		return fmt.Errorf("failed to start sort server on %s with error: %w", cfg.Listen, err)
	}
	glog.Infof("sort server listening on %s", srv.Addr())
	msort.RunUntilStopped(msort.SetupSignalHandler(), srv)

	return nil
}

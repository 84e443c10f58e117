//go:build !lambda

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"
)

const usage = `Usage: cookbook-gen [flags] <forks.json>

Positional arguments:
  forks.json   Fork list: fork ID to prototype dump, locale and options

Output goes to the blob store named by COOKBOOK_BLOB_DRIVER (fs, s3, memory).

Flags:
`

func main() {
	forkGlob := flag.String("forks", "*", "Only build forks whose ID matches this glob")
	verbose := flag.Bool("verbose", false, "Print detailed build progress to stderr")
	prettyOut := flag.Bool("pretty", false, "Indent the written JSON")
	brotliOut := flag.Bool("brotli", false, "Also write brotli-compressed data files")
	metricsPath := flag.String("metrics", "", "Write build metrics to this file in Prometheus text format")
	jsonOut := flag.Bool("json", false, "Print the build summary as JSON")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}

	Verbose = *verbose

	if err := run(args[0], *forkGlob, *prettyOut, *brotliOut, *metricsPath, *jsonOut); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(forkListPath, forkGlob string, prettyOut, brotliOut bool, metricsPath string, jsonOut bool) error {
	ctx := context.Background()

	forks, err := LoadForkList(forkListPath)
	if err != nil {
		return err
	}
	forks = selectForks(forks, forkGlob)
	if len(forks) == 0 {
		return fmt.Errorf("no fork matches %q", forkGlob)
	}

	store, err := NewStore(ctx, StoreConfigFromEnv())
	if err != nil {
		return err
	}
	writer := NewDataWriter(store, log.New(os.Stderr, "", 0))
	writer.Pretty = prettyOut
	writer.Brotli = brotliOut

	runner := &Runner{Writer: writer, Metrics: NewBuildMetrics()}
	stats, err := runner.RunAll(ctx, forks)
	if err != nil {
		return err
	}

	if metricsPath != "" {
		if err := runner.Metrics.WriteTextfile(metricsPath); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	if jsonOut {
		return printJSON(newBuildSummary(stats, time.Now()))
	}
	printSummary(os.Stdout, stats)
	return nil
}

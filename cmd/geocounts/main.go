// geocounts downloads the NCBI-generated RNA-seq count matrix of one or more
// GEO series and writes one table per group-pair, with the samples of each
// group chosen by regular expressions against the sample metadata.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/carbocation/geocounts"
	_ "github.com/carbocation/geocounts/compileinfoprint"
	"github.com/carbocation/geocounts/fetch"
	"github.com/carbocation/geocounts/geo"
	"github.com/carbocation/geocounts/pairspec"
	"github.com/carbocation/geocounts/series"
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] FILE\n\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "FILE (.yaml, .yml, .csv, .tsv; local, http(s) or gs://) maps each GSE accession to a")
		fmt.Fprintln(os.Stderr, "sequence of group-pairs, usually with 'control' and 'treatment' groups, each of which maps")
		fmt.Fprintln(os.Stderr, "sample attributes (e.g., 'title', 'characteristics_ch1') to a regular expression.")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
}

// options is everything the command line controls.
type options struct {
	input       string
	gsmYAML     string
	concurrency int
	retries     int
	force       bool
	cfg         series.Config
}

var errNoInput = errors.New("no group-pair file was given")

// parseFlags defines the flags on fs, parses args and validates the result.
func parseFlags(fs *flag.FlagSet, args []string) (options, error) {
	var (
		opts      options
		normType  string
		keepAnnot stringList
	)
	opts.cfg = series.DefaultConfig()
	cfg := &opts.cfg

	fs.StringVar(&opts.input, "input", "", "Path to the group-pair file. May also be given as the first positional argument.")
	fs.StringVar(&normType, "norm-type", "", "Normalization type of counts (choices: none, fpkm, tpm). Only changes which NCBI file is downloaded.")
	fs.StringVar(&cfg.AnnotVer, "annot-ver", geo.DefaultAnnotationVersion, "Annotation version of counts.")
	fs.StringVar(&cfg.Species, "species", geo.DefaultSpecies, "Species of the annotation table.")
	fs.Var(&keepAnnot, "keep-annot", fmt.Sprintf("Comma-separated annotation column(s) to keep; may be repeated (choices: %s).", strings.Join(geo.AnnotationColumns, ", ")))
	fs.StringVar(&cfg.SrcDir, "src-dir", "./", "A directory to save the sources obtained from NCBI.")
	fs.StringVar(&cfg.SaveTo, "output", "./", "A directory to save the count matrices. Set to the empty string to skip writing.")
	fs.BoolVar(&cfg.Silent, "silent", false, "Suppress warnings?")
	fs.StringVar(&cfg.Sep, "sep", "-", "Separator between group and GSM in column names, and between GSE and index in file names.")
	fs.StringVar(&opts.gsmYAML, "yaml", "", "Path to save a YAML file listing the GSMs of every matched group-pair.")
	fs.BoolVar(&cfg.Cleanup, "cleanup", false, "Remove the downloaded sources once the matrices are built?")
	fs.StringVar(&cfg.CountFile, "count-file", "", "Use this count table (local, http(s) or gs://) instead of the NCBI-generated one. Single series only.")
	fs.BoolVar(&opts.force, "force", false, "Download sources again even if they are already in --src-dir?")
	fs.IntVar(&opts.retries, "retries", 2, "Number of times to retry a failed download.")
	fs.IntVar(&opts.concurrency, "concurrency", 1, "Number of series to process simultaneously.")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if opts.input == "" {
		opts.input = fs.Arg(0)
	}
	if opts.input == "" {
		return opts, errNoInput
	}

	norm, err := geo.ParseCountNorm(normType)
	if err != nil {
		return opts, err
	}
	cfg.Norm = norm

	if err := geo.ValidateAnnotationColumns(keepAnnot); err != nil {
		return opts, err
	}
	cfg.KeepAnnot = keepAnnot

	return opts, nil
}

func main() {
	opts, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err == errNoInput {
		flag.Usage()
		os.Exit(1)
	} else if err != nil {
		log.Fatalln(err)
	}
	input, cfg := opts.input, opts.cfg

	if !cfg.Silent {
		cfg.Logger = log.Default()
	}

	ctx := context.Background()

	var sclient *storage.Client
	if geocounts.IsGoogleStorage(input) || geocounts.IsGoogleStorage(cfg.CountFile) {
		sclient, err = storage.NewClient(ctx)
		if err != nil {
			log.Fatalln(err)
		}
		defer sclient.Close()
	}

	specs, err := pairspec.Load(ctx, input, sclient)
	if err != nil {
		log.Fatalln(err)
	}
	log.Printf("Loaded %d series from %s\n", len(specs), input)

	fetcher := &fetch.Fetcher{
		HTTPClient: &http.Client{Timeout: 30 * time.Minute},
		Storage:    sclient,
		Force:      opts.force,
		Retries:    opts.retries,
		RetryWait:  30 * time.Second,
		Logger:     cfg.Logger,
	}

	all, runErr := series.RunAll(ctx, specs, cfg, fetcher, opts.concurrency)

	for _, s := range all {
		if s == nil {
			continue
		}
		for _, d := range s.Diagnostics.Items() {
			log.Println("Warning:", d)
		}
	}

	if runErr != nil {
		log.Fatalln(runErr)
	}

	if opts.gsmYAML != "" {
		if err := pairspec.SaveMatched(opts.gsmYAML, series.Matched(all)); err != nil {
			log.Fatalln(err)
		}
		log.Println("Wrote matched GSMs to", opts.gsmYAML)
	}

	for i, s := range all {
		log.Printf("%s: %d of %d group-pairs produced a table\n", s.Accession, len(s.Tables), len(specs[i].Pairs))
	}
}

// stringList is a flag.Value collecting comma-separated, repeatable values.
type stringList []string

func (s *stringList) String() string {
	if s == nil {
		return ""
	}
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			*s = append(*s, v)
		}
	}
	return nil
}

// Package series drives one GEO series from its group-pair definitions to the
// per-pair count tables: it retrieves the sample metadata, resolves every
// group-pair, retrieves the count matrix (and annotation, if requested), and
// assembles and writes one table per matched pair.
package series

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/carbocation/geocounts"
	"github.com/carbocation/geocounts/diag"
	"github.com/carbocation/geocounts/geo"
	"github.com/carbocation/geocounts/match"
	"github.com/carbocation/geocounts/matrix"
	"github.com/carbocation/geocounts/pairspec"
	"github.com/carbocation/pfx"
)

// OutputComma separates the columns of the written tables.
const OutputComma = '\t'

// Series is the working state of one series.
type Series struct {
	Accession string

	// Pairs is the working set of group-pairs. After ResolvePairs it only
	// holds the pairs that matched, in declared order.
	Pairs []match.GroupPairSpec

	Config Config

	Samples  geo.SamplePool
	Resolved []match.ResolvedPair

	CountURL  string
	CountPath string
	AnnotURL  string
	AnnotPath string

	Counts     *matrix.CountMatrix
	Annotation *matrix.AnnotationTable // nil unless Config.KeepAnnot is set

	Tables []*matrix.AssembledTable
	Paths  []string

	Diagnostics *diag.Collector

	fetcher     geo.Fetcher
	state       State
	pairNumbers []int // 1-based declared position of each matched pair
	downloaded  []string
}

// New validates the accession and prepares the source locations. The pairs
// slice is copied; the caller's slice is never modified.
func New(acc string, pairs []match.GroupPairSpec, cfg Config, fetcher geo.Fetcher) (*Series, error) {
	if err := geo.ValidateSeriesAccession(acc); err != nil {
		return nil, err
	}
	if err := geo.ValidateAnnotationColumns(cfg.KeepAnnot); err != nil {
		return nil, err
	}
	if cfg.AnnotVer == "" {
		cfg.AnnotVer = geo.DefaultAnnotationVersion
	}
	if cfg.Species == "" {
		cfg.Species = geo.DefaultSpecies
	}
	cfg.SrcDir = geocounts.ExpandHome(cfg.SrcDir)
	if cfg.SaveTo != "" {
		cfg.SaveTo = geocounts.ExpandHome(cfg.SaveTo)
	}

	s := &Series{
		Accession:   acc,
		Pairs:       append([]match.GroupPairSpec(nil), pairs...),
		Config:      cfg,
		Diagnostics: diag.New(acc, cfg.Silent),
		fetcher:     fetcher,
		state:       Initialized,
	}

	if err := s.setSources(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Series) setSources() error {
	if s.Config.CountFile != "" {
		s.CountURL = s.Config.CountFile
		if geocounts.IsGoogleStorage(s.CountURL) || geocounts.IsHTTP(s.CountURL) {
			s.CountPath = filepath.Join(s.Config.SrcDir, filepath.Base(s.CountURL))
		} else {
			// A local table is read in place
			s.CountPath = geocounts.ExpandHome(s.CountURL)
			s.CountURL = s.CountPath
		}
	} else {
		countURL, err := geo.CountURL(s.Accession, s.Config.Norm, s.Config.AnnotVer)
		if err != nil {
			return err
		}
		name, err := geo.FilenameFromURL(countURL, "file")
		if err != nil {
			return err
		}
		s.CountURL = countURL
		s.CountPath = filepath.Join(s.Config.SrcDir, name)
	}

	if len(s.Config.KeepAnnot) > 0 {
		s.AnnotURL = geo.AnnotationURL(s.Config.Species, s.Config.AnnotVer)
		name, err := geo.FilenameFromURL(s.AnnotURL, "file")
		if err != nil {
			return err
		}
		s.AnnotPath = filepath.Join(s.Config.SrcDir, name)
	}

	return nil
}

// State returns the last completed step.
func (s *Series) State() State {
	return s.state
}

// Run executes every step, then saves if Config.SaveTo is set and cleans up
// if Config.Cleanup is set.
func (s *Series) Run(ctx context.Context) error {
	steps := []func(context.Context) error{
		func(context.Context) error { return s.PrepareDirs() },
		s.LoadMetadata,
		func(context.Context) error { return s.ResolvePairs() },
		s.LoadData,
		func(context.Context) error { return s.AssembleMatrices() },
	}

	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}

	if s.Config.SaveTo != "" {
		if err := s.Save(); err != nil {
			return err
		}
	}

	if s.Config.Cleanup {
		if err := s.Cleanup(); err != nil {
			return err
		}
	}

	return nil
}

// PrepareDirs creates the source and output directories.
func (s *Series) PrepareDirs() error {
	if err := s.enter(DirsReady); err != nil {
		return err
	}

	if err := os.MkdirAll(s.Config.SrcDir, 0755); err != nil {
		return pfx.Err(err)
	}
	if s.Config.SaveTo != "" {
		if err := os.MkdirAll(s.Config.SaveTo, 0755); err != nil {
			return pfx.Err(err)
		}
	}

	s.state = DirsReady
	return nil
}

// LoadMetadata retrieves the sample pool. Failure is fatal for the series.
func (s *Series) LoadMetadata(ctx context.Context) error {
	if err := s.enter(MetadataLoaded); err != nil {
		return err
	}

	s.Config.logf("%s: loading sample metadata", s.Accession)
	pool, local, err := geo.FetchSeriesMetadata(ctx, s.fetcher, s.Accession, s.Config.SrcDir)
	if local != "" {
		s.downloaded = append(s.downloaded, local)
	}
	if err != nil {
		s.Diagnostics.Warnf("Cannot download: %s", geo.SeriesSOFTURL(s.Accession))
		return fmt.Errorf("%s: could not load sample metadata: %w", s.Accession, err)
	}

	s.Samples = pool
	s.state = MetadataLoaded
	s.Config.logf("%s: %d samples", s.Accession, len(pool))

	return nil
}

// ResolvePairs resolves every group-pair against the sample pool. Pairs that
// match nothing are dropped from the working set with a diagnostic.
func (s *Series) ResolvePairs() error {
	if err := s.enter(PairsResolved); err != nil {
		return err
	}

	matched := make([]match.GroupPairSpec, 0, len(s.Pairs))
	for i, spec := range s.Pairs {
		d := s.Diagnostics.ForPair(i + 1)
		resolved, ok := match.ResolvePair(spec, s.Samples, d)
		if !ok {
			d.Warnf("Could not find pair samples for %s. Skipping...", spec)
			continue
		}
		matched = append(matched, spec)
		s.Resolved = append(s.Resolved, resolved)
		s.pairNumbers = append(s.pairNumbers, i+1)
	}

	s.Config.logf("%s: %d of %d group-pairs matched", s.Accession, len(matched), len(s.Pairs))
	s.Pairs = matched
	s.state = PairsResolved

	return nil
}

// LoadData retrieves the count matrix and, when annotation columns were
// requested, the annotation table. Failure of either is fatal.
func (s *Series) LoadData(ctx context.Context) error {
	if err := s.enter(DataLoaded); err != nil {
		return err
	}

	counts, err := s.loadTable(ctx, s.CountURL, s.CountPath)
	if err != nil {
		return fmt.Errorf("%s: could not load count matrix: %w", s.Accession, err)
	}
	s.Counts = counts
	s.Config.logf("%s: count matrix has %d genes and %d samples", s.Accession, counts.Len(), len(counts.Columns))

	if len(s.Config.KeepAnnot) > 0 {
		annot, err := s.loadTable(ctx, s.AnnotURL, s.AnnotPath)
		if err != nil {
			return fmt.Errorf("%s: could not load annotation table: %w", s.Accession, err)
		}
		s.Annotation, err = annot.Select(s.Config.KeepAnnot)
		if err != nil {
			return fmt.Errorf("%s: %s: %w", s.Accession, s.AnnotPath, err)
		}
	}

	s.state = DataLoaded
	return nil
}

func (s *Series) loadTable(ctx context.Context, src, dest string) (*matrix.Table, error) {
	local := dest
	if src != dest {
		var err error
		local, err = s.fetcher.Fetch(ctx, src, dest)
		if err != nil {
			s.Diagnostics.Warnf("Cannot download: %s", src)
			return nil, err
		}
		s.downloaded = append(s.downloaded, local)
	}

	return matrix.ReadTableFile(local)
}

// AssembleMatrices builds one table per matched group-pair and names its
// output file.
func (s *Series) AssembleMatrices() error {
	if err := s.enter(MatricesAssembled); err != nil {
		return err
	}

	for i, resolved := range s.Resolved {
		d := s.Diagnostics.ForPair(s.pairNumbers[i])
		s.Tables = append(s.Tables, matrix.Assemble(resolved, s.Counts, s.Annotation, s.Config.Sep, d))
	}

	s.Paths = make([]string, 0, len(s.Tables))
	for i := range s.Tables {
		s.Paths = append(s.Paths, filepath.Join(s.Config.SaveTo, OutputFilename(s.Accession, s.Config.Sep, i+1, len(s.Tables))))
	}

	s.state = MatricesAssembled
	return nil
}

// Save writes every assembled table to its path.
func (s *Series) Save() error {
	if err := s.enter(Saved); err != nil {
		return err
	}

	for i, table := range s.Tables {
		if err := table.WriteFile(s.Paths[i], OutputComma); err != nil {
			return err
		}
		s.Config.logf("%s: wrote %s", s.Accession, s.Paths[i])
	}

	s.state = Saved
	return nil
}

// Cleanup removes the files this series downloaded into SrcDir.
func (s *Series) Cleanup() error {
	if err := s.enter(Cleaned); err != nil {
		return err
	}

	for _, path := range s.downloaded {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return pfx.Err(err)
		}
	}
	s.downloaded = nil

	s.state = Cleaned
	return nil
}

// Matched returns the resolved samples of every matched pair.
func (s *Series) Matched() pairspec.SeriesSamples {
	return pairspec.SeriesSamples{
		Accession: s.Accession,
		Pairs:     append([]match.ResolvedPair(nil), s.Resolved...),
	}
}

// OutputFilename names the index-th (1-based) of count output tables,
// zero-padding the index to count/10+1 digits.
func OutputFilename(acc, sep string, index, count int) string {
	digits := count/10 + 1
	return fmt.Sprintf("%s%s%0*d.tsv", acc, sep, digits, index)
}

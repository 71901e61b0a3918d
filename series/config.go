package series

import (
	"log"

	"github.com/carbocation/geocounts/geo"
)

// Config holds the settings shared by every series of a run.
type Config struct {
	// SrcDir caches the files downloaded from NCBI.
	SrcDir string

	// SaveTo receives the output tables. Empty means nothing is written.
	SaveTo string

	Norm     geo.CountNorm
	AnnotVer string
	Species  string

	// KeepAnnot names the annotation columns to carry into the output, in
	// order. The annotation table is only retrieved when this is non-empty.
	KeepAnnot []string

	// Sep joins group names and sample accessions in column labels, and the
	// accession and index in output file names.
	Sep string

	// Silent drops diagnostics.
	Silent bool

	// Cleanup removes downloaded sources once the tables are assembled (and
	// saved, if SaveTo is set).
	Cleanup bool

	// CountFile replaces the NCBI count matrix with a local, http(s) or gs://
	// table. Only meaningful for a single series.
	CountFile string

	// Logger receives progress lines; nil silences them.
	Logger *log.Logger
}

// DefaultConfig mirrors the command-line defaults.
func DefaultConfig() Config {
	return Config{
		SrcDir:   "./",
		SaveTo:   "./",
		AnnotVer: geo.DefaultAnnotationVersion,
		Species:  geo.DefaultSpecies,
		Sep:      "-",
	}
}

func (c Config) logf(format string, args ...interface{}) {
	if c.Logger == nil {
		return
	}
	c.Logger.Printf(format, args...)
}

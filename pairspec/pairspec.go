// Package pairspec reads the group-pair definitions of one or more series from
// YAML or from a flat CSV/TSV table, and writes back the samples that each
// matched group-pair resolved to.
package pairspec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/geocounts"
	"github.com/carbocation/geocounts/match"
	"github.com/carbocation/pfx"
)

var (
	ErrUnsupportedExtension = errors.New("Supported file types are .yaml, .yml, .csv, .tsv")
	ErrInvalidColumns       = errors.New("table columns are invalid")
	ErrInvalidDocument      = errors.New("invalid group-pair document")
)

// SeriesSpec is a series accession and its group-pairs, in declared order.
type SeriesSpec struct {
	Accession string
	Pairs     []match.GroupPairSpec
}

// SeriesSpecs keeps series in the order they were declared.
type SeriesSpecs []SeriesSpec

// Accessions lists the series in declared order.
func (s SeriesSpecs) Accessions() []string {
	out := make([]string, 0, len(s))
	for _, v := range s {
		out = append(out, v.Accession)
	}

	return out
}

// Get returns the group-pairs declared for acc.
func (s SeriesSpecs) Get(acc string) (SeriesSpec, bool) {
	for _, v := range s {
		if v.Accession == acc {
			return v, true
		}
	}

	return SeriesSpec{}, false
}

// Format is the kind of input file.
type Format int

const (
	FormatUnknown Format = iota
	FormatYAML
	FormatCSV
	FormatTSV
)

// FormatFromPath picks the format from the extension of path, which may be a
// local path, a gs:// path or a URL.
func FormatFromPath(p string) (Format, error) {
	if u, err := url.Parse(p); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		p = u.Path
	}

	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	case ".tsv":
		return FormatTSV, nil
	}

	return FormatUnknown, fmt.Errorf("%w: %s", ErrUnsupportedExtension, p)
}

// Load reads group-pair definitions from a local file, an http(s) URL or, with
// a non-nil client, a gs:// object.
func Load(ctx context.Context, p string, client *storage.Client) (SeriesSpecs, error) {
	format, err := FormatFromPath(p)
	if err != nil {
		return nil, err
	}

	rc, err := geocounts.OpenSource(ctx, p, client, http.DefaultClient)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, pfx.Err(err)
	}

	specs, err := Parse(bytes.NewReader(b), format)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", p, err))
	}

	return specs, nil
}

// Parse reads group-pair definitions in the given format.
func Parse(r io.Reader, format Format) (SeriesSpecs, error) {
	switch format {
	case FormatYAML:
		return ParseYAML(r)
	case FormatCSV:
		return ParseTable(r, ',')
	case FormatTSV:
		return ParseTable(r, '\t')
	}

	return nil, ErrUnsupportedExtension
}

package pairspec

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/carbocation/geocounts/geo"
	"github.com/carbocation/geocounts/match"
	"github.com/gocarina/gocsv"
)

// TableColumns are the required columns of the flat format, in order.
var TableColumns = []string{"gse", "pair", "group", "attrib", "pattern"}

// regexRow is one line of the flat format: one predicate of one group of one
// group-pair of one series.
type regexRow struct {
	GSE     string `csv:"gse"`
	Pair    string `csv:"pair"`
	Group   string `csv:"group"`
	Attrib  string `csv:"attrib"`
	Pattern string `csv:"pattern"`
}

// ParseTable reads the flat format. Rows are grouped by (gse, pair) and then by
// group, each in order of first appearance in the file; that order decides
// output numbering, so the file is never sorted.
func ParseTable(r io.Reader, comma rune) (SeriesSpecs, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	b = bytes.TrimPrefix(b, []byte("\ufeff"))

	if err := checkHeader(b, comma); err != nil {
		return nil, err
	}

	rows := []*regexRow{}
	if err := gocsv.UnmarshalCSV(newReader(bytes.NewReader(b), comma), &rows); err != nil {
		return nil, err
	}

	return groupRows(rows)
}

func newReader(r io.Reader, comma rune) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.LazyQuotes = true
	return cr
}

func checkHeader(b []byte, comma rune) error {
	header, err := newReader(bytes.NewReader(b), comma).Read()
	if err == io.EOF {
		return fmt.Errorf("%w: the table is empty", ErrInvalidColumns)
	} else if err != nil {
		return err
	}

	if strings.Join(header, ",") != strings.Join(TableColumns, ",") {
		return fmt.Errorf("%w: got %v, want %v", ErrInvalidColumns, header, TableColumns)
	}

	return nil
}

type pairKey struct {
	gse  string
	pair string
}

func groupRows(rows []*regexRow) (SeriesSpecs, error) {
	specs := make(SeriesSpecs, 0)
	seriesIdx := make(map[string]int)
	pairIdx := make(map[pairKey]int) // position within its series' Pairs

	for i, row := range rows {
		if err := geo.ValidateSeriesAccession(row.GSE); err != nil {
			return nil, fmt.Errorf("row %d: gse column must start with '%s': %w", i+1, geo.SeriesPrefix, err)
		}

		ar, err := match.NewAttributeRegex(row.Attrib, row.Pattern)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		si, ok := seriesIdx[row.GSE]
		if !ok {
			si = len(specs)
			seriesIdx[row.GSE] = si
			specs = append(specs, SeriesSpec{Accession: row.GSE})
		}

		key := pairKey{gse: row.GSE, pair: row.Pair}
		pi, ok := pairIdx[key]
		if !ok {
			pi = len(specs[si].Pairs)
			pairIdx[key] = pi
			specs[si].Pairs = append(specs[si].Pairs, match.GroupPairSpec{})
		}

		pair := specs[si].Pairs[pi]
		gi := -1
		for j := range pair {
			if pair[j].Name == row.Group {
				gi = j
				break
			}
		}
		if gi < 0 {
			pair = append(pair, match.Group{Name: row.Group})
			gi = len(pair) - 1
		}
		pair[gi].Regexes = setRegex(pair[gi].Regexes, ar)
		specs[si].Pairs[pi] = pair
	}

	return specs, nil
}

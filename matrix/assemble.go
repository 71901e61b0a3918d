package matrix

import (
	"sort"
	"strings"

	"github.com/carbocation/geocounts/diag"
	"github.com/carbocation/geocounts/match"
)

// DefaultIndexName labels the gene index when neither source names it.
const DefaultIndexName = "GeneID"

// Row is one gene of an AssembledTable. Index holds the gene identifier
// followed by one value per annotation column.
type Row struct {
	Index  []string
	Values []string
}

// AssembledTable is the output for one group-pair: the matched sample columns,
// labeled "<group><sep><sample>", indexed by gene identifier and, when an
// annotation table was supplied, by each annotation column as well.
type AssembledTable struct {
	IndexNames []string
	Columns    []string
	Rows       []Row
}

// Levels is the number of index levels.
func (a *AssembledTable) Levels() int {
	return len(a.IndexNames)
}

// columnSource is one output column and the count-matrix column feeding it.
type columnSource struct {
	label  string
	sample string
}

// Assemble projects the samples of pair out of counts, relabels them with
// their group, and joins them with annot on the gene identifier. annot may be
// nil, in which case the gene identifier is the only index level. Samples
// missing from counts are dropped with a diagnostic; a pair with no usable
// sample yields a table without data columns rather than an error.
func Assemble(pair match.ResolvedPair, counts *CountMatrix, annot *AnnotationTable, sep string, d *diag.Collector) *AssembledTable {
	out := &AssembledTable{
		IndexNames: []string{indexName(counts, annot)},
		Columns:    make([]string, 0),
		Rows:       make([]Row, 0),
	}

	var annotCols []string
	if annot != nil {
		annotCols = annot.Columns
		out.IndexNames = append(out.IndexNames, annotCols...)
	}

	sources := make([]columnSource, 0)
	for _, group := range pair {
		present, dropped := intersect(group.Samples, counts)
		if len(present) == 0 {
			d.Warnf("No GSMs matched for %s", group.Group)
			continue
		}
		if len(dropped) > 0 {
			d.Warnf("%d/%d matched for %s, dropped: [%s]", len(present), len(present)+len(dropped), group.Group, strings.Join(dropped, ", "))
		}

		for _, sample := range present {
			sources = append(sources, columnSource{label: group.Group + sep + sample, sample: sample})
		}
	}

	if len(sources) == 0 {
		d.Warnf("No samples of %s were found in the count matrix", strings.Join(pair.Groups(), ", "))
	}

	for _, src := range sources {
		out.Columns = append(out.Columns, src.label)
	}

	for _, gene := range rowGenes(counts, annot, len(sources) > 0) {
		row := Row{
			Index:  make([]string, 0, 1+len(annotCols)),
			Values: make([]string, 0, len(sources)),
		}
		row.Index = append(row.Index, gene)
		for _, col := range annotCols {
			v, _ := annot.Value(gene, col)
			row.Index = append(row.Index, v)
		}
		for _, src := range sources {
			v, _ := counts.Value(gene, src.sample)
			row.Values = append(row.Values, v)
		}
		out.Rows = append(out.Rows, row)
	}

	return out
}

// intersect splits samples into those that are count-matrix columns and those
// that are not. Both results are sorted so that output does not depend on the
// order in which samples were matched.
func intersect(samples []string, counts *CountMatrix) (present, dropped []string) {
	seen := make(map[string]struct{}, len(samples))
	for _, s := range samples {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}

		if counts != nil && counts.Has(s) {
			present = append(present, s)
		} else {
			dropped = append(dropped, s)
		}
	}

	sort.Strings(present)
	sort.Strings(dropped)

	return present, dropped
}

// rowGenes is the sorted union of the gene identifiers of the tables that
// contribute columns.
func rowGenes(counts *CountMatrix, annot *AnnotationTable, withCounts bool) []string {
	seen := make(map[string]struct{})
	genes := make([]string, 0)

	add := func(t *Table) {
		for _, gene := range t.Index {
			if _, exists := seen[gene]; exists {
				continue
			}
			seen[gene] = struct{}{}
			genes = append(genes, gene)
		}
	}

	if annot != nil {
		add(annot)
	}
	if withCounts && counts != nil {
		add(counts)
	}

	sort.Strings(genes)

	return genes
}

func indexName(counts *CountMatrix, annot *AnnotationTable) string {
	if counts != nil && counts.IndexName != "" {
		return counts.IndexName
	}
	if annot != nil && annot.IndexName != "" {
		return annot.IndexName
	}

	return DefaultIndexName
}

// Package matrix holds gene-by-column tables whose cells are kept as raw text,
// and assembles per-group-pair count tables from them.
package matrix

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/carbocation/geocounts"
	"github.com/carbocation/pfx"
)

var (
	ErrMissingColumn = errors.New("column not found")
	ErrDuplicateGene = errors.New("duplicate gene identifier")
	ErrEmptyTable    = errors.New("table has no header")
)

// sniffBytes is how much of a table is handed to the delimiter detector.
const sniffBytes = 64 * 1024

// Table is a gene-identifier-indexed table of text cells. The first column of
// the source is the index. CountMatrix and AnnotationTable are both Tables.
type Table struct {
	IndexName string
	Columns   []string
	Index     []string // gene identifiers in source order

	rows   map[string][]string
	colIdx map[string]int
}

// CountMatrix is a gene-by-sample table of counts.
type CountMatrix = Table

// AnnotationTable is a gene-by-attribute table of annotations.
type AnnotationTable = Table

// NewTable builds a table from in-memory rows; each row's first cell is the
// gene identifier.
func NewTable(indexName string, columns []string, rows [][]string) (*Table, error) {
	t := &Table{
		IndexName: indexName,
		Columns:   append([]string(nil), columns...),
		Index:     make([]string, 0, len(rows)),
		rows:      make(map[string][]string, len(rows)),
		colIdx:    make(map[string]int, len(columns)),
	}
	for i, col := range t.Columns {
		if _, exists := t.colIdx[col]; !exists {
			t.colIdx[col] = i
		}
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if err := t.addRow(row); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	return t, nil
}

func (t *Table) addRow(row []string) error {
	gene := row[0]
	if _, exists := t.rows[gene]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateGene, gene)
	}

	values := make([]string, len(t.Columns))
	copy(values, row[1:])
	t.rows[gene] = values
	t.Index = append(t.Index, gene)

	return nil
}

// ReadTable parses a delimited table whose header names the index and the
// columns.
func ReadTable(r io.Reader, delim rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyTable
	} else if err != nil {
		return nil, pfx.Err(err)
	}

	t, err := NewTable(header[0], header[1:], nil)
	if err != nil {
		return nil, err
	}

	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, pfx.Err(err)
		}
		if len(row) == 0 || (len(row) == 1 && row[0] == "") {
			continue
		}
		if len(row) > len(header) {
			return nil, fmt.Errorf("line %d has %d fields, header has %d", line, len(row), len(header))
		}
		if err := t.addRow(row); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}

	return t, nil
}

// ReadTableFile reads a (possibly compressed) table from path. The delimiter is
// taken from the extension when it is .tsv or .csv, and detected otherwise.
func ReadTableFile(path string) (*Table, error) {
	rc, err := geocounts.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	br := bufio.NewReaderSize(rc, sniffBytes)
	delim, ok := delimiterFromName(path)
	if !ok {
		head, err := br.Peek(sniffBytes)
		if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
			return nil, pfx.Err(err)
		}
		delim = geocounts.DetermineDelimiter(bytes.NewReader(head))
	}

	t, err := ReadTable(br, delim)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	return t, nil
}

func delimiterFromName(path string) (rune, bool) {
	name := strings.ToLower(filepath.Base(path))
	for _, suffix := range []string{".gz", ".bz2", ".xz", ".zip"} {
		name = strings.TrimSuffix(name, suffix)
	}

	switch filepath.Ext(name) {
	case ".tsv", ".tab":
		return '\t', true
	case ".csv":
		return ',', true
	}

	return 0, false
}

// Len is the number of rows.
func (t *Table) Len() int {
	return len(t.Index)
}

// Has reports whether col is one of the table's columns.
func (t *Table) Has(col string) bool {
	_, ok := t.colIdx[col]
	return ok
}

// HasGene reports whether gene is in the index.
func (t *Table) HasGene(gene string) bool {
	_, ok := t.rows[gene]
	return ok
}

// Value returns the cell at gene and col.
func (t *Table) Value(gene, col string) (string, bool) {
	row, ok := t.rows[gene]
	if !ok {
		return "", false
	}
	i, ok := t.colIdx[col]
	if !ok {
		return "", false
	}

	return row[i], true
}

// Select projects the table onto cols, in the order given.
func (t *Table) Select(cols []string) (*Table, error) {
	positions := make([]int, 0, len(cols))
	for _, col := range cols {
		i, ok := t.colIdx[col]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
		positions = append(positions, i)
	}

	out, _ := NewTable(t.IndexName, cols, nil)
	for _, gene := range t.Index {
		src := t.rows[gene]
		values := make([]string, len(positions))
		for j, i := range positions {
			values[j] = src[i]
		}
		out.rows[gene] = values
		out.Index = append(out.Index, gene)
	}

	return out, nil
}

package matrix

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/carbocation/pfx"
)

// BufferSize is the size of the write buffer used by WriteFile.
var BufferSize = 4096 * 8

// Write prints the table with a header of index level names followed by the
// data column labels. Missing cells are written as empty fields.
func (a *AssembledTable) Write(w io.Writer, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	header := make([]string, 0, len(a.IndexNames)+len(a.Columns))
	header = append(header, a.IndexNames...)
	header = append(header, a.Columns...)
	if err := cw.Write(header); err != nil {
		return pfx.Err(err)
	}

	line := make([]string, 0, len(header))
	for _, row := range a.Rows {
		line = line[:0]
		line = append(line, row.Index...)
		line = append(line, row.Values...)
		if err := cw.Write(line); err != nil {
			return pfx.Err(err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return pfx.Err(err)
	}

	return nil
}

// WriteFile writes the table to path, creating parent directories as needed.
func (a *AssembledTable) WriteFile(path string, comma rune) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return pfx.Err(err)
	}

	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}

	bw := bufio.NewWriterSize(f, BufferSize)
	if err := a.Write(bw, comma); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return pfx.Err(err)
	}

	if err := f.Close(); err != nil {
		return pfx.Err(err)
	}

	return nil
}

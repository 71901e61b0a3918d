package geo

import (
	"fmt"
	"strings"
)

const (
	DefaultAnnotationVersion = "GRCh38.p13"
	DefaultSpecies           = "Human"
)

// AnnotationColumns are the columns of the NCBI gene annotation table that may
// be carried into an output table.
var AnnotationColumns = []string{
	"Symbol",
	"Description",
	"Synonyms",
	"GeneType",
	"EnsemblGeneID",
	"Status",
	"ChrAcc",
	"ChrStart",
	"ChrStop",
	"Orientation",
	"Length",
	"GOFunctionID",
	"GOProcessID",
	"GOComponentID",
	"GOFunction",
	"GOProcess",
	"GOComponent",
}

// ValidateAnnotationColumns rejects unknown or repeated column names.
func ValidateAnnotationColumns(cols []string) error {
	known := make(map[string]struct{}, len(AnnotationColumns))
	for _, v := range AnnotationColumns {
		known[v] = struct{}{}
	}

	seen := make(map[string]struct{}, len(cols))
	for _, col := range cols {
		if _, ok := known[col]; !ok {
			return fmt.Errorf("Unknown annotation column %q (choices: %s)", col, strings.Join(AnnotationColumns, ", "))
		}
		if _, dup := seen[col]; dup {
			return fmt.Errorf("Annotation column %q was requested more than once", col)
		}
		seen[col] = struct{}{}
	}

	return nil
}

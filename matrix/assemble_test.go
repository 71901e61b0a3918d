package matrix

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carbocation/geocounts/diag"
	"github.com/carbocation/geocounts/match"
)

func mustTable(t *testing.T, content string) *Table {
	t.Helper()
	tab, err := ReadTable(strings.NewReader(content), '\t')
	if err != nil {
		t.Fatal(err)
	}
	return tab
}

func TestAssembleWithoutAnnotation(t *testing.T) {
	counts := mustTable(t, countsTSV)
	pair := match.ResolvedPair{
		{Group: "control", Samples: []string{"GSM3", "GSM1"}},
		{Group: "treatment", Samples: []string{"GSM2"}},
	}

	d := diag.New("GSE1", false)
	out := Assemble(pair, counts, nil, "-", d)

	if out.Levels() != 1 {
		t.Errorf("Expected 1 index level, got %d", out.Levels())
	}
	if got := strings.Join(out.Columns, ","); got != "control-GSM1,control-GSM3,treatment-GSM2" {
		t.Errorf("Unexpected columns %s", got)
	}
	if d.Len() != 0 {
		t.Errorf("Unexpected diagnostics %v", d.Messages())
	}

	// Lexicographic order of the text identifiers
	var genes []string
	for _, row := range out.Rows {
		genes = append(genes, row.Index[0])
	}
	if strings.Join(genes, ",") != "10,100,2" {
		t.Errorf("Unexpected row order %v", genes)
	}
	if got := strings.Join(out.Rows[1].Values, ","); got != "1,3,2" {
		t.Errorf("Unexpected values for gene 100: %s", got)
	}
}

func TestAssembleWithAnnotation(t *testing.T) {
	counts := mustTable(t, countsTSV)
	annot, err := mustTable(t, annotTSV).Select([]string{"Symbol", "Description"})
	if err != nil {
		t.Fatal(err)
	}
	pair := match.ResolvedPair{{Group: "control", Samples: []string{"GSM2"}}}

	out := Assemble(pair, counts, annot, "_", nil)

	if out.Levels() != 3 {
		t.Errorf("Expected 3 index levels, got %d", out.Levels())
	}
	if strings.Join(out.IndexNames, ",") != "GeneID,Symbol,Description" {
		t.Errorf("Unexpected index names %v", out.IndexNames)
	}
	if len(out.Rows) != 4 {
		t.Fatalf("Expected the union of 4 genes, got %d", len(out.Rows))
	}

	var buf bytes.Buffer
	if err := out.Write(&buf, '\t'); err != nil {
		t.Fatal(err)
	}
	want := "GeneID\tSymbol\tDescription\tcontrol_GSM2\n" +
		"10\tB\tgene b\t8\n" +
		"100\tC\t\"gene \"\"c\"\"\"\t2\n" +
		"2\tA\tgene a, alpha\t5\n" +
		"5\tE\tgene e\t\n"
	if buf.String() != want {
		t.Errorf("Unexpected output:\n%s", buf.String())
	}
}

func TestAssemblePartialOverlap(t *testing.T) {
	header := []string{"GeneID"}
	row := []string{"1"}
	for i := 0; i < 7; i++ {
		header = append(header, fmt.Sprintf("GSM1%02d", i))
		row = append(row, "0")
	}
	for i := 0; i < 8; i++ {
		header = append(header, fmt.Sprintf("GSM2%02d", i))
		row = append(row, "0")
	}
	counts := mustTable(t, strings.Join(header, "\t")+"\n"+strings.Join(row, "\t")+"\n")

	var control, treatment []string
	for i := 9; i >= 0; i-- {
		control = append(control, fmt.Sprintf("GSM1%02d", i))
	}
	for i := 0; i < 8; i++ {
		treatment = append(treatment, fmt.Sprintf("GSM2%02d", i))
	}
	pair := match.ResolvedPair{
		{Group: "control", Samples: control},
		{Group: "treatment", Samples: treatment},
	}

	d := diag.New("GSE1", false)
	out := Assemble(pair, counts, nil, "-", d)

	if len(out.Columns) != 15 {
		t.Errorf("Expected 7 + 8 columns, got %d", len(out.Columns))
	}
	msgs := d.Messages()
	if len(msgs) != 1 {
		t.Fatalf("Expected one diagnostic, got %v", msgs)
	}
	if msgs[0] != "7/10 matched for control, dropped: [GSM107, GSM108, GSM109]" {
		t.Errorf("Unexpected diagnostic %q", msgs[0])
	}
}

func TestAssembleNoOverlap(t *testing.T) {
	counts := mustTable(t, countsTSV)
	pair := match.ResolvedPair{{Group: "control", Samples: []string{"GSM8", "GSM9"}}}

	d := diag.New("GSE1", false)
	out := Assemble(pair, counts, nil, "-", d)

	if len(out.Columns) != 0 || len(out.Rows) != 0 {
		t.Errorf("Expected an empty table, got %d columns and %d rows", len(out.Columns), len(out.Rows))
	}
	if d.Len() != 2 {
		t.Errorf("Expected group and pair diagnostics, got %v", d.Messages())
	}

	var buf bytes.Buffer
	if err := out.Write(&buf, '\t'); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "GeneID\n" {
		t.Errorf("Unexpected output %q", buf.String())
	}
}

func TestAssembleIsDeterministic(t *testing.T) {
	counts := mustTable(t, countsTSV)
	annot, _ := mustTable(t, annotTSV).Select([]string{"Symbol"})
	pair := match.ResolvedPair{
		{Group: "treatment", Samples: []string{"GSM3", "GSM2"}},
		{Group: "control", Samples: []string{"GSM1"}},
	}

	render := func() string {
		var buf bytes.Buffer
		if err := Assemble(pair, counts, annot, "-", nil).Write(&buf, '\t'); err != nil {
			t.Fatal(err)
		}
		return buf.String()
	}

	first, second := render(), render()
	if first != second {
		t.Errorf("Outputs differ:\n%s\n%s", first, second)
	}
	if !strings.HasPrefix(first, "GeneID\tSymbol\ttreatment-GSM2\ttreatment-GSM3\tcontrol-GSM1\n") {
		t.Errorf("Groups should follow the resolved pair order:\n%s", first)
	}
}

func TestWriteFile(t *testing.T) {
	counts := mustTable(t, countsTSV)
	out := Assemble(match.ResolvedPair{{Group: "c", Samples: []string{"GSM1"}}}, counts, nil, "-", nil)

	dir := filepath.Join(t.TempDir(), "nested")
	path := filepath.Join(dir, "GSE1-1.tsv")
	if err := out.WriteFile(path, '\t'); err != nil {
		t.Fatal(err)
	}

	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		t.Fatalf("Parent directory was not created: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "GeneID\tc-GSM1\n" +
		"10\t7\n" +
		"100\t1\n" +
		"2\t4\n"
	if string(b) != want {
		t.Errorf("Unexpected file content:\n%q\nwant\n%q", string(b), want)
	}
}

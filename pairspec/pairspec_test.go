package pairspec

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carbocation/geocounts/match"
	"gopkg.in/yaml.v3"
)

const exampleYAML = `GSE164073:
  - control:
      title: Cornea
      characteristics_ch1: mock
    treatment:
      title: Cornea
      characteristics_ch1: SARS-CoV-2
  - control:
      geo_accession: ^GSM499609[6-8]$
    treatment:
      geo_accession: ^GSM4996099$|^GSM4996100$|^GSM4996101$
GSE63966:
  - treatment: {title: LP-A}
    control: {title: LP-C}
`

func TestParseYAML(t *testing.T) {
	specs, err := ParseYAML(strings.NewReader(exampleYAML))
	if err != nil {
		t.Fatal(err)
	}

	if got := strings.Join(specs.Accessions(), ","); got != "GSE164073,GSE63966" {
		t.Errorf("Series order was not kept: %s", got)
	}

	first, _ := specs.Get("GSE164073")
	if len(first.Pairs) != 2 {
		t.Fatalf("Expected 2 pairs, got %d", len(first.Pairs))
	}
	if p, _ := first.Pairs[0][1].Regexes.Get("characteristics_ch1"); p != "SARS-CoV-2" {
		t.Errorf("Unexpected pattern %q", p)
	}
	if p, _ := first.Pairs[1][0].Regexes.Get("geo_accession"); p != "^GSM499609[6-8]$" {
		t.Errorf("Unexpected pattern %q", p)
	}

	second, _ := specs.Get("GSE63966")
	if got := strings.Join(second.Pairs[0].Names(), ","); got != "treatment,control" {
		t.Errorf("Group order was not kept: %s", got)
	}
}

func TestParseYAMLErrors(t *testing.T) {
	cases := map[string]string{
		"not a mapping":  "- GSE1\n",
		"pairs not list": "GSE1: {control: {title: x}}\n",
		"bad regex":      "GSE1:\n  - control: {title: '('}\n",
		"duplicate":      "GSE1: []\nGSE1: []\n",
		"nested pattern": "GSE1:\n  - control: {title: [a, b]}\n",
		"repeated group": "GSE1:\n  - control: {title: A}\n    control: {title: B}\n",
	}

	for name, doc := range cases {
		if _, err := ParseYAML(strings.NewReader(doc)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestParseYAMLRepeatedGroup(t *testing.T) {
	doc := "GSE1:\n  - control: {title: A}\n    treatment: {title: C}\n    control: {title: B}\n"

	_, err := ParseYAML(strings.NewReader(doc))
	if !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("Expected ErrInvalidDocument, got %v", err)
	}
	if !strings.Contains(err.Error(), "control") {
		t.Errorf("Error does not name the group: %v", err)
	}
}

const exampleCSV = `gse,pair,group,attrib,pattern
GSE63966,2,control,title,HM3-C
GSE63966,1,control,title,LP-C
GSE164073,1,treatment,title,Cornea
GSE63966,1,treatment,title,LP-A
GSE63966,2,treatment,title,HM3-A
GSE164073,1,treatment,characteristics_ch1,SARS-CoV-2
GSE164073,1,control,title,Cornea
GSE164073,1,control,characteristics_ch1,mock
`

func TestParseTableFirstSeenOrder(t *testing.T) {
	specs, err := ParseTable(strings.NewReader(exampleCSV), ',')
	if err != nil {
		t.Fatal(err)
	}

	if got := strings.Join(specs.Accessions(), ","); got != "GSE63966,GSE164073" {
		t.Errorf("Series should be in first-seen order, got %s", got)
	}

	gse, _ := specs.Get("GSE63966")
	if len(gse.Pairs) != 2 {
		t.Fatalf("Expected 2 pairs, got %d", len(gse.Pairs))
	}
	if p, _ := gse.Pairs[0][0].Regexes.Get("title"); p != "HM3-C" {
		t.Errorf("Pair 2 was seen first and should come first, got %q", p)
	}

	cov, _ := specs.Get("GSE164073")
	pair := cov.Pairs[0]
	if got := strings.Join(pair.Names(), ","); got != "treatment,control" {
		t.Errorf("Groups should be in first-seen order, got %s", got)
	}
	if len(pair[0].Regexes) != 2 || pair[0].Regexes[0].Attribute != "title" {
		t.Errorf("Unexpected treatment predicates %v", pair[0].Regexes)
	}
}

func TestParseTableTSV(t *testing.T) {
	tsv := strings.ReplaceAll(exampleCSV, ",", "\t")
	specs, err := Parse(strings.NewReader(tsv), FormatTSV)
	if err != nil {
		t.Fatal(err)
	}
	if len(specs) != 2 {
		t.Errorf("Expected 2 series, got %d", len(specs))
	}
}

func TestParseTableErrors(t *testing.T) {
	if _, err := ParseTable(strings.NewReader("gse,pair,group,pattern,attrib\n"), ','); !errors.Is(err, ErrInvalidColumns) {
		t.Errorf("Expected ErrInvalidColumns, got %v", err)
	}
	if _, err := ParseTable(strings.NewReader("gse,pair,group,attrib,pattern\nGSM1,1,control,title,x\n"), ','); err == nil {
		t.Error("Expected a non-series accession to be rejected")
	}
	if _, err := ParseTable(strings.NewReader("gse,pair,group,attrib,pattern\nGSE1,1,control,title,(\n"), ','); err == nil {
		t.Error("Expected an invalid pattern to be rejected")
	}
}

func TestFormatFromPath(t *testing.T) {
	cases := map[string]Format{
		"specs.yaml":                  FormatYAML,
		"dir/specs.YML":               FormatYAML,
		"specs.csv":                   FormatCSV,
		"gs://bucket/specs.tsv":       FormatTSV,
		"https://host/a/specs.yaml?x": FormatYAML,
	}
	for p, want := range cases {
		got, err := FormatFromPath(p)
		if err != nil || got != want {
			t.Errorf("%s: got %v, %v", p, got, err)
		}
	}

	if _, err := FormatFromPath("specs.json"); !errors.Is(err, ErrUnsupportedExtension) {
		t.Errorf("Expected ErrUnsupportedExtension, got %v", err)
	}
}

func TestLoadLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regex.yaml")
	if err := os.WriteFile(path, []byte(exampleYAML), 0644); err != nil {
		t.Fatal(err)
	}

	specs, err := Load(context.Background(), path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(specs) != 2 {
		t.Errorf("Expected 2 series, got %d", len(specs))
	}
}

func TestSaveMatched(t *testing.T) {
	records := []SeriesSamples{
		{
			Accession: "GSE63966",
			Pairs: []match.ResolvedPair{
				{
					{Group: "treatment", Samples: []string{"GSM3"}},
					{Group: "control", Samples: []string{"GSM2", "GSM1"}},
				},
			},
		},
	}

	path := filepath.Join(t.TempDir(), "out", "sample_gsms.yaml")
	if err := SaveMatched(path, records); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string][]map[string][]string
	if err := yaml.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	pairs := decoded["GSE63966"]
	if len(pairs) != 1 || strings.Join(pairs[0]["control"], ",") != "GSM2,GSM1" || strings.Join(pairs[0]["treatment"], ",") != "GSM3" {
		t.Errorf("Unexpected record %v", decoded)
	}

	// Groups are written in resolved order, not sorted
	text := string(b)
	if strings.Index(text, "treatment") > strings.Index(text, "control") {
		t.Errorf("Unexpected group order:\n%s", text)
	}
}

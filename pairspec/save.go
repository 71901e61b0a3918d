package pairspec

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/carbocation/geocounts/match"
	"github.com/carbocation/pfx"
	"gopkg.in/yaml.v3"
)

// SeriesSamples is the record of one series: the resolved samples of each
// group-pair that matched, in the order the pairs were declared.
type SeriesSamples struct {
	Accession string
	Pairs     []match.ResolvedPair
}

// MarshalMatched renders records as YAML, series then pairs then groups in
// order.
func MarshalMatched(records []SeriesSamples) *yaml.Node {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, rec := range records {
		pairs := &yaml.Node{Kind: yaml.SequenceNode}
		for _, pair := range rec.Pairs {
			groups := &yaml.Node{Kind: yaml.MappingNode}
			for _, g := range pair {
				samples := &yaml.Node{Kind: yaml.SequenceNode}
				for _, s := range g.Samples {
					samples.Content = append(samples.Content, scalar(s))
				}
				groups.Content = append(groups.Content, scalar(g.Group), samples)
			}
			pairs.Content = append(pairs.Content, groups)
		}
		root.Content = append(root.Content, scalar(rec.Accession), pairs)
	}

	return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

// SaveMatched writes records to path as YAML, creating parent directories.
func SaveMatched(path string, records []SeriesSamples) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return pfx.Err(err)
	}

	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}

	bw := bufio.NewWriter(f)
	enc := yaml.NewEncoder(bw)
	enc.SetIndent(2)
	if err := enc.Encode(MarshalMatched(records)); err != nil {
		f.Close()
		return pfx.Err(err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return pfx.Err(err)
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

package pairspec

import (
	"fmt"
	"io"

	"github.com/carbocation/geocounts/match"
	"gopkg.in/yaml.v3"
)

// ParseYAML reads a document of the form
//
//	GSE164073:
//	  - control:
//	      title: Cornea
//	      characteristics_ch1: mock
//	    treatment:
//	      title: Cornea
//	      characteristics_ch1: SARS-CoV-2
//
// The document is walked as a node tree so that the order of series, pairs,
// groups and attributes is kept.
func ParseYAML(r io.Reader) (SeriesSpecs, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return SeriesSpecs{}, nil
		}
		return nil, err
	}

	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return SeriesSpecs{}, nil
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, nodeErr(root, "expected a mapping of series accessions")
	}

	specs := make(SeriesSpecs, 0, len(root.Content)/2)
	seen := make(map[string]struct{})
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if _, dup := seen[key.Value]; dup {
			return nil, nodeErr(key, "series %s is declared more than once", key.Value)
		}
		seen[key.Value] = struct{}{}

		pairs, err := parsePairs(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key.Value, err)
		}
		specs = append(specs, SeriesSpec{Accession: key.Value, Pairs: pairs})
	}

	return specs, nil
}

func parsePairs(n *yaml.Node) ([]match.GroupPairSpec, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, nodeErr(n, "expected a sequence of group-pairs")
	}

	out := make([]match.GroupPairSpec, 0, len(n.Content))
	for _, item := range n.Content {
		if item.Kind != yaml.MappingNode {
			return nil, nodeErr(item, "expected a mapping of groups")
		}

		pair := make(match.GroupPairSpec, 0, len(item.Content)/2)
		seen := make(map[string]struct{})
		for i := 0; i+1 < len(item.Content); i += 2 {
			name, body := item.Content[i], item.Content[i+1]
			if _, dup := seen[name.Value]; dup {
				return nil, nodeErr(name, "group %s is declared more than once in a group-pair", name.Value)
			}
			seen[name.Value] = struct{}{}

			regexes, err := parseRegexes(body)
			if err != nil {
				return nil, fmt.Errorf("group %s: %w", name.Value, err)
			}
			pair = append(pair, match.Group{Name: name.Value, Regexes: regexes})
		}
		out = append(out, pair)
	}

	return out, nil
}

func parseRegexes(n *yaml.Node) (match.AttributeRegexSet, error) {
	if n.Kind != yaml.MappingNode {
		return nil, nodeErr(n, "expected a mapping of attribute patterns")
	}

	out := make(match.AttributeRegexSet, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		attr, pattern := n.Content[i], n.Content[i+1]
		if pattern.Kind != yaml.ScalarNode {
			return nil, nodeErr(pattern, "pattern for %s must be a string", attr.Value)
		}
		ar, err := match.NewAttributeRegex(attr.Value, pattern.Value)
		if err != nil {
			return nil, err
		}
		out = setRegex(out, ar)
	}

	return out, nil
}

// setRegex replaces an existing predicate on the same attribute in place, or
// appends a new one.
func setRegex(set match.AttributeRegexSet, ar match.AttributeRegex) match.AttributeRegexSet {
	for i := range set {
		if set[i].Attribute == ar.Attribute {
			set[i] = ar
			return set
		}
	}

	return append(set, ar)
}

func nodeErr(n *yaml.Node, format string, args ...interface{}) error {
	return fmt.Errorf("%w: line %d: %s", ErrInvalidDocument, n.Line, fmt.Sprintf(format, args...))
}

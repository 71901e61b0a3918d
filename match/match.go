package match

import (
	"github.com/carbocation/geocounts/diag"
	"github.com/carbocation/geocounts/geo"
)

// Matches reports whether sample satisfies every predicate of set. An empty
// set matches every sample. A predicate on an attribute the sample lacks does
// not hold, and a diagnostic names the attribute and the sample.
func Matches(set AttributeRegexSet, sample geo.Sample, d *diag.Collector) bool {
	matched := true

	// Every predicate is evaluated so that each missing attribute is reported.
	for _, ar := range set {
		values := sample.Metadata.Values(ar.Attribute)
		if len(values) == 0 {
			d.Warnf("Attribute '%s' not found in %s", ar.Attribute, sample.Accession)
			matched = false
			continue
		}

		if !anyValueMatches(ar, values) {
			matched = false
		}
	}

	return matched
}

func anyValueMatches(ar AttributeRegex, values []string) bool {
	for _, v := range values {
		if v == "" {
			continue
		}
		if ar.MatchString(v) {
			return true
		}
	}

	return false
}

// ResolveGroup returns the accessions of the samples of pool that match set,
// in pool order. An empty result is reported but is not an error.
func ResolveGroup(name string, set AttributeRegexSet, pool geo.SamplePool, d *diag.Collector) []string {
	matched := make([]string, 0)
	seen := make(map[string]struct{})

	for _, sample := range pool {
		if !Matches(set, sample, d) {
			continue
		}
		if _, dup := seen[sample.Accession]; dup {
			continue
		}
		seen[sample.Accession] = struct{}{}
		matched = append(matched, sample.Accession)
	}

	if len(matched) == 0 {
		d.Warnf("No GSMs matched for %s", name)
	}

	return matched
}

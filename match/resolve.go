package match

import (
	"github.com/carbocation/geocounts/diag"
	"github.com/carbocation/geocounts/geo"
)

// GroupSamples is a group name and the accessions resolved for it.
type GroupSamples struct {
	Group   string
	Samples []string
}

// ResolvedPair holds, for each group of a GroupPairSpec that matched at least
// one sample, the matched accessions. Groups keep the GroupPairSpec's order; groups
// that matched nothing are absent.
type ResolvedPair []GroupSamples

// Groups lists the group names present.
func (r ResolvedPair) Groups() []string {
	out := make([]string, 0, len(r))
	for _, g := range r {
		out = append(out, g.Group)
	}

	return out
}

// Samples returns the accessions resolved for group.
func (r ResolvedPair) Samples(group string) ([]string, bool) {
	for _, g := range r {
		if g.Group == group {
			return g.Samples, true
		}
	}

	return nil, false
}

// ResolvePair resolves every group of spec against pool. The boolean is false
// when no group matched anything, in which case the pair must not be
// assembled.
func ResolvePair(spec GroupPairSpec, pool geo.SamplePool, d *diag.Collector) (ResolvedPair, bool) {
	out := make(ResolvedPair, 0, len(spec))

	for _, group := range spec {
		samples := ResolveGroup(group.Name, group.Regexes, pool, d)
		if len(samples) == 0 {
			continue
		}
		out = append(out, GroupSamples{Group: group.Name, Samples: samples})
	}

	if len(out) == 0 {
		return nil, false
	}

	return out, true
}

package geo

// Metadata maps an attribute name (e.g. "title", "characteristics_ch1") to the
// ordered values recorded for it. Attributes are multi-valued; a value may be
// the empty string.
type Metadata map[string][]string

// Values returns the values recorded for attr, or nil if it is absent.
func (m Metadata) Values(attr string) []string {
	if m == nil {
		return nil
	}

	return m[attr]
}

// Has reports whether attr carries at least one value.
func (m Metadata) Has(attr string) bool {
	return len(m.Values(attr)) > 0
}

// Sample is one GSM record. It is not modified after it has been read.
type Sample struct {
	Accession string
	Metadata  Metadata
}

// SamplePool is the set of samples of one series, in retrieval order.
type SamplePool []Sample

// Accessions lists the sample accessions in pool order.
func (p SamplePool) Accessions() []string {
	out := make([]string, 0, len(p))
	for _, s := range p {
		out = append(out, s.Accession)
	}

	return out
}

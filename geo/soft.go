package geo

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/carbocation/geocounts"
)

// Line prefixes of the SOFT format.
const (
	entityPrefix     = "^"
	attributePrefix  = "!"
	descriptorPrefix = "#"

	sampleEntity     = "SAMPLE"
	sampleTableBegin = "!sample_table_begin"
	sampleTableEnd   = "!sample_table_end"

	maxSOFTLine = 16 * 1024 * 1024
)

// SOFT reads the SAMPLE entities of a GEO SOFT family file one at a time.
type SOFT struct {
	path    string
	closer  io.Closer
	scanner *bufio.Scanner
	pending string // entity line seen while finishing the previous sample
	err     error
}

// OpenSOFT opens a SOFT file, which may be gzip compressed.
func OpenSOFT(path string) (*SOFT, error) {
	rc, err := geocounts.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}

	soft := NewSOFT(rc)
	soft.path = path
	soft.closer = rc

	return soft, nil
}

// NewSOFT reads SOFT content from r. Close is a no-op for a reader created this
// way.
func NewSOFT(r io.Reader) *SOFT {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxSOFTLine)

	return &SOFT{scanner: scanner}
}

func (s *SOFT) Close() error {
	if s.closer == nil {
		return nil
	}

	return s.closer.Close()
}

func (s *SOFT) Err() error {
	if s.err != nil {
		return s.err
	}

	return s.scanner.Err()
}

// next returns the next line, honoring a stashed entity line.
func (s *SOFT) next() (string, bool) {
	if s.pending != "" {
		line := s.pending
		s.pending = ""
		return line, true
	}

	if !s.scanner.Scan() {
		return "", false
	}

	return strings.TrimRight(s.scanner.Text(), "\r"), true
}

// Read returns the next sample, or nil once the file is exhausted or an error
// occurred; check Err to tell them apart.
func (s *SOFT) Read() *Sample {
	var sample *Sample
	inTable := false

	for {
		line, ok := s.next()
		if !ok {
			return sample
		}

		switch {
		case strings.HasPrefix(line, entityPrefix):
			kind, name := splitEntry(strings.TrimPrefix(line, entityPrefix))
			if sample != nil {
				// The previous sample ends where any entity begins
				s.pending = line
				return sample
			}
			if strings.EqualFold(kind, sampleEntity) {
				sample = &Sample{Accession: name, Metadata: Metadata{}}
			}
			inTable = false

		case sample == nil:
			continue

		case strings.EqualFold(line, sampleTableBegin):
			inTable = true

		case strings.EqualFold(line, sampleTableEnd):
			inTable = false

		case inTable, strings.HasPrefix(line, descriptorPrefix):
			continue

		case strings.HasPrefix(line, attributePrefix):
			key, value := splitEntry(stripAttributeOwner(line))
			if key == "" {
				continue
			}
			sample.Metadata[key] = append(sample.Metadata[key], value)
		}
	}
}

// stripAttributeOwner turns "!Sample_characteristics_ch1 = x" into
// "characteristics_ch1 = x".
func stripAttributeOwner(line string) string {
	line = strings.TrimPrefix(line, attributePrefix)
	if i := strings.Index(line, "_"); i >= 0 {
		return line[i+1:]
	}

	return line
}

// splitEntry splits "key = value" on the first "=". A missing value is "".
func splitEntry(entry string) (string, string) {
	parts := strings.SplitN(entry, "=", 2)
	key := strings.TrimSpace(parts[0])
	if len(parts) < 2 {
		return key, ""
	}

	return key, strings.TrimSpace(parts[1])
}

// ReadSamples returns every sample in r, in file order.
func ReadSamples(r io.Reader) (SamplePool, error) {
	return readAll(NewSOFT(r))
}

// ReadSamplesFile returns every sample in the (possibly compressed) SOFT file.
func ReadSamplesFile(path string) (SamplePool, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	soft, err := OpenSOFT(path)
	if err != nil {
		return nil, err
	}
	defer soft.Close()

	return readAll(soft)
}

func readAll(soft *SOFT) (SamplePool, error) {
	pool := make(SamplePool, 0)
	for v := soft.Read(); v != nil; v = soft.Read() {
		pool = append(pool, *v)
	}
	if err := soft.Err(); err != nil {
		return nil, err
	}

	return pool, nil
}

package geo

import (
	"errors"
	"fmt"
	"strings"
)

const (
	SeriesPrefix = "GSE"
	SamplePrefix = "GSM"
)

var ErrInvalidAccession = errors.New("invalid series accession")

// ValidateSeriesAccession returns an error wrapping ErrInvalidAccession unless
// acc starts with the series prefix.
func ValidateSeriesAccession(acc string) error {
	if !strings.HasPrefix(acc, SeriesPrefix) {
		return fmt.Errorf("%w: %q must start with %s", ErrInvalidAccession, acc, SeriesPrefix)
	}

	return nil
}

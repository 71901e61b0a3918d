package geo

import (
	"fmt"
	"strings"
)

// CountNorm selects which NCBI-generated count matrix is downloaded. It only
// changes the requested file; no numeric transformation is performed here.
type CountNorm string

const (
	NormRaw  CountNorm = ""
	NormFPKM CountNorm = "fpkm"
	NormTPM  CountNorm = "tpm"
)

// ParseCountNorm accepts "", "none", "raw", "fpkm" and "tpm" (any case).
func ParseCountNorm(s string) (CountNorm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "raw":
		return NormRaw, nil
	case string(NormFPKM):
		return NormFPKM, nil
	case string(NormTPM):
		return NormTPM, nil
	}

	return NormRaw, fmt.Errorf("Supported normalization types are 'fpkm' and 'tpm', got %q", s)
}

func (n CountNorm) String() string {
	if n == NormRaw {
		return "raw"
	}
	return string(n)
}

// fileType is the token NCBI uses in count file names.
func (n CountNorm) fileType() (string, error) {
	switch n {
	case NormRaw:
		return "raw_counts", nil
	case NormFPKM, NormTPM:
		return "norm_counts_" + strings.ToUpper(string(n)), nil
	}

	return "", fmt.Errorf("Supported normalization types are 'fpkm' and 'tpm', got %q", string(n))
}

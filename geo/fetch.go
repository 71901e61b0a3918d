package geo

import (
	"context"
	"path/filepath"

	"github.com/carbocation/pfx"
)

// Fetcher retrieves src into dest, reusing dest if it is already present, and
// returns the local path that was written.
type Fetcher interface {
	Fetch(ctx context.Context, src, dest string) (string, error)
}

// FetchSeriesMetadata downloads the SOFT family file of a series into destDir
// and returns its samples in file order, along with the local path that was
// read.
func FetchSeriesMetadata(ctx context.Context, f Fetcher, acc, destDir string) (SamplePool, string, error) {
	if err := ValidateSeriesAccession(acc); err != nil {
		return nil, "", err
	}

	local, err := f.Fetch(ctx, SeriesSOFTURL(acc), filepath.Join(destDir, SeriesSOFTFilename(acc)))
	if err != nil {
		return nil, "", pfx.Err(err)
	}

	pool, err := ReadSamplesFile(local)
	if err != nil {
		return nil, local, pfx.Err(err)
	}

	return pool, local, nil
}

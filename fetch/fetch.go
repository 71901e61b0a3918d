// Package fetch copies remote files (http, https, gs://) or local files into a
// local cache directory, reusing what was downloaded before.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/carbocation/geocounts"
	"github.com/carbocation/pfx"
)

var ErrNotFound = errors.New("remote file is not available")

// Fetcher downloads files. The zero value downloads over http with the
// default client, without retries, and reuses files already on disk.
type Fetcher struct {
	HTTPClient *http.Client
	Storage    *storage.Client // needed only for gs:// sources

	// Force re-downloads files that already exist at the destination.
	Force bool

	// Retries is the number of extra attempts after a failed download, with
	// RetryWait between attempts. A missing remote file is not retried.
	Retries   int
	RetryWait time.Duration

	// Logger receives progress lines; nil silences them.
	Logger *log.Logger
}

// Fetch retrieves src into dest and returns dest. If dest already exists and
// Force is unset, nothing is downloaded.
func (f *Fetcher) Fetch(ctx context.Context, src, dest string) (string, error) {
	dest = geocounts.ExpandHome(dest)

	if !f.Force {
		if st, err := os.Stat(dest); err == nil && !st.IsDir() {
			f.logf("Already downloaded %s", dest)
			return dest, nil
		}
	}

	if st, err := os.Stat(dest); err == nil && st.IsDir() {
		return "", fmt.Errorf("destination must be a file path: %s", dest)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", pfx.Err(err)
	}

	var err error
	for attempt := 0; attempt <= f.Retries; attempt++ {
		if attempt > 0 {
			f.logf("Sleeping %s and retrying %s", f.RetryWait, src)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(f.RetryWait):
			}
		}

		f.logf("Downloading %s", src)
		if err = f.copyTo(ctx, src, dest); err == nil {
			return dest, nil
		}
		f.logf("Cannot download %s: %v", src, err)

		if errors.Is(err, ErrNotFound) || ctx.Err() != nil {
			break
		}
	}

	return "", err
}

// copyTo writes src to a temporary file next to dest and renames it into
// place, so that an interrupted download never looks like a cached file.
func (f *Fetcher) copyTo(ctx context.Context, src, dest string) error {
	rc, err := geocounts.OpenSource(ctx, src, f.Storage, f.HTTPClient)
	if err != nil {
		var status *geocounts.HTTPStatusError
		if errors.As(err, &status) && status.StatusCode >= 400 && status.StatusCode < 500 {
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return err
	}
	defer rc.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.part")
	if err != nil {
		return pfx.Err(err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, rc); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return pfx.Err(fmt.Errorf("%s: %w", src, err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return pfx.Err(err)
	}

	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return pfx.Err(err)
	}

	return nil
}

func (f *Fetcher) logf(format string, args ...interface{}) {
	if f.Logger == nil {
		return
	}
	f.Logger.Printf(format, args...)
}

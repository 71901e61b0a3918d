package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetchCachesDownloads(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		fmt.Fprint(w, "GeneID\tGSM1\n1\t2\n")
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "raw", "counts.tsv")
	f := &Fetcher{HTTPClient: srv.Client()}

	for i := 0; i < 2; i++ {
		got, err := f.Fetch(context.Background(), srv.URL+"/?file=counts.tsv", dest)
		if err != nil {
			t.Fatal(err)
		}
		if got != dest {
			t.Errorf("Expected %s, got %s", dest, got)
		}
	}

	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("Expected a single download, got %d", hits)
	}

	b, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "GeneID\tGSM1\n1\t2\n" {
		t.Errorf("Unexpected content %q", b)
	}

	f.Force = true
	if _, err := f.Fetch(context.Background(), srv.URL, dest); err != nil {
		t.Fatal(err)
	}
	if atomic.LoadInt32(&hits) != 2 {
		t.Errorf("Force should download again, got %d hits", hits)
	}
}

func TestFetchNotFound(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "missing.tsv.gz")
	f := &Fetcher{HTTPClient: srv.Client(), Retries: 3}

	_, err := f.Fetch(context.Background(), srv.URL, dest)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("A missing file should not be retried, got %d hits", hits)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("No file should be left behind")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("Temporary files were left behind: %v", entries)
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "file")
	f := &Fetcher{HTTPClient: srv.Client(), Retries: 2, RetryWait: time.Millisecond}

	if _, err := f.Fetch(context.Background(), srv.URL, dest); err != nil {
		t.Fatal(err)
	}
	if atomic.LoadInt32(&hits) != 3 {
		t.Errorf("Expected 3 attempts, got %d", hits)
	}
}

func TestFetchLocalFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.tsv")
	if err := os.WriteFile(src, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(dir, "copy", "dest.tsv")
	if _, err := (&Fetcher{}).Fetch(context.Background(), src, dest); err != nil {
		t.Fatal(err)
	}

	if _, err := (&Fetcher{}).Fetch(context.Background(), filepath.Join(dir, "nope"), filepath.Join(dir, "x")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a missing local file, got %v", err)
	}
}

func TestFetchRejectsDirectoryDestination(t *testing.T) {
	dir := t.TempDir()
	if _, err := (&Fetcher{Force: true}).Fetch(context.Background(), "http://127.0.0.1:1/", dir); err == nil {
		t.Error("Expected an error for a directory destination")
	}
}

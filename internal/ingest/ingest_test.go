package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-extract/constants"
	"github.com/joseph-ayodele/invoice-extract/internal/common"
	"github.com/joseph-ayodele/invoice-extract/internal/entity"
	"github.com/joseph-ayodele/invoice-extract/internal/ocr"
)

// fakeProcessor stores by joined fragment text and reports repeats as duplicates.
type fakeProcessor struct {
	mu   sync.Mutex
	seen map[string]*entity.Invoice
}

func (f *fakeProcessor) ProcessDocument(_ context.Context, filename string, frags []ocr.Fragment) (*entity.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen == nil {
		f.seen = map[string]*entity.Invoice{}
	}
	var key string
	for _, fr := range frags {
		key += fr.Text + "\n"
	}
	if inv, ok := f.seen[key]; ok {
		return inv, common.NewAppError(common.CodeDuplicate, "dup", common.ErrDuplicate)
	}
	inv := &entity.Invoice{ID: uuid.New(), Filename: filename, ValidationStatus: constants.ValidationStatusValid, ConfidenceScore: 1}
	f.seen[key] = inv
	return inv, nil
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

const doc = `[{"text":"ACME CORP","bounding_box":[[0,0],[10,0],[10,5],[0,5]],"confidence":0.9,"page":1}]`

func TestIngestDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.json"), doc)
	writeFile(t, filepath.Join(root, "nested", "b.json"), doc) // same text as a.json
	writeFile(t, filepath.Join(root, "c.json"), `{"not":"fragments"}`)
	writeFile(t, filepath.Join(root, "notes.txt"), "ignored")
	writeFile(t, filepath.Join(root, ".hidden", "d.json"), doc)

	ing := NewFSIngestor(ocr.NewFileSource(nil), &fakeProcessor{}, nil)
	results, stats, err := ing.IngestDirectory(context.Background(), root, true)
	if err != nil {
		t.Fatalf("IngestDirectory: %v", err)
	}

	if stats.Matched != 3 || stats.Succeeded != 2 || stats.Deduplicated != 1 || stats.Failed != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	var failed []string
	for _, r := range results {
		if r.Err != "" {
			failed = append(failed, filepath.Base(r.SourcePath))
		}
	}
	if diff := cmp.Diff([]string{"c.json"}, failed); diff != "" {
		t.Errorf("failed files mismatch (-want +got):\n%s", diff)
	}
}

func TestIngestPathRejectsExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.png")
	writeFile(t, path, "x")
	ing := NewFSIngestor(ocr.NewFileSource(nil), &fakeProcessor{}, nil)
	if _, err := ing.IngestPath(context.Background(), path); err == nil {
		t.Fatal("expected an error for a .png file")
	}
}

func TestIngestDirectoryRequiresRoot(t *testing.T) {
	ing := NewFSIngestor(ocr.NewFileSource(nil), &fakeProcessor{}, nil)
	if _, _, err := ing.IngestDirectory(context.Background(), "  ", false); err == nil {
		t.Fatal("expected an error for an empty root")
	}
}

func TestIsHidden(t *testing.T) {
	for path, want := range map[string]bool{
		"/tmp/.cache":   true,
		"/tmp/a.json":   false,
		".":             false,
		"dir/.env.json": true,
	} {
		if got := IsHidden(path); got != want {
			t.Errorf("IsHidden(%q) = %v, want %v", path, got, want)
		}
	}
}

func collect(t *testing.T, ch <-chan string, n int) []string {
	t.Helper()
	var got []string
	timeout := time.After(5 * time.Second)
	for len(got) < n {
		select {
		case p, ok := <-ch:
			if !ok {
				t.Fatalf("channel closed after %v", got)
			}
			got = append(got, filepath.Base(p))
		case <-timeout:
			t.Fatalf("timed out waiting for events, got %v", got)
		}
	}
	sort.Strings(got)
	return got
}

func TestStartWatcher(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "existing.json"), doc)
	writeFile(t, filepath.Join(root, "skip.txt"), "x")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{root},
		InitialScan: true,
		Debounce:    20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("StartWatcher: %v", err)
	}

	if diff := cmp.Diff([]string{"existing.json"}, collect(t, events, 1)); diff != "" {
		t.Errorf("initial scan mismatch (-want +got):\n%s", diff)
	}

	writeFile(t, filepath.Join(root, "new.json"), doc)
	if diff := cmp.Diff([]string{"new.json"}, collect(t, events, 1)); diff != "" {
		t.Errorf("watch mismatch (-want +got):\n%s", diff)
	}

	cancel()
	for range events {
	}
}

func TestStartWatcherNoRoots(t *testing.T) {
	if _, _, err := StartWatcher(context.Background(), WatchConfig{}); err == nil {
		t.Fatal("expected an error without roots")
	}
}

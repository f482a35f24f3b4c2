package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type stubRunner struct {
	gotName string
	gotArgs []string
	stdout  []byte
	stderr  []byte
	err     error
}

func (r *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.gotName = name
	r.gotArgs = args
	return r.stdout, r.stderr, r.err
}

func TestDecodeFragments(t *testing.T) {
	want := []Fragment{{
		Text:       "ACME CORP",
		Box:        [4]Point{{10, 10}, {100, 10}, {100, 30}, {10, 30}},
		Confidence: 0.98,
		Page:       1,
	}}

	t.Run("pair array boxes", func(t *testing.T) {
		got, err := DecodeFragments([]byte(`[{"text":"ACME CORP","bounding_box":[[10,10],[100,10],[100,30],[10,30]],"confidence":0.98,"page":1}]`))
		if err != nil {
			t.Fatalf("DecodeFragments: %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("object wrapper and point objects", func(t *testing.T) {
		got, err := DecodeFragments([]byte(`{"fragments":[{"text":"ACME CORP","bounding_box":[{"x":10,"y":10},{"x":100,"y":10},{"x":100,"y":30},{"x":10,"y":30}],"confidence":0.98,"page":1}]}`))
		if err != nil {
			t.Fatalf("DecodeFragments: %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("missing fragments member", func(t *testing.T) {
		if _, err := DecodeFragments([]byte(`{"pages":2}`)); !errors.Is(err, ErrNoFragments) {
			t.Errorf("err = %v, want ErrNoFragments", err)
		}
	})

	t.Run("bad point arity", func(t *testing.T) {
		if _, err := DecodeFragments([]byte(`[{"text":"x","bounding_box":[[1],[2,3],[4,5],[6,7]]}]`)); err == nil {
			t.Error("expected error for one-coordinate point")
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, err := DecodeFragments(nil); !errors.Is(err, ErrNoFragments) {
			t.Errorf("err = %v, want ErrNoFragments", err)
		}
	})
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	if err := os.WriteFile(path, []byte(`[{"text":"Total: $5.00","bounding_box":[[0,0],[1,0],[1,1],[0,1]],"confidence":1,"page":1}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	frags, err := NewFileSource(nil).Fragments(context.Background(), path)
	if err != nil {
		t.Fatalf("Fragments: %v", err)
	}
	if len(frags) != 1 || frags[0].Text != "Total: $5.00" {
		t.Errorf("unexpected fragments: %+v", frags)
	}

	if _, err := NewFileSource(nil).Fragments(context.Background(), filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCommandSource(t *testing.T) {
	r := &stubRunner{stdout: []byte(`[{"text":"hello","bounding_box":[[0,0],[1,0],[1,1],[0,1]],"page":1}]`)}
	src := NewCommandSource("paddle-json", []string{"--lang", "en"}, nil, WithRunner(r))

	frags, err := src.Fragments(context.Background(), "/tmp/a.png")
	if err != nil {
		t.Fatalf("Fragments: %v", err)
	}
	if len(frags) != 1 || frags[0].Text != "hello" {
		t.Errorf("unexpected fragments: %+v", frags)
	}
	if r.gotName != "paddle-json" {
		t.Errorf("runner name = %q", r.gotName)
	}
	if diff := cmp.Diff([]string{"--lang", "en", "/tmp/a.png"}, r.gotArgs); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}

	failing := NewCommandSource("paddle-json", nil, nil, WithRunner(&stubRunner{err: errors.New("exit 1"), stderr: []byte("boom")}))
	if _, err := failing.Fragments(context.Background(), "x.png"); err == nil {
		t.Error("expected error from failing command")
	}

	if _, err := NewCommandSource("", nil, nil).Fragments(context.Background(), "x.png"); err == nil {
		t.Error("expected error when no binary configured")
	}
}

package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"utsc/bundler"

	"github.com/google/go-cmp/cmp"
)

type countingBundler struct {
	calls int
	res   *bundler.Result
}

func (c *countingBundler) Bundle(context.Context, bundler.Target, *bundler.Request) (*bundler.Result, error) {
	c.calls++
	return c.res, nil
}

func openCache(t *testing.T) *Cache {
	t.Helper()

	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { c.Close() })
	return c
}

func TestOpen_NoDirectory(t *testing.T) {
	if _, err := Open(""); !errors.Is(err, ErrNoDirectory) {
		t.Errorf("Open(\"\") error = %v, want ErrNoDirectory", err)
	}
}

func TestBundler_HitAndMiss(t *testing.T) {
	dir := t.TempDir()
	artifact := filepath.Join(dir, "index.swift")
	if err := os.WriteFile(artifact, []byte("// swift"), 0o644); err != nil {
		t.Fatal(err)
	}

	next := &countingBundler{res: &bundler.Result{Outputs: []string{artifact}}}
	b := &Bundler{Cache: openCache(t), Next: next}
	req := &bundler.Request{Input: bundler.Input{Filename: filepath.Join(dir, "index.uts")}}

	for i := 0; i < 3; i++ {
		res, err := b.Bundle(context.Background(), bundler.TargetSwift, req)
		if err != nil {
			t.Fatal(err)
		}

		if diff := cmp.Diff(next.res, res); diff != "" {
			t.Errorf("Bundle (-want +got):\n%s", diff)
		}
	}

	if next.calls != 1 {
		t.Errorf("bundler called %d times, want 1", next.calls)
	}

	// a different target is a different request
	if _, err := b.Bundle(context.Background(), bundler.TargetKotlin, req); err != nil {
		t.Fatal(err)
	}

	if next.calls != 2 {
		t.Errorf("bundler called %d times, want 2", next.calls)
	}

	// removed artifacts invalidate the entry
	os.Remove(artifact)
	if _, err := b.Bundle(context.Background(), bundler.TargetSwift, req); err != nil {
		t.Fatal(err)
	}

	if next.calls != 3 {
		t.Errorf("bundler called %d times, want 3", next.calls)
	}
}

func TestBundler_DepChangeInvalidates(t *testing.T) {
	dir := t.TempDir()
	helper := filepath.Join(dir, "helper.uts")
	if err := os.WriteFile(helper, []byte("export const a = 1"), 0o644); err != nil {
		t.Fatal(err)
	}

	next := &countingBundler{res: &bundler.Result{Deps: []string{helper}}}
	b := &Bundler{Cache: openCache(t), Next: next}
	req := &bundler.Request{Input: bundler.Input{Filename: filepath.Join(dir, "index.uts")}}

	for i := 0; i < 2; i++ {
		if _, err := b.Bundle(context.Background(), bundler.TargetSwift, req); err != nil {
			t.Fatal(err)
		}
	}

	if next.calls != 1 {
		t.Fatalf("bundler called %d times, want 1", next.calls)
	}

	if err := os.WriteFile(helper, []byte("export const a = 12345"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := b.Bundle(context.Background(), bundler.TargetSwift, req); err != nil {
		t.Fatal(err)
	}

	if next.calls != 2 {
		t.Errorf("bundler called %d times after editing a dependency, want 2", next.calls)
	}

	// a removed dependency is a change too
	os.Remove(helper)
	if _, err := b.Bundle(context.Background(), bundler.TargetSwift, req); err != nil {
		t.Fatal(err)
	}

	if next.calls != 3 {
		t.Errorf("bundler called %d times after removing a dependency, want 3", next.calls)
	}
}

func TestBundler_ErrorsNotCached(t *testing.T) {
	next := &countingBundler{res: &bundler.Result{Error: "error: boom"}}
	b := &Bundler{Cache: openCache(t), Next: next}
	req := &bundler.Request{}

	for i := 0; i < 2; i++ {
		if _, err := b.Bundle(context.Background(), bundler.TargetSwift, req); err != nil {
			t.Fatal(err)
		}
	}

	if next.calls != 2 {
		t.Errorf("bundler called %d times, want 2", next.calls)
	}
}

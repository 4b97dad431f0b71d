// Package cache stores bundler results keyed by the request that produced
// them so unchanged sources are not bundled again.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"utsc/bundler"

	bolt "go.etcd.io/bbolt"
)

// FileName is the name of the cache database inside the cache directory.
const FileName = "utsc-cache.db"

const bucketResults = "results"

// ErrNoDirectory is returned when a cache is opened without a directory.
var ErrNoDirectory = errors.New("no cache directory specified")

// Cache is a persistent map from bundle requests to bundle results.
type Cache struct {
	db *bolt.DB
}

// Open opens (creating if necessary) the cache database in dir.
func Open(dir string) (*Cache, error) {
	if dir == "" {
		return nil, ErrNoDirectory
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create cache directory: %w", err)
	}

	db, err := bolt.Open(filepath.Join(dir, FileName), 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("unable to open compile cache: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketResults))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key fingerprints a request for the given target.  The source content is not
// part of the request unless it was generated, so the modification time of the
// input file is folded in.
func Key(target bundler.Target, req *bundler.Request) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	h := sha256.New()
	h.Write([]byte(target))
	h.Write([]byte{0})
	h.Write(payload)

	if finfo, err := os.Stat(req.Input.Filename); err == nil {
		fmt.Fprintf(h, "\x00%d:%d", finfo.ModTime().UnixNano(), finfo.Size())
	}

	return h.Sum(nil), nil
}

// entry is a stored result along with the stamps of the dependencies it was
// bundled against.
type entry struct {
	Result *bundler.Result  `json:"result"`
	Stamps map[string]stamp `json:"stamps,omitempty"`
}

// stamp identifies a version of a file.  Size is -1 for a missing file.
type stamp struct {
	ModTime int64 `json:"mtime"`
	Size    int64 `json:"size"`
}

func stampOf(path string) stamp {
	finfo, err := os.Stat(path)
	if err != nil {
		return stamp{Size: -1}
	}

	return stamp{ModTime: finfo.ModTime().UnixNano(), Size: finfo.Size()}
}

// Get returns the cached result for key.  Successful results are only
// returned while every artifact they list still exists and none of their
// dependencies changed; results carrying a compile error are never stored.
func (c *Cache) Get(key []byte) (*bundler.Result, bool) {
	var e *entry

	c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketResults)).Get(key)
		if v == nil {
			return nil
		}

		ent := &entry{}
		if err := json.Unmarshal(v, ent); err != nil || ent.Result == nil {
			return nil
		}

		e = ent
		return nil
	})

	if e == nil {
		return nil, false
	}

	for _, artifact := range e.Result.Outputs {
		if _, err := os.Stat(artifact); err != nil {
			return nil, false
		}
	}

	for dep, st := range e.Stamps {
		if stampOf(dep) != st {
			return nil, false
		}
	}

	return e.Result, true
}

// Put stores res under key along with the current stamps of its
// dependencies.  Results with errors are ignored.
func (c *Cache) Put(key []byte, res *bundler.Result) error {
	if res == nil || res.Error != "" {
		return nil
	}

	e := &entry{Result: res}
	if len(res.Deps) > 0 {
		e.Stamps = make(map[string]stamp, len(res.Deps))
		for _, dep := range res.Deps {
			e.Stamps[dep] = stampOf(dep)
		}
	}

	v, err := json.Marshal(e)
	if err != nil {
		return err
	}

	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketResults)).Put(key, v)
	})
}

// Bundler wraps a bundler so requests with a cached result skip it.
type Bundler struct {
	Cache *Cache
	Next  bundler.Bundler
}

// Bundle serves req from the cache or forwards it.
func (b *Bundler) Bundle(ctx context.Context, target bundler.Target, req *bundler.Request) (*bundler.Result, error) {
	key, err := Key(target, req)
	if err != nil {
		return b.Next.Bundle(ctx, target, req)
	}

	if res, ok := b.Cache.Get(key); ok {
		return res, nil
	}

	res, err := b.Next.Bundle(ctx, target, req)
	if err != nil {
		return nil, err
	}

	// a cache that cannot be written is not a build failure
	_ = b.Cache.Put(key, res)
	return res, nil
}

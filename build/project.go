package build

import (
	"context"
	"sync"

	"utsc/common"
	"utsc/mods"
	"utsc/session"
)

// PackageResult is the outcome of building one package of a project.
type PackageResult struct {
	Package *mods.Package
	Result  *Result
	Err     error
}

// BuildProject builds the entry file of every package concurrently.  Each
// package is an independent request; development builds share sess.  Results
// are returned in package order.
func (c *Compiler) BuildProject(ctx context.Context, sess *session.Session, platform common.Platform, pkgs []*mods.Package, dev bool, optsFor func(*mods.Package) *Options) []PackageResult {
	results := make([]PackageResult, len(pkgs))

	wg := &sync.WaitGroup{}
	for i, pkg := range pkgs {
		wg.Add(1)
		go func(i int, pkg *mods.Package) {
			defer wg.Done()

			filename := pkg.EntryFile(platform)
			opts := optsFor(pkg)

			var res *Result
			var err error
			if dev {
				res, err = c.RunDev(ctx, sess, platform, filename, opts)
			} else {
				res, err = c.RunProd(ctx, platform, filename, opts)
			}

			// every goroutine writes its own slot
			results[i] = PackageResult{Package: pkg, Result: res, Err: err}
		}(i, pkg)
	}

	wg.Wait()
	return results
}

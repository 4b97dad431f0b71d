// Package build turns UTS source files into bundle requests, runs the bundler,
// and interprets its results for production and development builds.
package build

import (
	"utsc/bundler"
)

// Options are the per-file compile options supplied by the caller.  They are
// never read from process-wide state.
type Options struct {
	// Components maps component names to their source files.  Registration
	// code for every component is appended to the compiled file.
	Components map[string]string

	IsX            bool
	IsSingleThread bool
	IsPlugin       bool

	// ExtAPIs maps ext-api names to their `[module, symbol]` pair.
	ExtAPIs map[string][2]string

	// Transform overrides the default transform options.
	Transform *bundler.Transform

	// SourceMap indicates whether source maps should be produced.
	SourceMap bool

	// UniModules lists the IDs of the project's uni_modules packages.
	UniModules []string

	// HookClass is the native class receiving application lifecycle hooks.
	HookClass string

	// PluginID overrides the package ID derived from the file path.
	PluginID string

	// NoColor disables colored bundler diagnostics.
	NoColor bool
}

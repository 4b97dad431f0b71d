package build

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"utsc/bundler"
	"utsc/cache"
	"utsc/common"
	"utsc/config"
	"utsc/diag"
	"utsc/emit"
	"utsc/mods"
	"utsc/session"
	"utsc/toolchain"
)

// Compiler is the data structure responsible for compiling UTS files of one
// project.  It holds no mutable state of its own and may be used
// concurrently: development state lives in the session passed to RunDev.
type Compiler struct {
	cfg *config.Config

	bundler   bundler.Bundler
	toolchain toolchain.Service
	emitter   *emit.Emitter
	logger    *slog.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger used to report skipped and failed compilations.
// A nil logger is silent.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// WithToolchain sets the native toolchain service used by development builds.
// Without one, development builds for iOS report the toolchain as not
// installed.
func WithToolchain(service toolchain.Service) Option {
	return func(c *Compiler) {
		c.toolchain = service
	}
}

// WithCache serves repeated bundle requests from the cache.
func WithCache(ca *cache.Cache) Option {
	return func(c *Compiler) {
		if ca != nil {
			c.bundler = &cache.Bundler{Cache: ca, Next: c.bundler}
		}
	}
}

// WithEmitter overrides the emitter writing platform resources.
func WithEmitter(e *emit.Emitter) Option {
	return func(c *Compiler) {
		c.emitter = e
	}
}

// NewCompiler creates a new compiler for the given configuration and bundler.
func NewCompiler(cfg *config.Config, b bundler.Bundler, opts ...Option) *Compiler {
	c := &Compiler{
		cfg:     cfg,
		bundler: b,
		emitter: emit.New(cfg),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return c
}

// target returns the bundler target of a platform
func target(platform common.Platform) bundler.Target {
	if platform == common.PlatformAndroid {
		return bundler.TargetKotlin
	}

	return bundler.TargetSwift
}

// Compile bundles filename for the platform.  It returns (nil, nil) when there
// is nothing to compile or the bundler produced nothing.  Errors the bundler
// reports in user code are returned as *diag.SyntaxError.
func (c *Compiler) Compile(ctx context.Context, platform common.Platform, filename string, opts *Options) (*Result, error) {
	req, err := BuildRequest(c.cfg, platform, filename, opts)
	if err != nil || req == nil {
		return nil, err
	}

	bres, err := c.bundler.Bundle(ctx, target(platform), req)
	if err != nil {
		return nil, fmt.Errorf("error bundling `%s`: %w", filename, err)
	}

	if bres.Error != "" {
		return nil, diag.ParseSyntaxError(bres.Error, c.cfg.InputDir)
	}

	if bres.Empty() {
		return nil, nil
	}

	res := &Result{
		Platform:   platform,
		Filename:   filename,
		Package:    mods.Resolve(filename),
		Artifacts:  bres.Outputs,
		Deps:       bres.Deps,
		InjectAPIs: bres.InjectAPIs,
	}

	if res.Package != nil {
		res.Artifacts, err = c.emitter.RelocateRootIndex(res.Package, platform, filename, res.Artifacts, opts.SourceMap)
		if err != nil {
			return nil, fmt.Errorf("error relocating output of `%s`: %w", filename, err)
		}
	}

	c.logger.Debug("compiled uts file", "file", filename, "platform", platform.String(), "time_ms", bres.Time)
	return res, nil
}

// RunProd compiles filename and emits the platform resources of its package.
func (c *Compiler) RunProd(ctx context.Context, platform common.Platform, filename string, opts *Options) (*Result, error) {
	res, err := c.Compile(ctx, platform, filename, opts)
	if err != nil || res == nil {
		return nil, err
	}

	if res.Package == nil {
		res.Output = c.output(res, "")
		return res, nil
	}

	namespace := res.Package.Namespace(platform)
	pluginID := opts.PluginID
	if pluginID == "" {
		pluginID = res.Package.ID
	}

	err = c.emitter.Emit(&emit.Params{
		Platform:   platform,
		Package:    res.Package,
		Filename:   filename,
		Namespace:  namespace,
		Components: opts.Components,
		HookClass:  opts.HookClass,
		Provider:   emit.ResolveProvider(pluginID, opts.Transform),
	})
	if err != nil {
		return nil, fmt.Errorf("error emitting resources of plugin [%s]: %w", res.Package.ID, err)
	}

	res.Output = c.output(res, c.emitter.PlatformFile(res.Package, platform, filename))
	return res, nil
}

// output creates the platform variant of a result
func (c *Compiler) output(res *Result, file string) Output {
	if file == "" && len(res.Artifacts) > 0 {
		file = res.Artifacts[0]
	}

	if res.Platform == common.PlatformAndroid {
		return &KotlinOutput{File: file}
	}

	return &SwiftOutput{File: file}
}

// RunDev compiles filename for a development build.  On iOS the generated
// Swift is then compiled by the native toolchain.  A toolchain that is missing
// or reports an unusable environment marks the session unavailable: the
// message is logged once and every later call skips compilation.  Native
// compile failures are recorded in the result's *SwiftOutput rather than
// returned.
func (c *Compiler) RunDev(ctx context.Context, sess *session.Session, platform common.Platform, filename string, opts *Options) (*Result, error) {
	if common.IsForeignTo(filename, platform) {
		return nil, nil
	}

	if platform == common.PlatformAndroid {
		res, err := c.Compile(ctx, platform, filename, opts)
		if err != nil || res == nil {
			return nil, err
		}

		res.Output = c.output(res, c.platformFile(res, filename))
		return res, nil
	}

	ready, transitioned := sess.Check(func() (bool, string) {
		return c.checkEnv(ctx)
	})
	if transitioned {
		c.logger.Error(sess.Message())
		return nil, nil
	}

	if !ready {
		c.logger.Error(fmt.Sprintf("skipped compilation of uts plugin [%s]", mods.ResolveID(filename)))
		return nil, nil
	}

	res, err := c.Compile(ctx, platform, filename, opts)
	if err != nil || res == nil {
		return nil, err
	}

	out := &SwiftOutput{File: c.platformFile(res, filename), Changed: []string{}}
	res.Output = out

	if res.Package == nil || !sess.Ready() {
		return res, nil
	}

	if _, err := os.Stat(out.File); err != nil {
		return res, nil
	}

	projectPath := c.cfg.InputDir
	isCli := isCliProject(projectPath)
	if isCli {
		projectPath = filepath.Dir(projectPath)
	}

	status, err := c.toolchain.Compile(ctx, &toolchain.CompileRequest{
		ProjectPath: projectPath,
		IsCli:       isCli,
		Type:        res.Package.Kind(),
		PluginName:  res.Package.ID,
		UTSPath:     filepath.Join(c.cfg.InputDir, res.Package.AreaDir()),
		SwiftPath:   filepath.Join(c.cfg.OutputDir, res.Package.AreaDir()),
	})
	if err != nil {
		status = toolchain.Status{Code: -1, Message: err.Error()}
	}

	if !status.OK() {
		c.logger.Warn("native compile failed", "plugin", res.Package.ID, "code", status.Code, "msg", status.Message)
	}

	out.NativeCode = status.Code
	out.NativeMessage = status.Message
	out.Changed = []string{out.File}
	return res, nil
}

// checkEnv reports whether the native environment is usable and, if not,
// why.  It runs under the session so it is never called concurrently.
func (c *Compiler) checkEnv(ctx context.Context) (bool, string) {
	if c.toolchain == nil {
		return false, toolchain.ErrNotInstalled.Error()
	}

	if checker, ok := c.toolchain.(toolchain.EnvChecker); ok {
		status, err := checker.CheckEnv(ctx)
		if err != nil {
			status = toolchain.Status{Code: -1, Message: err.Error()}
		}

		if !status.OK() {
			return false, status.Message
		}
	}

	return true, ""
}

// platformFile returns the generated native source of a result
func (c *Compiler) platformFile(res *Result, filename string) string {
	if res.Package == nil {
		if len(res.Artifacts) > 0 {
			return res.Artifacts[0]
		}

		return ""
	}

	return c.emitter.PlatformFile(res.Package, res.Platform, filename)
}

// isCliProject reports whether projectPath is the `src` directory of a CLI
// project
func isCliProject(projectPath string) bool {
	return strings.HasSuffix(projectPath, "src")
}

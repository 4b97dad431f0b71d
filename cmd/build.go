package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"utsc/build"
	"utsc/bundler"
	"utsc/cache"
	"utsc/common"
	"utsc/config"
	"utsc/diag"
	"utsc/logging"
	"utsc/mods"
	"utsc/session"
	"utsc/toolchain"

	"github.com/ComedicChimera/olive"
)

// buildEnv holds everything a build command needs
type buildEnv struct {
	cfg      *config.Config
	platform common.Platform
	compiler *build.Compiler
	reporter *logging.Reporter
	logger   *slog.Logger

	// closers release the resources the compiler holds
	closers []func() error

	isX            bool
	isSingleThread bool
	sourceMap      bool
	lspDiagnostics bool
}

// newBuildEnv loads the configuration of the project at inputDir and creates
// a compiler for it.  The native toolchain is only started for development
// builds.
func newBuildEnv(ctx context.Context, inputDir string, result *olive.ArgParseResult, loglevel int, dev bool) (*buildEnv, bool) {
	platform, ok := parsePlatformArg(result)
	if !ok {
		return nil, false
	}

	cfg, err := config.Load(inputDir)
	if err != nil {
		logging.PrintErrorMessage("Config Error", err)
		return nil, false
	}

	env := &buildEnv{
		cfg:            cfg,
		platform:       platform,
		reporter:       logging.NewReporter(cfg.InputDir, loglevel),
		logger:         logging.NewLogger(loglevel),
		isX:            result.HasFlag("x"),
		isSingleThread: result.HasFlag("single-thread"),
		sourceMap:      result.HasFlag("sourcemap"),
		lspDiagnostics: stringArg(result, "diagnostics", "pretty") == "lsp",
	}

	b, err := bundler.NewExec(cfg.BundlerPath)
	if err != nil {
		logging.PrintErrorMessage("Bundler Error", err)
		return nil, false
	}

	opts := []build.Option{build.WithLogger(env.logger)}

	if cfg.ShouldCache {
		ca, err := cache.Open(cfg.CacheDirectory)
		if err != nil {
			logging.PrintErrorMessage("Cache Error", err)
			return nil, false
		}

		env.closers = append(env.closers, ca.Close)
		opts = append(opts, build.WithCache(ca))
	}

	if dev && platform == common.PlatformIOS {
		client, err := toolchain.Start(ctx, cfg.ToolchainPath, toolchain.WithLogger(env.logger))
		if err == nil {
			env.closers = append(env.closers, client.Close)
			opts = append(opts, build.WithToolchain(client))
		} else if !errors.Is(err, toolchain.ErrNotInstalled) {
			logging.PrintErrorMessage("Toolchain Error", err)
			return nil, false
		}
	}

	env.compiler = build.NewCompiler(cfg, b, opts...)
	env.reporter.Header(platform, cfg.Mode, cfg.ShouldCache)
	return env, true
}

// close releases the resources of the environment
func (env *buildEnv) close() {
	for _, closer := range env.closers {
		if err := closer(); err != nil {
			env.logger.Warn("error releasing build resource", "err", err)
		}
	}
}

// optionsFor creates the compile options of a package
func (env *buildEnv) optionsFor(uniModules []string) func(*mods.Package) *build.Options {
	return func(pkg *mods.Package) *build.Options {
		opts := &build.Options{
			IsX:            env.isX,
			IsSingleThread: env.isSingleThread,
			IsPlugin:       true,
			SourceMap:      env.sourceMap,
			UniModules:     uniModules,
			PluginID:       pkg.ID,
			NoColor:        !env.reporter.Color(),
		}

		manifest, err := mods.LoadManifest(pkg.Dir)
		if err != nil {
			env.logger.Warn("unable to load plugin manifest", "plugin", pkg.ID, "err", err)
		} else if manifest != nil && manifest.UniModules.ExtAPI.Provider != nil {
			provider := manifest.UniModules.ExtAPI.Provider
			opts.Transform = &bundler.Transform{
				UniExtAPIProviderName:    provider.Name,
				UniExtAPIProviderService: provider.Service,
			}
		}

		return opts
	}
}

// report displays the outcome of building one package
func (env *buildEnv) report(pr build.PackageResult) {
	if pr.Err != nil {
		var se *diag.SyntaxError
		if env.lspDiagnostics && errors.As(pr.Err, &se) {
			env.reporter.RecordError()
			json.NewEncoder(os.Stdout).Encode(se.PublishParams(env.cfg.InputDir))
			return
		}

		env.reporter.ReportError("Build Error", pr.Err)
		return
	}

	if pr.Result == nil {
		return
	}

	switch out := pr.Result.Output.(type) {
	case *build.SwiftOutput:
		if out.NativeFailed() {
			env.reporter.ReportWarning("Native Compile", "uts plugin ["+pr.Package.ID+"]: "+out.NativeMessage)
		} else if len(out.Changed) > 0 {
			env.reporter.ReportInfo("Compiled", out.File)
		}
	case *build.KotlinOutput:
		env.reporter.ReportInfo("Compiled", out.File)
	}
}

// uniModuleIDs lists the IDs of the uni_modules packages of a project
func uniModuleIDs(pkgs []*mods.Package) []string {
	ids := []string{}
	for _, pkg := range pkgs {
		if pkg.IsUniModules {
			ids = append(ids, pkg.ID)
		}
	}

	return ids
}

// execBuildCommand executes the build subcommand and handles all errors
func execBuildCommand(result *olive.ArgParseResult, loglevel int) int {
	path, ok := absPrimaryArg(result)
	if !ok {
		return 1
	}

	finfo, err := os.Stat(path)
	if err != nil {
		logging.PrintErrorMessage("Path Error", err)
		return 1
	}

	// a single file is built as part of the project containing its package;
	// UNI_INPUT_DIR takes precedence either way
	projectPath := path
	if !finfo.IsDir() {
		projectPath = ""
		if pkg := mods.Resolve(path); pkg != nil {
			projectPath = filepath.Dir(filepath.Dir(pkg.Dir))
		}
	}

	ctx := context.Background()
	dev := result.HasFlag("dev")

	env, ok := newBuildEnv(ctx, projectPath, result, loglevel, dev)
	if !ok {
		return 1
	}
	defer env.close()

	pkgs, err := mods.FindPackages(env.cfg.InputDir)
	if err != nil {
		logging.PrintErrorMessage("Project Error", err)
		return 1
	}

	optsFor := env.optionsFor(uniModuleIDs(pkgs))
	sess := session.New()

	if finfo.IsDir() {
		for _, pr := range env.compiler.BuildProject(ctx, sess, env.platform, pkgs, dev, optsFor) {
			env.report(pr)
		}
	} else {
		pkg := mods.Resolve(path)
		if pkg == nil {
			pkg = &mods.Package{ID: "", Dir: env.cfg.InputDir}
		}

		var res *build.Result
		if dev {
			res, err = env.compiler.RunDev(ctx, sess, env.platform, path, optsFor(pkg))
		} else {
			res, err = env.compiler.RunProd(ctx, env.platform, path, optsFor(pkg))
		}

		env.report(build.PackageResult{Package: pkg, Result: res, Err: err})
	}

	if !env.reporter.Finish() {
		return 1
	}

	return 0
}

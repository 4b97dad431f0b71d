package build

import (
	"fmt"
	"io/ioutil"
	"os"

	"utsc/bundler"
	"utsc/common"
	"utsc/config"
	"utsc/emit"
	"utsc/mods"
)

// DefaultExtAPINamespace is the module ext-apis belong to unless mapped
// otherwise.
const DefaultExtAPINamespace = "DCloudUTSExtAPI"

// BuildRequest assembles the bundle request for compiling filename to the
// given platform.  It returns (nil, nil) when there is nothing to compile: the
// file belongs to another platform's source tree, or it does not exist and no
// component code is generated for it.
func BuildRequest(cfg *config.Config, platform common.Platform, filename string, opts *Options) (*bundler.Request, error) {
	if common.IsForeignTo(filename, platform) {
		return nil, nil
	}

	fileContent, ok, err := resolveContent(filename, opts)
	if err != nil || !ok {
		return nil, err
	}

	var namespace, pluginID string
	if pkg := mods.Resolve(filename); pkg != nil {
		namespace = pkg.Namespace(platform)
		pluginID = pkg.ID
	}

	if opts.PluginID != "" {
		pluginID = opts.PluginID
	}

	uniModules := opts.UniModules
	if uniModules == nil {
		uniModules = []string{}
	}

	var sourceMap bundler.SourceMapOption
	if opts.SourceMap {
		sourceMap = bundler.SourceMapOption(SourceMapPath(cfg))
	}

	transform := bundler.Transform{
		UniExtAPIDefaultNamespace: DefaultExtAPINamespace,
		UniExtAPINamespaces:       opts.ExtAPIs,
	}.Merge(opts.Transform)

	return &bundler.Request{
		Mode:            cfg.Mode,
		CompilerVersion: cfg.CompilerVersion,
		Input: bundler.Input{
			Root:        cfg.InputDir,
			Filename:    filename,
			PluginID:    pluginID,
			Paths:       map[string]string{},
			UniModules:  uniModules,
			FileContent: fileContent,
		},
		Output: bundler.Output{
			IsX:            opts.IsX,
			IsSingleThread: opts.IsSingleThread,
			IsPlugin:       opts.IsPlugin,
			OutDir:         cfg.OutputDir,
			Package:        namespace,
			SourceMap:      sourceMap,
			Extname:        platform.Ext()[1:],
			Imports:        imports(platform, opts, &transform),
			LogFilename:    true,
			NoColor:        opts.NoColor,
			Transform:      transform,
		},
	}, nil
}

// resolveContent determines the file content sent to the bundler.  A nil
// content with ok set means the bundler reads the file itself.
func resolveContent(filename string, opts *Options) (content *string, ok bool, err error) {
	componentsCode := GenComponentsCode(filename, opts.Components, opts.IsX)

	exists := true
	if _, err := os.Stat(filename); err != nil {
		if !os.IsNotExist(err) {
			return nil, false, err
		}

		exists = false
	}

	switch {
	case componentsCode == "" && !exists:
		return nil, false, nil
	case componentsCode == "":
		return nil, true, nil
	case !exists:
		return &componentsCode, true, nil
	}

	buff, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, false, fmt.Errorf("unable to read `%s`: %w", filename, err)
	}

	joined := string(buff) + "\n" + componentsCode
	return &joined, true, nil
}

// imports returns the native modules every compiled file imports
func imports(platform common.Platform, opts *Options, transform *bundler.Transform) []string {
	if platform == common.PlatformAndroid {
		imports := []string{"io.dcloud.uts.*"}
		if opts.IsX {
			imports = append(imports, "io.dcloud.uniapp.*")
		}

		return imports
	}

	var imports []string
	if transform.UniExtAPIProviderName != "" {
		imports = append(imports, "DCloudUTSExtAPI")
	}

	imports = append(imports, "DCloudUTSFoundation")
	if opts.IsX {
		imports = append(imports, "DCloudUniappRuntime")
	}

	return imports
}

// SourceMapPath returns the directory source maps are written to.
func SourceMapPath(cfg *config.Config) string {
	return emit.New(cfg).SourceMapDir()
}

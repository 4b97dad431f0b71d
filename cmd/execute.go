package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"utsc/common"
	"utsc/config"
	"utsc/emit"
	"utsc/logging"
	"utsc/mods"

	"github.com/ComedicChimera/olive"
)

var platformNames = []string{"app-ios", "app-android"}

// Execute runs the main `utsc` application and returns its exit code
func Execute() int {
	// set up the argument parser and all its extended commands and arguments
	cli := olive.NewCLI("utsc", "utsc compiles UTS plugins into native platform sources", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the compiler log level", false, []string{"silent", "error", "warn", "verbose"})
	logLvlArg.SetDefaultValue("verbose")

	buildCmd := cli.AddSubcommand("build", "compile a uts file or every plugin of a project", true)
	buildCmd.AddPrimaryArg("path", "the path to the file or project to build", true)
	addPlatformArg(buildCmd)
	buildCmd.AddFlag("dev", "d", "build for development: run the native compile after bundling")
	buildCmd.AddFlag("x", "x", "build for the uni-app x runtime")
	buildCmd.AddFlag("sourcemap", "sm", "generate source maps")
	buildCmd.AddFlag("single-thread", "st", "generate code for the single threaded runtime")
	diagArg := buildCmd.AddSelectorArg("diagnostics", "diag", "the format syntax errors are reported in", false, []string{"pretty", "lsp"})
	diagArg.SetDefaultValue("pretty")

	devCmd := cli.AddSubcommand("dev", "watch a project and recompile plugins as they change", true)
	devCmd.AddPrimaryArg("project-path", "the path to the project to watch", true)
	addPlatformArg(devCmd)
	devCmd.AddFlag("x", "x", "build for the uni-app x runtime")
	devCmd.AddFlag("sourcemap", "sm", "generate source maps")

	depsCmd := cli.AddSubcommand("deps", "list the platform descriptor files a uts file depends on", true)
	depsCmd.AddPrimaryArg("file", "the path to the uts file", true)
	addPlatformArg(depsCmd)

	tipsCmd := cli.AddSubcommand("tips", "show platform version requirements of a project's plugins", true)
	tipsCmd.AddPrimaryArg("project-path", "the path to the project", true)

	initCmd := cli.AddSubcommand("init", "create a utsc.toml in a project", true)
	initCmd.AddPrimaryArg("project-path", "the path to the project", true)
	initCmd.AddFlag("caching", "ch", "enable compile caching for this project")

	cli.AddSubcommand("version", "print the utsc version", false)

	// run the argument parser
	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		logging.PrintErrorMessage("CLI Usage Error", err)
		return 1
	}

	loglevel := logging.ParseLevel(stringArg(result, "loglevel", "verbose"))

	// process the inputed command line
	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "build":
		return execBuildCommand(subResult, loglevel)
	case "dev":
		return execDevCommand(subResult, loglevel)
	case "deps":
		return execDepsCommand(subResult)
	case "tips":
		return execTipsCommand(subResult, loglevel)
	case "init":
		return execInitCommand(subResult)
	case "version":
		logging.PrintInfoMessage("utsc Version", common.UTSCVersion)
	}

	return 0
}

func addPlatformArg(cmd *olive.Command) {
	arg := cmd.AddSelectorArg("platform", "p", "the platform to compile for", false, platformNames)
	arg.SetDefaultValue(platformNames[0])
}

// stringArg returns the value of a string argument or def if it is not set
func stringArg(result *olive.ArgParseResult, name, def string) string {
	if v, ok := result.Arguments[name]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}

	return def
}

// parsePlatformArg extracts the selected platform
func parsePlatformArg(result *olive.ArgParseResult) (common.Platform, bool) {
	platform, err := common.ParsePlatform(stringArg(result, "platform", platformNames[0]))
	if err != nil {
		logging.PrintErrorMessage("CLI Usage Error", err)
		return 0, false
	}

	return platform, true
}

// absPrimaryArg returns the absolute path given as the primary argument
func absPrimaryArg(result *olive.ArgParseResult) (string, bool) {
	relPath, _ := result.PrimaryArg()

	path, err := filepath.Abs(relPath)
	if err != nil {
		logging.PrintErrorMessage("Path Error", err)
		return "", false
	}

	return path, true
}

// execDepsCommand prints the descriptor files of the file's platform directory
func execDepsCommand(result *olive.ArgParseResult) int {
	filename, ok := absPrimaryArg(result)
	if !ok {
		return 1
	}

	platform, ok := parsePlatformArg(result)
	if !ok {
		return 1
	}

	for _, dep := range emit.DepFiles(platform, filename) {
		fmt.Println(dep)
	}

	return 0
}

// execTipsCommand prints the iOS version requirements of every plugin
func execTipsCommand(result *olive.ArgParseResult, loglevel int) int {
	projectPath, ok := absPrimaryArg(result)
	if !ok {
		return 1
	}

	pkgs, err := mods.FindPackages(projectPath)
	if err != nil {
		logging.PrintErrorMessage("Project Error", err)
		return 1
	}

	reporter := logging.NewReporter(projectPath, loglevel)
	for _, pkg := range pkgs {
		tip, err := emit.CheckVersionTips(pkg.ID, pkg.Dir, pkg.IsUniModules)
		if err != nil {
			reporter.ReportError("Config Error", err)
			continue
		}

		if tip != "" {
			reporter.ReportWarning("Tip", tip)
		}
	}

	if !reporter.ShouldProceed() {
		return 1
	}

	return 0
}

// execInitCommand creates the project's config file
func execInitCommand(result *olive.ArgParseResult) int {
	projectPath, ok := absPrimaryArg(result)
	if !ok {
		return 1
	}

	if err := config.InitConfig(projectPath, result.HasFlag("caching")); err != nil {
		logging.PrintErrorMessage("Config Init Error", err)
		return 1
	}

	return 0
}

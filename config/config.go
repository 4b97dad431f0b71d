// Package config loads the environment configuration of a build: the input
// and output roots, the compiler version and mode, and where the external
// bundler and native toolchain live.  It is read once per invocation and
// never mutated afterwards.
package config

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"utsc/common"

	"github.com/pelletier/go-toml"
)

// Config is the resolved configuration of a build.
type Config struct {
	// InputDir is the absolute path to the project's source root.
	InputDir string

	// OutputDir is the absolute path to the platform output root.
	OutputDir string

	// Mode is the build mode passed through to the bundler (eg.
	// `development`).  It is not validated here.
	Mode string

	// CompilerVersion is passed through to the bundler verbatim.
	CompilerVersion string

	// BundlerPath is the path to the external UTS bundler executable.
	BundlerPath string

	// ToolchainPath is the path to the native toolchain service executable.
	// It may be empty in which case the toolchain is considered not
	// installed.
	ToolchainPath string

	// ShouldCache indicates whether bundler results should be cached.
	ShouldCache bool

	// CacheDirectory is the directory holding the compile cache.
	CacheDirectory string
}

// tomlConfigFile represents `utsc.toml` as it is encoded in TOML
type tomlConfigFile struct {
	Build *tomlBuild `toml:"build"`
}

// tomlBuild represents the `[build]` table of `utsc.toml`
type tomlBuild struct {
	OutputDir       string `toml:"output-dir,omitempty"`
	Mode            string `toml:"mode,omitempty"`
	CompilerVersion string `toml:"compiler-version,omitempty"`
	Bundler         string `toml:"bundler,omitempty"`
	Toolchain       string `toml:"toolchain,omitempty"`
	ShouldCache     bool   `toml:"caching"`
	CacheDirectory  string `toml:"cache-directory,omitempty"`
}

// Environment variables consulted by Load.
const (
	EnvInputDir        = "UNI_INPUT_DIR"
	EnvOutputDir       = "UNI_OUTPUT_DIR"
	EnvMode            = "NODE_ENV"
	EnvHXVersion       = "HX_Version"
	EnvCompilerVersion = "UNI_COMPILER_VERSION"
	EnvBundler         = "UTSC_BUNDLER"
	EnvToolchain       = "UTSC_TOOLCHAIN"
)

// ErrNoInputDir is returned when no input directory could be determined.
var ErrNoInputDir = errors.New("no input directory: pass a project path or set " + EnvInputDir)

// Load builds the configuration.  Values are layered: defaults, then the
// `utsc.toml` file in the input directory (if one exists), then the process
// environment.  `inputDir` may be empty if it is provided by the environment.
func Load(inputDir string) (*Config, error) {
	return load(inputDir, os.LookupEnv)
}

func load(inputDir string, lookupEnv func(string) (string, bool)) (*Config, error) {
	if v, ok := lookupEnv(EnvInputDir); ok && v != "" {
		inputDir = v
	}

	if inputDir == "" {
		return nil, ErrNoInputDir
	}

	absInput, err := filepath.Abs(inputDir)
	if err != nil {
		return nil, fmt.Errorf("invalid input directory: %w", err)
	}

	cfg := &Config{
		InputDir:    absInput,
		OutputDir:   filepath.Join(absInput, "unpackage", "dist", "dev", "app-plus"),
		Mode:        "development",
		BundlerPath: "uts-bundler",
	}

	if err := cfg.applyFile(filepath.Join(absInput, common.ConfigFileName)); err != nil {
		return nil, err
	}

	if v, ok := lookupEnv(EnvOutputDir); ok && v != "" {
		cfg.OutputDir = v
	}

	if v, ok := lookupEnv(EnvMode); ok && v != "" {
		cfg.Mode = v
	}

	if v, ok := lookupEnv(EnvHXVersion); ok && v != "" {
		cfg.CompilerVersion = v
	} else if v, ok := lookupEnv(EnvCompilerVersion); ok && v != "" {
		cfg.CompilerVersion = v
	}

	if v, ok := lookupEnv(EnvBundler); ok && v != "" {
		cfg.BundlerPath = v
	}

	if v, ok := lookupEnv(EnvToolchain); ok && v != "" {
		cfg.ToolchainPath = v
	}

	if cfg.OutputDir, err = filepath.Abs(cfg.OutputDir); err != nil {
		return nil, fmt.Errorf("invalid output directory: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyFile overlays the contents of `utsc.toml`.  A missing file is not an
// error; a file that exists but cannot be read or parsed is.
func (c *Config) applyFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("unable to open config file at `%s`: %w", path, err)
	}
	defer f.Close()

	buff, err := ioutil.ReadAll(f)
	if err != nil {
		return fmt.Errorf("error reading config file at `%s`: %w", path, err)
	}

	tcf := &tomlConfigFile{}
	if err := toml.Unmarshal(buff, tcf); err != nil {
		return fmt.Errorf("error parsing config file at `%s`: %w", path, err)
	}

	if tcf.Build == nil {
		return nil
	}

	b := tcf.Build
	if b.OutputDir != "" {
		c.OutputDir = c.resolve(b.OutputDir)
	}

	if b.Mode != "" {
		c.Mode = b.Mode
	}

	if b.CompilerVersion != "" {
		c.CompilerVersion = b.CompilerVersion
	}

	if b.Bundler != "" {
		c.BundlerPath = b.Bundler
	}

	if b.Toolchain != "" {
		c.ToolchainPath = b.Toolchain
	}

	c.ShouldCache = b.ShouldCache
	if b.CacheDirectory != "" {
		c.CacheDirectory = c.resolve(b.CacheDirectory)
	}

	return nil
}

// resolve makes config-relative paths relative to the input directory
func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(c.InputDir, path)
}

// validate checks that the assembled configuration is usable
func (c *Config) validate() error {
	finfo, err := os.Stat(c.InputDir)
	if err != nil {
		return fmt.Errorf("error loading input directory: %w", err)
	}

	if !finfo.IsDir() {
		return fmt.Errorf("input directory `%s` must be a directory", c.InputDir)
	}

	if c.ShouldCache && c.CacheDirectory == "" {
		return errors.New("a cache directory must be specified since caching is enabled")
	}

	return nil
}

// InitConfig writes a default `utsc.toml` into dir.  It refuses to overwrite
// an existing file.
func InitConfig(dir string, enableCaching bool) error {
	path := filepath.Join(dir, common.ConfigFileName)

	_, err := os.Stat(path)
	if err == nil {
		return errors.New("config file already exists")
	}

	if !os.IsNotExist(err) {
		return fmt.Errorf("config file error: %w", err)
	}

	b := &tomlBuild{
		Mode:    "development",
		Bundler: "uts-bundler",
	}

	if enableCaching {
		b.ShouldCache = true
		b.CacheDirectory = ".utsc"
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(&tomlConfigFile{Build: b}); err != nil {
		return fmt.Errorf("error encoding TOML: %w", err)
	}

	return nil
}

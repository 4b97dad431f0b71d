package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func envFrom(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestLoad_Layering(t *testing.T) {
	input := t.TempDir()
	toml := `[build]
output-dir = "dist/app"
mode = "production"
compiler-version = "4.0.0"
toolchain = "/opt/uts/ios-server"
caching = true
cache-directory = ".cache"
`
	if err := os.WriteFile(filepath.Join(input, "utsc.toml"), []byte(toml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := load(input, envFrom(map[string]string{
		EnvMode:            "development",
		EnvCompilerVersion: "4.1.0",
	}))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	want := &Config{
		InputDir:        input,
		OutputDir:       filepath.Join(input, "dist", "app"),
		Mode:            "development",
		CompilerVersion: "4.1.0",
		BundlerPath:     "uts-bundler",
		ToolchainPath:   "/opt/uts/ios-server",
		ShouldCache:     true,
		CacheDirectory:  filepath.Join(input, ".cache"),
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_HXVersionWins(t *testing.T) {
	input := t.TempDir()
	cfg, err := load(input, envFrom(map[string]string{
		EnvHXVersion:       "3.99",
		EnvCompilerVersion: "4.1.0",
		EnvOutputDir:       filepath.Join(input, "out"),
	}))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.CompilerVersion != "3.99" {
		t.Errorf("CompilerVersion = %q, want %q", cfg.CompilerVersion, "3.99")
	}
	if cfg.OutputDir != filepath.Join(input, "out") {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
}

func TestLoad_InputFromEnv(t *testing.T) {
	input := t.TempDir()
	cfg, err := load("", envFrom(map[string]string{EnvInputDir: input}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.InputDir != input {
		t.Errorf("InputDir = %q, want %q", cfg.InputDir, input)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := load("", envFrom(nil)); err != ErrNoInputDir {
		t.Errorf("expected ErrNoInputDir, got %v", err)
	}

	if _, err := load(filepath.Join(t.TempDir(), "missing"), envFrom(nil)); err == nil {
		t.Error("expected error for missing input directory")
	}

	input := t.TempDir()
	if err := os.WriteFile(filepath.Join(input, "utsc.toml"), []byte("[build]\ncaching = true\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := load(input, envFrom(nil)); err == nil {
		t.Error("expected error when caching has no cache directory")
	}

	bad := t.TempDir()
	if err := os.WriteFile(filepath.Join(bad, "utsc.toml"), []byte("[build\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := load(bad, envFrom(nil)); err == nil {
		t.Error("expected error for malformed utsc.toml")
	}
}

func TestInitConfig(t *testing.T) {
	dir := t.TempDir()
	if err := InitConfig(dir, true); err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	cfg, err := load(dir, envFrom(nil))
	if err != nil {
		t.Fatalf("load after init failed: %v", err)
	}
	if !cfg.ShouldCache || cfg.CacheDirectory != filepath.Join(dir, ".utsc") {
		t.Errorf("caching not round-tripped: %+v", cfg)
	}

	if err := InitConfig(dir, false); err == nil {
		t.Error("expected error when config already exists")
	}
}

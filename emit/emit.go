// Package emit writes the platform resources of a compiled plugin package into
// the output tree: descriptor files, the derived `config.json`, and relocated
// root-index artifacts.
package emit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"utsc/bundler"
	"utsc/common"
	"utsc/config"
	"utsc/mods"
)

// ConfigJSONName is the name of the derived plugin configuration file.
const ConfigJSONName = "config.json"

// Params describe one compiled file whose resources should be emitted.
type Params struct {
	Platform common.Platform
	Package  *mods.Package
	Filename string

	// Namespace is the native namespace of the package.
	Namespace string

	// Components maps component names to their source files.
	Components map[string]string

	// HookClass is the native class receiving application lifecycle hooks.
	HookClass string

	// Provider is the ext-api provider implemented by the package, if any.
	Provider *Provider
}

// Provider is the provider entry of the derived `config.json`.
type Provider struct {
	Name    string `json:"name"`
	Plugin  string `json:"plugin"`
	Service string `json:"service"`
}

// ResolveProvider returns the provider entry for a plugin or nil if the
// transform does not declare a complete provider.
func ResolveProvider(pluginID string, transform *bundler.Transform) *Provider {
	if transform == nil || transform.UniExtAPIProviderName == "" || transform.UniExtAPIProviderService == "" {
		return nil
	}

	return &Provider{
		Name:    transform.UniExtAPIProviderName,
		Plugin:  pluginID,
		Service: transform.UniExtAPIProviderService,
	}
}

// Emitter writes platform resources below an output directory that mirrors the
// input directory.
type Emitter struct {
	InputDir  string
	OutputDir string
}

// New creates an emitter for the configured input and output roots.
func New(cfg *config.Config) *Emitter {
	return &Emitter{InputDir: cfg.InputDir, OutputDir: cfg.OutputDir}
}

// OutputPlatformDir returns the output directory mirroring the package's
// native directory for the platform.
func (e *Emitter) OutputPlatformDir(pkg *mods.Package, platform common.Platform) string {
	return e.mirror(pkg.PlatformDir(platform))
}

// PlatformFile returns the native source file the bundler produces for
// filename.  A package-root `index.uts` compiles into the platform directory.
func (e *Emitter) PlatformFile(pkg *mods.Package, platform common.Platform, filename string) string {
	if pkg.IsRootIndex(filename) {
		return filepath.Join(e.OutputPlatformDir(pkg, platform), "index"+platform.Ext())
	}

	out := e.mirror(filename)
	return strings.TrimSuffix(out, filepath.Ext(out)) + platform.Ext()
}

// SourceMapDir returns the directory the bundler writes source maps to.
func (e *Emitter) SourceMapDir() string {
	return filepath.Join(e.OutputDir, "..", ".sourcemap", "app")
}

// mirror maps a path inside the input directory to the output directory
func (e *Emitter) mirror(path string) string {
	rel, err := filepath.Rel(e.InputDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Join(e.OutputDir, filepath.Base(path))
	}

	return filepath.Join(e.OutputDir, rel)
}

// Emit writes the descriptor files of the package's platform directory.
func (e *Emitter) Emit(p *Params) error {
	srcDir := p.Package.PlatformDir(p.Platform)
	destDir := e.OutputPlatformDir(p.Package, p.Platform)

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	for _, name := range p.Platform.DepFileNames() {
		if name == ConfigJSONName {
			continue
		}

		if err := copyFile(filepath.Join(srcDir, name), filepath.Join(destDir, name)); err != nil {
			return err
		}
	}

	return e.writeConfigJSON(p, srcDir, destDir)
}

// copyFile copies src to dest if src exists
func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("unable to write `%s`: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("unable to write `%s`: %w", dest, err)
	}

	return nil
}

// componentEntry is a component entry of the derived `config.json`
type componentEntry struct {
	Name  string `json:"name"`
	Class string `json:"class"`
}

// writeConfigJSON merges the package's own `config.json` with the generated
// entries.  Nothing is written if there is neither.
func (e *Emitter) writeConfigJSON(p *Params, srcDir, destDir string) error {
	configJSON := make(map[string]interface{})

	buff, err := readJSONC(filepath.Join(srcDir, ConfigJSONName))
	if err == nil {
		err = json.Unmarshal(buff, &configJSON)
	} else if os.IsNotExist(err) {
		err = nil
	}

	if err != nil {
		return fmt.Errorf("error parsing `%s` of plugin [%s]: %w", ConfigJSONName, p.Package.ID, err)
	}

	if p.HookClass != "" {
		configJSON["hooksClass"] = p.HookClass
	}

	if len(p.Components) > 0 {
		names := make([]string, 0, len(p.Components))
		for name := range p.Components {
			names = append(names, name)
		}
		sort.Strings(names)

		entries := make([]componentEntry, len(names))
		for i, name := range names {
			entries[i] = componentEntry{Name: name, Class: componentClass(p.Platform, p.Namespace, name)}
		}

		configJSON["components"] = entries
	}

	if p.Provider != nil {
		configJSON["provider"] = p.Provider
	}

	if len(configJSON) == 0 {
		return nil
	}

	// map keys are encoded in sorted order so the output is stable
	out := &bytes.Buffer{}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(configJSON); err != nil {
		return err
	}

	return ioutil.WriteFile(filepath.Join(destDir, ConfigJSONName), out.Bytes(), 0o644)
}

// componentClass returns the native class implementing a component
func componentClass(platform common.Platform, namespace, name string) string {
	class := common.Capitalize(common.Camelize(name)) + "Component"
	if platform == common.PlatformAndroid {
		return namespace + "." + class
	}

	return namespace + class
}

// RelocateRootIndex moves the artifacts of a package-root `index.uts` from the
// location mirroring the package root into the platform directory.  It
// returns the artifact list with relocated paths substituted.  Files of any
// other kind are returned unchanged.
func (e *Emitter) RelocateRootIndex(pkg *mods.Package, platform common.Platform, filename string, artifacts []string, sourceMap bool) ([]string, error) {
	if !pkg.IsRootIndex(filename) {
		return artifacts, nil
	}

	base := "index" + platform.Ext()
	from := filepath.Join(e.mirror(pkg.Dir), base)
	to := e.PlatformFile(pkg, platform, filename)

	relocated := make([]string, len(artifacts))
	for i, artifact := range artifacts {
		relocated[i] = artifact
		if filepath.Clean(artifact) != from {
			continue
		}

		if err := moveFile(from, to); err != nil {
			return nil, err
		}

		relocated[i] = to
	}

	if sourceMap {
		smDir := e.SourceMapDir()
		smFrom := filepath.Join(smDir, relOrBase(e.InputDir, pkg.Dir), base+".map")
		smTo := filepath.Join(smDir, relOrBase(e.InputDir, pkg.PlatformDir(platform)), base+".map")

		if err := moveFile(smFrom, smTo); err != nil {
			return nil, err
		}
	}

	return relocated, nil
}

func relOrBase(base, target string) string {
	rel, err := filepath.Rel(base, target)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Base(target)
	}

	return rel
}

// moveFile moves from to to if from exists
func moveFile(from, to string) error {
	if _, err := os.Stat(from); err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}

	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return err
	}

	return os.Rename(from, to)
}

// Package mods locates the plugin package that owns a UTS source file and
// derives the package's identity and native namespaces.
package mods

import (
	"path"
	"path/filepath"
	"strings"

	"utsc/common"
)

// Package represents a plugin package -- specifically, the identity derived
// from a source file's path.  It is computed on demand for every compile
// request and is never cached.
type Package struct {
	// ID is the directory name of the package (eg. `test-plugin`)
	ID string

	// Name is the camelized ID (eg. `testPlugin`)
	Name string

	// Dir is the absolute path to the package's root directory
	Dir string

	// IsUniModules indicates whether the package lives in the shared
	// `uni_modules` area (true) or in the project-local `utssdk` area (false)
	IsUniModules bool
}

// Resolve determines the package owning filename by walking its path against
// the known package root conventions.  A `uni_modules` segment takes priority
// over a `utssdk` segment, since uni_modules packages keep their platform
// sources under their own `utssdk` directory.  It returns nil if the file is
// not owned by any package.
func Resolve(filename string) *Package {
	normalized := common.NormalizePath(filename)
	parts := strings.Split(normalized, "/")

	isUniModules := false
	index := indexOf(parts, common.UniModulesDir)
	if index > -1 {
		isUniModules = true
	} else {
		index = indexOf(parts, common.UTSSDKDir)
	}

	// the root directory segment must be followed by the package directory
	if index == -1 || index+1 >= len(parts) || parts[index+1] == "" {
		return nil
	}

	id := parts[index+1]
	dir := strings.Join(parts[:index+2], "/")
	if dir == "" {
		dir = "/"
	}

	return &Package{
		ID:           id,
		Name:         common.Camelize(id),
		Dir:          filepath.FromSlash(dir),
		IsUniModules: isUniModules,
	}
}

// indexOf returns the index of the first segment equal to name or -1
func indexOf(parts []string, name string) int {
	for i, part := range parts {
		if part == name {
			return i
		}
	}

	return -1
}

// Namespace returns the package namespace used in the native language's
// package declarations for the given platform.  Swift has no dotted packages
// so the namespace is a single prefixed identifier; Kotlin uses a reverse
// domain style package.
func (p *Package) Namespace(platform common.Platform) string {
	switch platform {
	case common.PlatformAndroid:
		ns := "uts.sdk."
		if p.IsUniModules {
			ns += "modules."
		}

		return ns + p.Name
	default:
		ns := "UTSSDK"
		if p.IsUniModules {
			ns += "Modules"
		}

		return ns + common.Capitalize(p.Name)
	}
}

// PlatformDir returns the directory holding the package's native sources for
// the given platform.
func (p *Package) PlatformDir(platform common.Platform) string {
	if p.IsUniModules {
		return filepath.Join(p.Dir, common.UTSSDKDir, platform.Dir())
	}

	return filepath.Join(p.Dir, platform.Dir())
}

// AreaDir returns the name of the project area the package lives in:
// `uni_modules` or `utssdk`.
func (p *Package) AreaDir() string {
	if p.IsUniModules {
		return common.UniModulesDir
	}

	return common.UTSSDKDir
}

// Kind returns the numeric package kind understood by the native toolchain:
// 1 for uni_modules packages and 2 for utssdk packages.
func (p *Package) Kind() int {
	if p.IsUniModules {
		return 1
	}

	return 2
}

// IsRootIndex reports whether filename is the package-root `index.uts` rather
// than a file inside one of the platform directories.
func (p *Package) IsRootIndex(filename string) bool {
	return filepath.Clean(filename) == filepath.Join(p.Dir, common.RootIndexName)
}

// ResolveID returns the ID of the package owning filename or the empty string.
func ResolveID(filename string) string {
	if pkg := Resolve(filename); pkg != nil {
		return pkg.ID
	}

	return ""
}

// RelPath returns the slash separated path of target relative to base.  It
// falls back to the base name of target when the two are on different volumes.
func RelPath(base, target string) string {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return path.Base(filepath.ToSlash(target))
	}

	return filepath.ToSlash(rel)
}

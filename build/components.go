package build

import (
	"path/filepath"
	"sort"
	"strings"

	"utsc/common"
)

// GenComponentsCode generates the registration code exporting every component
// from the module compiled for filename.  Components are emitted in sorted name
// order so the code is stable.  Component paths may be absolute or relative to
// the directory of filename.  It returns the empty string if there are no
// components.
func GenComponentsCode(filename string, components map[string]string, isX bool) string {
	if len(components) == 0 {
		return ""
	}

	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}
	sort.Strings(names)

	dir := filepath.Dir(filename)
	lines := make([]string, len(names))
	for i, name := range names {
		source := components[name]
		if !filepath.IsAbs(source) {
			source = filepath.Join(dir, source)
		}

		rel, err := filepath.Rel(dir, source)
		if err != nil {
			rel = filepath.Base(source)
		}

		rel = filepath.ToSlash(rel)
		if !strings.HasPrefix(rel, ".") {
			rel = "./" + rel
		}

		className := common.Capitalize(common.Camelize(name))
		if isX {
			lines[i] = "export { default as " + className + "Component, " + className + "Element } from '" + rel + "'"
		} else {
			lines[i] = "export { default as " + className + "Component } from '" + rel + "'"
		}
	}

	return strings.Join(lines, "\n")
}

package mods

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"

	"utsc/common"
)

// FindPackages searches both package areas of the project rooted at inputDir
// and returns every plugin package found, uni_modules first, each area sorted
// by ID.  Directories without a root `index.uts` and without a source tree for
// any platform are not packages.
func FindPackages(inputDir string) ([]*Package, error) {
	var pkgs []*Package

	for _, area := range []string{common.UniModulesDir, common.UTSSDKDir} {
		areaPath := filepath.Join(inputDir, area)

		finfos, err := ioutil.ReadDir(areaPath)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}

			return nil, err
		}

		for _, finfo := range finfos {
			if !finfo.IsDir() {
				continue
			}

			pkg := &Package{
				ID:           finfo.Name(),
				Name:         common.Camelize(finfo.Name()),
				Dir:          filepath.Join(areaPath, finfo.Name()),
				IsUniModules: area == common.UniModulesDir,
			}

			if checkPackage(pkg) {
				pkgs = append(pkgs, pkg)
			}
		}
	}

	sort.SliceStable(pkgs, func(i, j int) bool {
		if pkgs[i].IsUniModules != pkgs[j].IsUniModules {
			return pkgs[i].IsUniModules
		}

		return pkgs[i].ID < pkgs[j].ID
	})

	return pkgs, nil
}

// checkPackage checks to see if a potential package directory holds UTS
// sources that the compiler could build
func checkPackage(pkg *Package) bool {
	if fileExists(filepath.Join(pkg.Dir, common.RootIndexName)) {
		return true
	}

	for _, p := range common.Platforms {
		if fileExists(filepath.Join(pkg.PlatformDir(p), common.RootIndexName)) {
			return true
		}
	}

	return false
}

// EntryFile returns the file to compile for the package on the given
// platform: the platform's `index.uts` if present, the package-root
// `index.uts` otherwise.  The returned path may not exist.
func (p *Package) EntryFile(platform common.Platform) string {
	platformIndex := filepath.Join(p.PlatformDir(platform), common.RootIndexName)
	if fileExists(platformIndex) {
		return platformIndex
	}

	return filepath.Join(p.Dir, common.RootIndexName)
}

func fileExists(path string) bool {
	finfo, err := os.Stat(path)
	return err == nil && !finfo.IsDir()
}

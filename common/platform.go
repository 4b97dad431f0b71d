package common

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Platform is one of the enumerated native compile targets.  Its string form
// is also the name of the platform's native source directory inside a plugin
// package, so path checks compare whole segments against these values rather
// than searching for substrings.
type Platform int

// Enumeration of native platforms
const (
	PlatformIOS Platform = iota
	PlatformAndroid
)

// Platforms lists every enumerated platform.
var Platforms = []Platform{PlatformIOS, PlatformAndroid}

var platformDirs = map[Platform]string{
	PlatformIOS:     "app-ios",
	PlatformAndroid: "app-android",
}

func (p Platform) String() string {
	if dir, ok := platformDirs[p]; ok {
		return dir
	}

	return fmt.Sprintf("Platform(%d)", int(p))
}

// Dir returns the native source directory name of the platform.
func (p Platform) Dir() string {
	return platformDirs[p]
}

// Ext returns the extension (with the leading dot) of the native source the
// bundler produces for this platform.
func (p Platform) Ext() string {
	if p == PlatformAndroid {
		return ".kt"
	}

	return ".swift"
}

// Language returns the bundler's target language name for this platform.
func (p Platform) Language() string {
	if p == PlatformAndroid {
		return "kotlin"
	}

	return "swift"
}

// DepFileNames returns the platform descriptor files a plugin may ship in its
// native directory.
func (p Platform) DepFileNames() []string {
	if p == PlatformAndroid {
		return []string{"AndroidManifest.xml", "config.json"}
	}

	return []string{"Info.plist", "config.json"}
}

// ParsePlatform converts a platform directory name into a Platform.
func ParsePlatform(name string) (Platform, error) {
	for p, dir := range platformDirs {
		if dir == name {
			return p, nil
		}
	}

	return 0, fmt.Errorf("unknown platform `%s`", name)
}

// IsForeignTo reports whether the path lies inside the native source tree of a
// platform other than p.  Project layouts share the same directory shape for
// every platform, so sources of one platform must never leak into another
// platform's build.
func IsForeignTo(path string, p Platform) bool {
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		for other, dir := range platformDirs {
			if other != p && seg == dir {
				return true
			}
		}
	}

	return false
}

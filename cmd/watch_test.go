package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"utsc/common"
	"utsc/mods"
)

func TestChangedPackage(t *testing.T) {
	for _, test := range []struct {
		path string
		want string
	}{
		{"/proj/uni_modules/test-plugin/utssdk/app-ios/index.uts", "test-plugin"},
		{"/proj/uni_modules/test-plugin/utssdk/app-ios/Info.plist", "test-plugin"},
		{"/proj/uni_modules/test-plugin/components/map/map.uvue", "test-plugin"},
		{"/proj/utssdk/some-sdk/app-ios/config.json", "some-sdk"},
		{"/proj/uni_modules/test-plugin/utssdk/app-android/index.uts", ""},
		{"/proj/uni_modules/test-plugin/readme.md", ""},
		{"/proj/pages/index.uts", ""},
	} {
		pkg := changedPackage(filepath.FromSlash(test.path), common.PlatformIOS)

		got := ""
		if pkg != nil {
			got = pkg.ID
		}

		if got != test.want {
			t.Errorf("changedPackage(%q) = %q, want %q", test.path, got, test.want)
		}
	}
}

func TestUniModuleIDs(t *testing.T) {
	dir := t.TempDir()
	for _, p := range []string{
		filepath.Join(dir, "uni_modules", "b", "index.uts"),
		filepath.Join(dir, "uni_modules", "a", "utssdk", "app-ios", "index.uts"),
		filepath.Join(dir, "utssdk", "c", "index.uts"),
	} {
		writeTestFile(t, p)
	}

	got := uniModuleIDsOf(t, dir)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("uniModuleIDs = %v, want [a b]", got)
	}
}

func writeTestFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("export {}"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func uniModuleIDsOf(t *testing.T, dir string) []string {
	t.Helper()
	pkgs, err := mods.FindPackages(dir)
	if err != nil {
		t.Fatal(err)
	}

	return uniModuleIDs(pkgs)
}

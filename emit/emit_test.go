package emit

import (
	"os"
	"path/filepath"
	"testing"

	"utsc/bundler"
	"utsc/common"
	"utsc/mods"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	buff, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	return string(buff)
}

func setup(t *testing.T) (*Emitter, *mods.Package) {
	t.Helper()
	root := t.TempDir()
	e := &Emitter{
		InputDir:  filepath.Join(root, "src"),
		OutputDir: filepath.Join(root, "dist", "app-plus"),
	}

	pkg := mods.Resolve(filepath.Join(e.InputDir, "uni_modules", "test-plugin", "index.uts"))
	return e, pkg
}

func TestEmit_IOS(t *testing.T) {
	e, pkg := setup(t)
	srcDir := pkg.PlatformDir(common.PlatformIOS)
	writeFile(t, filepath.Join(srcDir, "Info.plist"), "<plist/>")
	writeFile(t, filepath.Join(srcDir, "config.json"), `{"deploymentTarget": "12", "frameworks": ["a"]}`)

	err := e.Emit(&Params{
		Platform:   common.PlatformIOS,
		Package:    pkg,
		Filename:   filepath.Join(srcDir, "index.uts"),
		Namespace:  "UTSSDKModulesTestPlugin",
		Components: map[string]string{"video-view": "./video-view.uvue", "map": "./map.uvue"},
		HookClass:  "TestPluginHookProxy",
		Provider:   &Provider{Name: "test", Plugin: "test-plugin", Service: "oauth"},
	})
	if err != nil {
		t.Fatal(err)
	}

	destDir := filepath.Join(e.OutputDir, "uni_modules", "test-plugin", "utssdk", "app-ios")
	if got := readFile(t, filepath.Join(destDir, "Info.plist")); got != "<plist/>" {
		t.Errorf("Info.plist = %q", got)
	}

	want := `{
  "components": [
    {
      "name": "map",
      "class": "UTSSDKModulesTestPluginMapComponent"
    },
    {
      "name": "video-view",
      "class": "UTSSDKModulesTestPluginVideoViewComponent"
    }
  ],
  "deploymentTarget": "12",
  "frameworks": [
    "a"
  ],
  "hooksClass": "TestPluginHookProxy",
  "provider": {
    "name": "test",
    "plugin": "test-plugin",
    "service": "oauth"
  }
}
`
	if diff := cmp.Diff(want, readFile(t, filepath.Join(destDir, "config.json"))); diff != "" {
		t.Errorf("config.json (-want +got):\n%s", diff)
	}
}

func TestEmit_NothingToWrite(t *testing.T) {
	e, pkg := setup(t)

	err := e.Emit(&Params{Platform: common.PlatformAndroid, Package: pkg})
	if err != nil {
		t.Fatal(err)
	}

	destDir := e.OutputPlatformDir(pkg, common.PlatformAndroid)
	entries, err := os.ReadDir(destDir)
	if err != nil {
		t.Fatal(err)
	}

	if len(entries) != 0 {
		t.Errorf("output dir has %d entries, want 0", len(entries))
	}
}

func TestEmit_Repeatable(t *testing.T) {
	e, pkg := setup(t)
	srcDir := pkg.PlatformDir(common.PlatformIOS)
	writeFile(t, filepath.Join(srcDir, "Info.plist"), "<plist/>")
	writeFile(t, filepath.Join(srcDir, "config.json"), "{\n  // pinned\n  \"deploymentTarget\": \"12\",\n  \"frameworks\": [\"b\", \"a\"],\n}")

	p := &Params{
		Platform:   common.PlatformIOS,
		Package:    pkg,
		Filename:   filepath.Join(srcDir, "index.uts"),
		Namespace:  "UTSSDKModulesTestPlugin",
		Components: map[string]string{"c": "./c.uvue", "a": "./a.uvue", "b": "./b.uvue"},
		HookClass:  "TestPluginHookProxy",
	}

	destDir := e.OutputPlatformDir(pkg, common.PlatformIOS)
	var outputs [2]map[string]string
	for i := range outputs {
		if err := e.Emit(p); err != nil {
			t.Fatal(err)
		}

		outputs[i] = map[string]string{
			"Info.plist":  readFile(t, filepath.Join(destDir, "Info.plist")),
			"config.json": readFile(t, filepath.Join(destDir, "config.json")),
		}
	}

	if diff := cmp.Diff(outputs[0], outputs[1]); diff != "" {
		t.Errorf("second Emit changed the output (-first +second):\n%s", diff)
	}

	want := `{
  "components": [
    {
      "name": "a",
      "class": "UTSSDKModulesTestPluginAComponent"
    },
    {
      "name": "b",
      "class": "UTSSDKModulesTestPluginBComponent"
    },
    {
      "name": "c",
      "class": "UTSSDKModulesTestPluginCComponent"
    }
  ],
  "deploymentTarget": "12",
  "frameworks": [
    "b",
    "a"
  ],
  "hooksClass": "TestPluginHookProxy"
}
`
	if diff := cmp.Diff(want, outputs[1]["config.json"]); diff != "" {
		t.Errorf("config.json (-want +got):\n%s", diff)
	}
}

func TestPlatformFile(t *testing.T) {
	e, pkg := setup(t)
	platformDir := filepath.Join(e.OutputDir, "uni_modules", "test-plugin", "utssdk", "app-ios")

	for _, test := range []struct {
		filename string
		want     string
	}{
		{filepath.Join(pkg.Dir, "index.uts"), filepath.Join(platformDir, "index.swift")},
		{filepath.Join(pkg.PlatformDir(common.PlatformIOS), "index.uts"), filepath.Join(platformDir, "index.swift")},
	} {
		if got := e.PlatformFile(pkg, common.PlatformIOS, test.filename); got != test.want {
			t.Errorf("PlatformFile(%q) = %q, want %q", test.filename, got, test.want)
		}
	}
}

func TestRelocateRootIndex(t *testing.T) {
	e, pkg := setup(t)
	filename := filepath.Join(pkg.Dir, "index.uts")

	mirrored := filepath.Join(e.OutputDir, "uni_modules", "test-plugin", "index.swift")
	writeFile(t, mirrored, "// swift")

	smDir := e.SourceMapDir()
	writeFile(t, filepath.Join(smDir, "uni_modules", "test-plugin", "index.swift.map"), "{}")

	got, err := e.RelocateRootIndex(pkg, common.PlatformIOS, filename, []string{mirrored}, true)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{e.PlatformFile(pkg, common.PlatformIOS, filename)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RelocateRootIndex (-want +got):\n%s", diff)
	}

	if readFile(t, want[0]) != "// swift" {
		t.Error("bundled file was not moved")
	}

	if _, err := os.Stat(mirrored); !os.IsNotExist(err) {
		t.Error("mirrored bundled file still exists")
	}

	smWant := filepath.Join(smDir, "uni_modules", "test-plugin", "utssdk", "app-ios", "index.swift.map")
	if readFile(t, smWant) != "{}" {
		t.Error("source map was not moved")
	}
}

func TestRelocateRootIndex_OtherFile(t *testing.T) {
	e, pkg := setup(t)
	filename := filepath.Join(pkg.PlatformDir(common.PlatformIOS), "index.uts")
	artifacts := []string{"/out/whatever.swift"}

	got, err := e.RelocateRootIndex(pkg, common.PlatformIOS, filename, artifacts, true)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(artifacts, got); diff != "" {
		t.Errorf("RelocateRootIndex (-want +got):\n%s", diff)
	}
}

func TestResolveProvider(t *testing.T) {
	if ResolveProvider("p", nil) != nil {
		t.Error("nil transform should yield no provider")
	}

	if ResolveProvider("p", &bundler.Transform{UniExtAPIProviderName: "n"}) != nil {
		t.Error("provider without service should yield no provider")
	}

	got := ResolveProvider("p", &bundler.Transform{UniExtAPIProviderName: "n", UniExtAPIProviderService: "s"})
	if diff := cmp.Diff(&Provider{Name: "n", Plugin: "p", Service: "s"}, got); diff != "" {
		t.Errorf("ResolveProvider (-want +got):\n%s", diff)
	}
}

package emit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"utsc/common"
	"utsc/mods"

	"github.com/tailscale/hujson"
)

// DepFiles lists the platform descriptor files a compiled file depends on:
// changing any of them requires a rebuild.  The files need not exist.
func DepFiles(platform common.Platform, filename string) []string {
	dir := filepath.Dir(filename)
	if pkg := mods.Resolve(filename); pkg != nil {
		dir = pkg.PlatformDir(platform)
	}

	names := platform.DepFileNames()
	deps := make([]string, len(names))
	for i, name := range names {
		deps[i] = filepath.Join(dir, name)
	}

	return deps
}

// errSyntax marks descriptor files that are not valid JSON with comments.
var errSyntax = errors.New("invalid json")

// readJSONC reads a descriptor file that may carry comments and trailing
// commas and returns it as standard JSON.
func readJSONC(path string) ([]byte, error) {
	buff, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	std, err := hujson.Standardize(buff)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errSyntax, err)
	}

	return std, nil
}

// iosConfig is the part of an iOS `config.json` inspected for tips
type iosConfig struct {
	DeploymentTarget json.RawMessage `json:"deploymentTarget"`
}

// CheckVersionTips returns a tip when the plugin's iOS configuration requires
// a deployment target newer than iOS 12.  A missing or malformed
// configuration yields no tip.
func CheckVersionTips(pluginID, pluginDir string, isUniModules bool) (string, error) {
	configPath := filepath.Join(pluginDir, common.PlatformIOS.Dir(), ConfigJSONName)
	if isUniModules {
		configPath = filepath.Join(pluginDir, common.UTSSDKDir, common.PlatformIOS.Dir(), ConfigJSONName)
	}

	buff, err := readJSONC(configPath)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, errSyntax) {
			return "", nil
		}

		return "", err
	}

	var cfg iosConfig
	if err := json.Unmarshal(buff, &cfg); err != nil || len(cfg.DeploymentTarget) == 0 {
		return "", nil
	}

	// deployment targets appear both as strings and as numbers
	target := strings.Trim(string(cfg.DeploymentTarget), `"`)
	version, err := strconv.ParseFloat(leadingNumber(target), 64)
	if err != nil || version <= 12 {
		return "", nil
	}

	return fmt.Sprintf("uts plugin [%s] requires iOS %s or later", pluginID, target), nil
}

// leadingNumber returns the longest prefix of s that is a decimal number:
// `16.0.1` yields `16.0`.
func leadingNumber(s string) string {
	s = strings.TrimSpace(s)
	end, dot := 0, false
	for end < len(s) {
		c := s[end]
		if c == '.' && !dot {
			dot = true
		} else if c < '0' || c > '9' {
			break
		}

		end++
	}

	return strings.TrimSuffix(s[:end], ".")
}

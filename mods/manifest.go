package mods

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"utsc/common"
)

// Manifest is the subset of a plugin's `package.json` the compiler uses.
type Manifest struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Version     string `json:"version"`

	UniModules struct {
		ExtAPI struct {
			Provider *Provider `json:"provider"`
		} `json:"uni-ext-api"`
	} `json:"uni_modules"`
}

// Provider describes an ext-api provider a plugin implements.
type Provider struct {
	Name    string `json:"name"`
	Service string `json:"service"`
}

// LoadManifest loads the `package.json` of the package rooted at dir.  A
// package without a manifest yields (nil, nil): utssdk packages are not
// required to have one.
func LoadManifest(dir string) (*Manifest, error) {
	f, err := os.Open(filepath.Join(dir, common.ManifestFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, err
	}
	defer f.Close()

	buff, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("error reading manifest at `%s`: %w", dir, err)
	}

	m := &Manifest{}
	if err := json.Unmarshal(buff, m); err != nil {
		return nil, fmt.Errorf("error parsing manifest at `%s`: %w", dir, err)
	}

	return m, nil
}

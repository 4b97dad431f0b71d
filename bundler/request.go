// Package bundler describes the request/response boundary of the external UTS
// bundler and provides a client that runs it as a subprocess.
package bundler

import (
	"encoding/json"
)

// Target is the native language the bundler compiles to.
type Target string

// Enumeration of bundler targets
const (
	TargetSwift  Target = "swift"
	TargetKotlin Target = "kotlin"
)

// Request is a normalized bundle request.
type Request struct {
	Mode            string `json:"mode"`
	CompilerVersion string `json:"hbxVersion"`

	Input  Input  `json:"input"`
	Output Output `json:"output"`
}

// Input describes what to compile.
type Input struct {
	Root       string            `json:"root"`
	Filename   string            `json:"filename"`
	PluginID   string            `json:"pluginId"`
	Paths      map[string]string `json:"paths"`
	UniModules []string          `json:"uniModules"`

	// FileContent replaces the content of Filename when set.  It is used for
	// generated component registration code.
	FileContent *string `json:"fileContent,omitempty"`
}

// Output describes how to compile.
type Output struct {
	IsX            bool            `json:"isX"`
	IsSingleThread bool            `json:"isSingleThread"`
	IsPlugin       bool            `json:"isPlugin"`
	OutDir         string          `json:"outDir"`
	Package        string          `json:"package"`
	SourceMap      SourceMapOption `json:"sourceMap"`
	Extname        string          `json:"extname"`
	Imports        []string        `json:"imports"`
	LogFilename    bool            `json:"logFilename"`
	NoColor        bool            `json:"noColor"`
	Transform      Transform       `json:"transform"`
}

// Transform holds the code transform hooks of a request.
type Transform struct {
	UniExtAPIDefaultNamespace string               `json:"uniExtApiDefaultNamespace,omitempty"`
	UniExtAPINamespaces       map[string][2]string `json:"uniExtApiNamespaces,omitempty"`

	UniExtAPIProviderName          string `json:"uniExtApiProviderName,omitempty"`
	UniExtAPIProviderService       string `json:"uniExtApiProviderService,omitempty"`
	UniExtAPIProviderServicePlugin string `json:"uniExtApiProviderServicePlugin,omitempty"`
}

// Merge returns a copy of t with every non-empty field of o applied on top.
func (t Transform) Merge(o *Transform) Transform {
	if o == nil {
		return t
	}

	if o.UniExtAPIDefaultNamespace != "" {
		t.UniExtAPIDefaultNamespace = o.UniExtAPIDefaultNamespace
	}

	if o.UniExtAPINamespaces != nil {
		t.UniExtAPINamespaces = o.UniExtAPINamespaces
	}

	if o.UniExtAPIProviderName != "" {
		t.UniExtAPIProviderName = o.UniExtAPIProviderName
	}

	if o.UniExtAPIProviderService != "" {
		t.UniExtAPIProviderService = o.UniExtAPIProviderService
	}

	if o.UniExtAPIProviderServicePlugin != "" {
		t.UniExtAPIProviderServicePlugin = o.UniExtAPIProviderServicePlugin
	}

	return t
}

// SourceMapOption is the source map output directory.  The empty value means
// source maps are disabled and is encoded as `false`.
type SourceMapOption string

func (s SourceMapOption) MarshalJSON() ([]byte, error) {
	if s == "" {
		return []byte("false"), nil
	}

	return json.Marshal(string(s))
}

func (s *SourceMapOption) UnmarshalJSON(data []byte) error {
	if string(data) == "false" || string(data) == "null" {
		*s = ""
		return nil
	}

	var path string
	if err := json.Unmarshal(data, &path); err != nil {
		return err
	}

	*s = SourceMapOption(path)
	return nil
}

// Result is the bundler's answer to a request.
type Result struct {
	// Error is the raw compiler error text.  It must be parsed before it is
	// surfaced to anyone.
	Error string `json:"error,omitempty"`

	// Outputs lists the artifact files the bundler wrote.
	Outputs []string `json:"outputs,omitempty"`

	// Deps lists additional source files the compiled file depends on.
	Deps []string `json:"deps,omitempty"`

	// InjectAPIs lists the ext-apis the compiled code references.
	InjectAPIs []string `json:"inject_apis,omitempty"`

	// Time is the bundling time in milliseconds.
	Time int64 `json:"time,omitempty"`
}

// Empty reports whether the result carries neither an error nor artifacts:
// the input had nothing to compile.
func (r *Result) Empty() bool {
	return r.Error == "" && len(r.Outputs) == 0
}

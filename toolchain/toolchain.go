// Package toolchain talks to the native toolchain service that compiles
// generated Swift sources during development builds.
package toolchain

import (
	"context"
	"errors"
)

// ErrNotInstalled is returned when no native toolchain service is available.
var ErrNotInstalled = errors.New("uts iOS runtime extension is not installed")

// CompileRequest is the parameter block of a native compile.
type CompileRequest struct {
	// ProjectPath is the project root; for CLI projects the parent of `src`.
	ProjectPath string `json:"projectPath"`

	// IsCli indicates whether the project is a CLI project.
	IsCli bool `json:"isCli"`

	// Type is the package kind: 1 for uni_modules, 2 for utssdk.
	Type int `json:"type"`

	// PluginName is the package ID.
	PluginName string `json:"pluginName"`

	// UTSPath is the UTS source area (`<inputDir>/uni_modules` or
	// `<inputDir>/utssdk`).
	UTSPath string `json:"utsPath"`

	// SwiftPath is the matching area in the output directory.
	SwiftPath string `json:"swiftPath"`
}

// Status is the result of a toolchain call.  A zero code means success.
type Status struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
}

// OK reports whether the call succeeded.
func (s Status) OK() bool {
	return s.Code == 0
}

// Service compiles generated native sources.
type Service interface {
	Compile(ctx context.Context, req *CompileRequest) (Status, error)
}

// EnvChecker is implemented by services that can verify their native
// environment (SDKs, simulators) before compiling.
type EnvChecker interface {
	CheckEnv(ctx context.Context) (Status, error)
}

package build

import (
	"utsc/common"
	"utsc/mods"
)

// Result is the interpreted outcome of a successful compilation.
type Result struct {
	Platform common.Platform
	Filename string

	// Package is the package owning the compiled file or nil.
	Package *mods.Package

	// Artifacts lists the files the bundler wrote.
	Artifacts []string

	// Deps lists additional source files the compiled file depends on.
	Deps []string

	// InjectAPIs lists the ext-apis the compiled code references.
	InjectAPIs []string

	// Output holds the platform specific part of the result.  It is only set
	// by RunProd and RunDev.
	Output Output
}

// Output is the platform specific result of a build.  It is implemented by
// *SwiftOutput and *KotlinOutput only.
type Output interface {
	platform() common.Platform
}

// SwiftOutput is the result of building for iOS.
type SwiftOutput struct {
	// File is the generated Swift source.
	File string

	// NativeCode and NativeMessage hold the outcome of the native compile
	// run in development builds.  A non-zero code is a native compile failure.
	NativeCode    int
	NativeMessage string

	// Changed lists the generated sources the native compile consumed.  It is
	// empty when no native compile ran.
	Changed []string
}

func (*SwiftOutput) platform() common.Platform { return common.PlatformIOS }

// NativeFailed reports whether the native compile ran and failed.
func (so *SwiftOutput) NativeFailed() bool {
	return so.NativeCode != 0
}

// KotlinOutput is the result of building for Android.
type KotlinOutput struct {
	// File is the generated Kotlin source.
	File string
}

func (*KotlinOutput) platform() common.Platform { return common.PlatformAndroid }

package common

const (
	SrcFileExtension = ".uts"
	ConfigFileName   = "utsc.toml"
	ManifestFileName = "package.json"
	UTSCVersion      = "0.3.0"

	// UniModulesDir is the shared community module area of a project.
	UniModulesDir = "uni_modules"

	// UTSSDKDir is the project-local SDK area. Inside a uni_modules package it
	// also holds the per-platform source trees.
	UTSSDKDir = "utssdk"

	// RootIndexName is the entry file of every plugin package.
	RootIndexName = "index" + SrcFileExtension
)

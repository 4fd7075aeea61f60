// Package misc keeps build time information.
package misc

// set by linker: -ldflags "-X cssreduce/misc.version=..."
var (
	appName = "cssreduce"
	version = "dev"
	gitHash = "unknown"
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}

// Package version carries build-time version metadata, set via -ldflags at
// build time (e.g. -X github.com/testpods-go/testpods/pkg/version.gitVersion=v0.3.0).
package version

import (
	"fmt"
	"runtime"
)

var (
	gitCommit  = "none"
	gitVersion = "dev"
	buildDate  = "unknown"
)

// Info is the full set of build metadata reported by Get.
type Info struct {
	GitCommit  string
	GitVersion string
	GoVersion  string
	Compiler   string
	Platform   string
	BuildDate  string
}

func (i Info) String() string {
	return fmt.Sprintf(
		"GitCommit: %s\nGitVersion: %s\nGoVersion: %s\nCompiler: %s\nPlatform: %s\nBuildDate: %s\n",
		i.GitCommit, i.GitVersion, i.GoVersion, i.Compiler, i.Platform, i.BuildDate,
	)
}

// Get reports the current build's version metadata.
func Get() Info {
	return Info{
		GitCommit:  gitCommit,
		GitVersion: gitVersion,
		GoVersion:  runtime.Version(),
		Compiler:   runtime.Compiler,
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		BuildDate:  buildDate,
	}
}

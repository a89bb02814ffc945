// Package version exposes the application version derived from build
// metadata.
//
// Go 1.18+ automatically embeds VCS info (git commit, dirty flag, module
// path) into the binary via runtime/debug.BuildInfo. No -ldflags required.
//
// Usage:
//
//	version.GitCommit  // "a3f8c2d1" or "dev"
//	version.Full()     // "reasonctl/a3f8c2d1", with a "+dirty" suffix
//	                    // when the working tree had local modifications
package version

import "runtime/debug"

// AppName is the application name used in version strings and the MCP
// implementation handshake.
const AppName = "reasonctl"

var buildInfo = readBuildInfo()

// GitCommit is the short git commit hash (8 chars) from build info. Set
// to "dev" when build info is unavailable (e.g. `go test`, non-git builds).
var GitCommit = buildInfo.commit

// ModulePath is the main module's import path as recorded in build info,
// e.g. "github.com/deepreason/orchestrator". Empty outside a built binary
// (build info unavailable).
var ModulePath = buildInfo.modulePath

// Dirty reports whether the binary was built from a working tree with
// uncommitted changes (vcs.modified=true in build info).
var Dirty = buildInfo.dirty

type vcsInfo struct {
	commit     string
	modulePath string
	dirty      bool
}

func readBuildInfo() vcsInfo {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return vcsInfo{commit: "dev"}
	}
	out := vcsInfo{commit: "dev", modulePath: info.Main.Path}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if s.Value == "" {
				continue
			}
			out.commit = s.Value
			if len(out.commit) > 8 {
				out.commit = out.commit[:8]
			}
		case "vcs.modified":
			out.dirty = s.Value == "true"
		}
	}
	return out
}

// Full returns "reasonctl/<commit>" for use in logging and the MCP
// implementation version field, with a "+dirty" suffix appended when the
// build came from a modified working tree.
func Full() string {
	if Dirty {
		return AppName + "/" + GitCommit + "+dirty"
	}
	return AppName + "/" + GitCommit
}

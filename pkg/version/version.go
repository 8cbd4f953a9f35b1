// Package version holds build-time version info injected via ldflags.
//
// Set at compile time:
//
//	go build -ldflags "-X github.com/NicolasHaas/pngtuber/pkg/version.tag=v0.1.0
//	  -X github.com/NicolasHaas/pngtuber/pkg/version.commit=abc1234
//	  -X github.com/NicolasHaas/pngtuber/pkg/version.date=2026-01-01"
package version

import "runtime/debug"

// Populated by -ldflags "-X ...". When unset, commit falls back to the VCS
// revision Go stamps into the binary.
var (
	tag    = ""        // git tag (e.g. "v0.1.0"), empty if not on a tag
	commit = "unknown" // short git commit SHA
	date   = "unknown" // build date (ISO 8601)
)

func init() {
	if commit != "unknown" {
		return
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if len(s.Value) >= 7 {
				commit = s.Value[:7]
			}
		case "vcs.time":
			if date == "unknown" {
				date = s.Value
			}
		}
	}
}

// String returns a human-readable version string.
//
//	Tagged:   "v0.1.0"
//	Untagged: "abc1234"
//	Dev:      "dev"
func String() string {
	if tag != "" {
		return tag
	}
	if commit != "unknown" {
		return commit
	}
	return "dev"
}

// Full returns "tag (commit) built date" or a sensible fallback.
func Full() string {
	if tag != "" {
		return tag + " (" + commit + ") built " + date
	}
	if commit != "unknown" {
		return commit + " built " + date
	}
	return "dev"
}

// Package settings provides build metadata, per-run configuration, and
// context helpers shared by the prodlookup CLI and its packages.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "prodlookup"

// EnvPrefix is the prefix for environment variable overrides of config keys.
const EnvPrefix = "PRODLOOKUP_"

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build, including the commit hash,
// build version, and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds configuration settings for a single execution of the application:
// which page is active, where records come from, and how output is produced.
type Run struct {
	MinLogLevel int8
	Page        string
	Source      string
	Interactive bool
	NoColor     bool
	Watch       bool
	LogFile     string
}

// NewCliParams returns the defaults for an interactive CLI run.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		Interactive: true,
		NoColor:     false,
		Watch:       false,
	}
}

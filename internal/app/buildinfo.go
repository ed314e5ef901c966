package app

// Build metadata injected via -ldflags by the release build. The defaults
// identify a local development build.
var (
	BuildVersion = "0.0.0-dev"
	BuildCommit  = "unknown"
	BuildDate    = "unknown"
)

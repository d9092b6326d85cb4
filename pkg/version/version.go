package version

// Version is the current version of the server. It's set at build time with
// ldflags.
var Version = "development"

// Package version holds the build version of arbor.
package version

// Version is the current arbor version. Overridden at build time via
// -ldflags "-X github.com/vanderheijden86/arbor/pkg/version.Version=...".
var Version = "dev"

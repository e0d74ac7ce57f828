// Package buildinfo contains build-time metadata separate from user configuration
package buildinfo

// UnknownValue is reported for metadata that was not injected at build time.
const UnknownValue = "unknown"

// Context contains build-time metadata that is not user-configurable.
// It is injected at startup through linker flags.
type Context struct {
	// Version holds the Git version tag from build
	Version string

	// BuildDate is the time when the binary was built
	BuildDate string
}

// GetVersion returns the build version string
func (c *Context) GetVersion() string {
	if c == nil || c.Version == "" {
		return UnknownValue
	}
	return c.Version
}

// GetBuildDate returns the build date string
func (c *Context) GetBuildDate() string {
	if c == nil || c.BuildDate == "" {
		return UnknownValue
	}
	return c.BuildDate
}

// Release returns the release name used to tag telemetry events.
func (c *Context) Release() string {
	return "premigrate@" + c.GetVersion()
}

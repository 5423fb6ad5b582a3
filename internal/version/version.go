// ABOUTME: Version and product identification
// ABOUTME: Printed by -version and shown in the TUI title
package version

// Version is overridden at build time with -ldflags "-X .../internal/version.Version=..."
var Version = "0.1.0"

const (
	Product      = "multiplay"
	Manufacturer = "multiplay-audio"
)

// String returns the product name and version
func String() string {
	return Product + " " + Version
}

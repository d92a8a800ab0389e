package config

// Build information, set with -ldflags "-X .../internal/config.Version=..."
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// VersionString formats the build information for display
func VersionString() string {
	if Commit == "unknown" {
		return Version
	}
	return Version + " (commit " + Commit + ", built " + Date + ")"
}

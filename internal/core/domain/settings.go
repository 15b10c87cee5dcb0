package domain

import "time"

// Settings is the resolved application configuration.
type Settings struct {
	Format      Format
	Frontmatter bool

	// BatchInterval paces sequential batch fetches.
	BatchInterval time.Duration

	// ManifestDir holds extra YAML manifests, empty for none.
	ManifestDir string

	// GitHubToken authenticates the REST fallback, optional.
	GitHubToken string

	// Sessions maps platform keys to stored page snapshots.
	Sessions map[string]Page
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		Format:        FormatFull,
		Frontmatter:   true,
		BatchInterval: 500 * time.Millisecond,
		Sessions:      map[string]Page{},
	}
}

// PlatformInfo describes a registered adapter.
type PlatformInfo struct {
	ID       string
	Name     string
	Platform string
	Version  string

	// Declarative is true for manifest-driven adapters.
	Declarative bool

	// Reliability is the manifest's self-reported reliability, if any.
	Reliability string
}

package core

// RepoConfig is the per-repository .review-warden.yml file.
type RepoConfig struct {
	// Extra instructions appended to the analysis prompt.
	CustomInstructions []string `yaml:"custom_instructions"`

	// Directory names skipped anywhere in a path, e.g. ["dist", "vendor"].
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// File extensions skipped. The leading dot is optional.
	ExcludeExts []string `yaml:"exclude_exts"`
}

// DefaultRepoConfig returns the configuration used when a repository has none.
func DefaultRepoConfig() *RepoConfig {
	return &RepoConfig{
		CustomInstructions: []string{},
		ExcludeDirs:        []string{},
		ExcludeExts:        []string{},
	}
}

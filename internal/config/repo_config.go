package config

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sevigo/review-warden/internal/core"
)

// RepoConfigFile is the per-repository configuration file read from the head ref.
const RepoConfigFile = ".review-warden.yml"

var ErrConfigParsing = errors.New("config parsing failed")

// ParseRepoConfig decodes the contents of a .review-warden.yml file. Empty
// content yields the defaults.
func ParseRepoConfig(content string) (*core.RepoConfig, error) {
	cfg := core.DefaultRepoConfig()
	if strings.TrimSpace(content) == "" {
		return cfg, nil
	}
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigParsing, err)
	}
	for i, ext := range cfg.ExcludeExts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.ExcludeExts[i] = ext
	}
	return cfg, nil
}

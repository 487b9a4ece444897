package config

import (
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	derrors "github.com/timemory/doxsite/internal/errors"
)

// Validate checks the configuration for problems that would surface much later
// as confusing filesystem or tool errors.
func (c *Config) Validate() error {
	if c.Project.Name == "" {
		return derrors.ValidationFailed("project.name", "must not be empty")
	}

	if filepath.IsAbs(c.CMake.BuildDir) {
		return derrors.ValidationFailed("cmake.build_dir", "must be relative to the docs directory")
	}

	for key := range c.Sphinx.SourceSuffix {
		if key == "" || key[0] != '.' {
			return derrors.ValidationFailed("sphinx.source_suffix", "suffix keys must start with a dot: "+key)
		}
	}

	for name, listing := range c.Sphinx.Breathe.ProjectsSource {
		if listing.Dir == "" {
			return derrors.ValidationFailed("sphinx.breathe.projects_source", "project "+name+" has no source dir")
		}
	}

	for _, pattern := range c.Watch.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return derrors.ValidationFailed("watch.ignore", "invalid glob pattern: "+pattern)
		}
	}

	for field, value := range map[string]string{
		"watch.quiet_window": c.Watch.QuietWindow,
		"watch.max_delay":    c.Watch.MaxDelay,
		"daemon.interval":    c.Daemon.Interval,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return derrors.ValidationFailed(field, "invalid duration: "+value)
		}
	}

	if c.Daemon.NATS.Enabled && c.Daemon.NATS.URL == "" {
		return derrors.ValidationFailed("daemon.nats.url", "required when nats is enabled")
	}

	return nil
}

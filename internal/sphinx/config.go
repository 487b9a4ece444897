// Package sphinx models the configuration surface handed to the
// documentation generator and renders it to a conf.py the generator consumes.
package sphinx

import (
	"github.com/timemory/doxsite/internal/config"
)

// SiteConfig is the fully resolved generator configuration for one build.
type SiteConfig struct {
	Project   string
	Copyright string
	Author    string
	// Version is the trimmed contents of the project version file; Release
	// carries the full version including any pre-release tags.
	Version string
	Release string

	Extensions      []string
	SourceSuffix    map[string]string
	TemplatesPath   []string
	MasterDoc       string
	ExcludePatterns []string
	PygmentsStyle   string

	HTMLTheme      string
	HTMLStaticPath []string

	BreatheDefaultProject string
	BreatheProjects       map[string]string
	BreatheProjectsSource map[string]config.SourceListing

	Hooks []Hook
}

// NewSiteConfig resolves the generator configuration from the application
// configuration and the version string read from the version file.
func NewSiteConfig(cfg *config.Config, version string) *SiteConfig {
	s := cfg.Sphinx
	return &SiteConfig{
		Project:   cfg.Project.Name,
		Copyright: cfg.Project.Copyright,
		Author:    cfg.Project.Author,
		Version:   version,
		Release:   version,

		Extensions:      s.Extensions,
		SourceSuffix:    s.SourceSuffix,
		TemplatesPath:   s.TemplatesPath,
		MasterDoc:       s.MasterDoc,
		ExcludePatterns: s.ExcludePatterns,
		PygmentsStyle:   s.PygmentsStyle,

		HTMLTheme:      s.HTMLTheme,
		HTMLStaticPath: s.HTMLStaticPath,

		BreatheDefaultProject: s.Breathe.DefaultProject,
		BreatheProjects:       s.Breathe.Projects,
		BreatheProjectsSource: s.Breathe.ProjectsSource,

		Hooks: []Hook{MarkdownHook(s.Markdown)},
	}
}

package config

// Default configuration values applied after unmarshalling. Values mirror the
// conventional Sphinx/breathe layout for a CMake-driven C++ project.
func (c *Config) applyDefaults() {
	if c.Project.Name == "" {
		c.Project.Name = "project"
	}
	if c.Project.VersionFile == "" {
		c.Project.VersionFile = "VERSION"
	}

	if c.Source.Root == "" {
		c.Source.Root = ".."
	}
	if c.Source.DocsDir == "" {
		c.Source.DocsDir = "."
	}
	if c.Source.ToolsDir == "" {
		c.Source.ToolsDir = "source/tools"
	}

	if c.CMake.BuildDir == "" {
		c.CMake.BuildDir = "build-" + c.Project.Name
	}
	if c.CMake.Target == "" {
		c.CMake.Target = "doc"
	}

	s := &c.Sphinx
	if len(s.Extensions) == 0 {
		s.Extensions = []string{
			"sphinx.ext.autodoc",
			"sphinx.ext.doctest",
			"sphinx.ext.todo",
			"sphinx.ext.viewcode",
			"sphinx.ext.githubpages",
			"sphinx.ext.mathjax",
			"sphinx.ext.autosummary",
			"sphinx.ext.napoleon",
			"sphinx_markdown_tables",
			"recommonmark",
			"breathe",
		}
	}
	if len(s.SourceSuffix) == 0 {
		s.SourceSuffix = map[string]string{
			".rst": "restructuredtext",
			".md":  "markdown",
		}
	}
	if len(s.TemplatesPath) == 0 {
		s.TemplatesPath = []string{"_templates"}
	}
	if s.MasterDoc == "" {
		s.MasterDoc = "index"
	}
	if len(s.ExcludePatterns) == 0 {
		s.ExcludePatterns = []string{"_build", "Thumbs.db", ".DS_Store"}
	}
	if s.HTMLTheme == "" {
		s.HTMLTheme = "sphinx_rtd_theme"
	}
	if len(s.HTMLStaticPath) == 0 {
		s.HTMLStaticPath = []string{"_static"}
	}
	if s.PygmentsStyle == "" {
		s.PygmentsStyle = "sphinx"
	}

	if s.Breathe.DefaultProject == "" {
		s.Breathe.DefaultProject = c.Project.Name
	}
	if len(s.Breathe.Projects) == 0 {
		s.Breathe.Projects = map[string]string{c.Project.Name: "doxygen-xml"}
	}

	if s.Markdown.AutoTocTreeSection == "" {
		s.Markdown.AutoTocTreeSection = "Contents"
	}
	if s.Markdown.EnableEvalRST == nil {
		enabled := true
		s.Markdown.EnableEvalRST = &enabled
	}

	if c.Watch.QuietWindow == "" {
		c.Watch.QuietWindow = "2s"
	}
	if c.Watch.MaxDelay == "" {
		c.Watch.MaxDelay = "30s"
	}
	if len(c.Watch.Ignore) == 0 {
		c.Watch.Ignore = []string{"**/_build/**", "**/doxygen-xml/**", "**/.git/**"}
	}

	if c.Daemon.Interval == "" {
		c.Daemon.Interval = "1h"
	}
	if c.Daemon.Listen == "" {
		c.Daemon.Listen = ":9180"
	}
	if c.Daemon.HistoryDB == "" {
		c.Daemon.HistoryDB = ".doxsite/history.db"
	}
	if c.Daemon.NATS.URL == "" {
		c.Daemon.NATS.URL = "nats://127.0.0.1:4222"
	}
	if c.Daemon.NATS.Subject == "" {
		c.Daemon.NATS.Subject = "doxsite.builds"
	}
}

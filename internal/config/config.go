package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	derrors "github.com/timemory/doxsite/internal/errors"
)

// Config represents the application configuration
type Config struct {
	Project ProjectConfig `yaml:"project"`
	Source  SourceConfig  `yaml:"source"`
	CMake   CMakeConfig   `yaml:"cmake"`
	Sphinx  SphinxConfig  `yaml:"sphinx"`
	Watch   WatchConfig   `yaml:"watch,omitempty"`
	Daemon  DaemonConfig  `yaml:"daemon,omitempty"`
}

// ProjectConfig carries the documentation project metadata surfaced to Sphinx.
type ProjectConfig struct {
	Name        string `yaml:"name"`
	Author      string `yaml:"author,omitempty"`
	Copyright   string `yaml:"copyright,omitempty"`
	VersionFile string `yaml:"version_file,omitempty"` // relative to source root
}

// SourceConfig describes where the documented project lives relative to the docs directory.
type SourceConfig struct {
	Root         string   `yaml:"root,omitempty"`     // repository root, relative to docs dir
	DocsDir      string   `yaml:"docs_dir,omitempty"` // docs dir, relative to cwd
	ToolsDir     string   `yaml:"tools_dir,omitempty"`
	Tools        []string `yaml:"tools,omitempty"`
	PythonReadme string   `yaml:"python_readme,omitempty"`
}

// CMakeConfig controls the documentation-extraction build.
type CMakeConfig struct {
	BuildDir  string            `yaml:"build_dir,omitempty"` // scratch dir, relative to docs dir
	Target    string            `yaml:"target,omitempty"`
	Generator string            `yaml:"generator,omitempty"`
	Defines   map[string]string `yaml:"defines,omitempty"`
	KeepBuild bool              `yaml:"keep_build,omitempty"` // reuse scratch dir across builds
}

// SphinxConfig is the configuration surface handed to the documentation generator.
type SphinxConfig struct {
	Extensions      []string          `yaml:"extensions,omitempty"`
	SourceSuffix    map[string]string `yaml:"source_suffix,omitempty"`
	TemplatesPath   []string          `yaml:"templates_path,omitempty"`
	MasterDoc       string            `yaml:"master_doc,omitempty"`
	ExcludePatterns []string          `yaml:"exclude_patterns,omitempty"`
	HTMLTheme       string            `yaml:"html_theme,omitempty"`
	HTMLStaticPath  []string          `yaml:"html_static_path,omitempty"`
	PygmentsStyle   string            `yaml:"pygments_style,omitempty"`
	Breathe         BreatheConfig     `yaml:"breathe,omitempty"`
	Markdown        MarkdownConfig    `yaml:"markdown,omitempty"`
}

// BreatheConfig maps generated Doxygen XML to named projects for API cross-references.
type BreatheConfig struct {
	DefaultProject string                   `yaml:"default_project,omitempty"`
	Projects       map[string]string        `yaml:"projects,omitempty"`
	ProjectsSource map[string]SourceListing `yaml:"projects_source,omitempty"`
}

// SourceListing names specific source files to index under a breathe source project.
type SourceListing struct {
	Dir   string   `yaml:"dir"`
	Files []string `yaml:"files,omitempty"`
}

// MarkdownConfig configures the Markdown-to-reStructuredText transform.
// EnableEvalRST is a pointer so an explicit false survives defaulting.
type MarkdownConfig struct {
	AutoTocTreeSection string `yaml:"auto_toc_tree_section,omitempty"`
	EnableEvalRST      *bool  `yaml:"enable_eval_rst,omitempty"`
	EnableAutoDocRef   bool   `yaml:"enable_auto_doc_ref"`
}

// EvalRSTEnabled reports whether embedded reStructuredText blocks are accepted.
func (m MarkdownConfig) EvalRSTEnabled() bool {
	return m.EnableEvalRST == nil || *m.EnableEvalRST
}

// WatchConfig controls watch-mode rebuild debouncing.
// Durations are Go duration strings ("2s", "1m30s").
type WatchConfig struct {
	QuietWindow string   `yaml:"quiet_window,omitempty"`
	MaxDelay    string   `yaml:"max_delay,omitempty"`
	Ignore      []string `yaml:"ignore,omitempty"` // doublestar patterns
}

// QuietWindowDuration returns the parsed quiet window. Validate guarantees parseability.
func (w WatchConfig) QuietWindowDuration() time.Duration {
	d, _ := time.ParseDuration(w.QuietWindow)
	return d
}

// MaxDelayDuration returns the parsed max delay. Validate guarantees parseability.
func (w WatchConfig) MaxDelayDuration() time.Duration {
	d, _ := time.ParseDuration(w.MaxDelay)
	return d
}

// DaemonConfig controls daemon-mode scheduling and observability.
type DaemonConfig struct {
	Interval  string     `yaml:"interval,omitempty"`
	Listen    string     `yaml:"listen,omitempty"`
	HistoryDB string     `yaml:"history_db,omitempty"`
	NATS      NATSConfig `yaml:"nats,omitempty"`
}

// IntervalDuration returns the parsed rebuild interval. Validate guarantees parseability.
func (d DaemonConfig) IntervalDuration() time.Duration {
	dur, _ := time.ParseDuration(d.Interval)
	return dur
}

// NATSConfig controls optional build event publishing.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env files if present; existing process env wins.
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				fmt.Fprintf(os.Stderr, "Note: %s couldn't be loaded: %v\n", envPath, err)
			}
			break
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, derrors.ConfigNotFound(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// HostedBuild reports whether the build is running under a hosted
// documentation-build service (Read the Docs convention).
func HostedBuild() bool {
	return os.Getenv("READTHEDOCS") == "True"
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Project: ProjectConfig{
			Name:        "timemory",
			Author:      "Jonathan R. Madsen",
			Copyright:   "2020, The Regents of the University of California",
			VersionFile: "VERSION",
		},
		Source: SourceConfig{
			Root:     "..",
			DocsDir:  ".",
			ToolsDir: "source/tools",
			Tools: []string{
				"timem", "timemory-run", "timemory-mpip", "timemory-ompt",
				"timemory-ncclp", "timemory-avail", "timemory-jump",
				"timemory-stubs", "kokkos-connector",
			},
			PythonReadme: "source/python/README.md",
		},
		CMake: CMakeConfig{
			Target: "doc",
			Defines: map[string]string{
				"TIMEMORY_BUILD_DOCS":       "ON",
				"ENABLE_DOXYGEN_XML_DOCS":   "ON",
				"ENABLE_DOXYGEN_HTML_DOCS":  "ON",
				"ENABLE_DOXYGEN_LATEX_DOCS": "OFF",
				"ENABLE_DOXYGEN_MAN_DOCS":   "OFF",
				"TIMEMORY_BUILD_KOKKOS_TOOLS": "ON",
			},
		},
		Sphinx: SphinxConfig{
			Breathe: BreatheConfig{
				ProjectsSource: map[string]SourceListing{
					"auto": {
						Dir:   "../source",
						Files: []string{"library.cpp", "trace.cpp", "timemory_c.c", "timemory_c.cpp"},
					},
				},
			},
		},
	}
	exampleConfig.applyDefaults()

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

package sphinx

import "github.com/timemory/doxsite/internal/config"

// ConfigValue is a named configuration value a setup hook registers with the
// generator. Rebuild mirrors the generator's "rebuild on change" flag.
type ConfigValue struct {
	Name    string
	Value   any
	Rebuild bool
}

// Transform is a content transform a setup hook registers, identified by its
// class name and the import that provides it.
type Transform struct {
	Name   string
	Import string
}

// Hook is one setup hook: pure registration of config values and transforms,
// no branching logic.
type Hook struct {
	ConfigValues []ConfigValue
	Transforms   []Transform
}

// MarkdownHook builds the setup hook configuring the Markdown-to-reST bridge:
// one config value with the transform options and the auto-structure transform.
func MarkdownHook(md config.MarkdownConfig) Hook {
	return Hook{
		ConfigValues: []ConfigValue{
			{
				Name: "recommonmark_config",
				Value: map[string]any{
					"auto_toc_tree_section": md.AutoTocTreeSection,
					"enable_eval_rst":       md.EvalRSTEnabled(),
					"enable_auto_doc_ref":   md.EnableAutoDocRef,
				},
				Rebuild: true,
			},
		},
		Transforms: []Transform{
			{Name: "AutoStructify", Import: "from recommonmark.transform import AutoStructify"},
		},
	}
}

package sphinx

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	derrors "github.com/timemory/doxsite/internal/errors"
)

// WriteConf renders the site configuration to conf.py inside the docs
// directory. Output is deterministic: map-valued options are emitted with
// sorted keys.
func WriteConf(sc *SiteConfig, docsDir string) error {
	path := filepath.Join(docsDir, "conf.py")
	if err := os.WriteFile(path, []byte(Render(sc)), 0o644); err != nil {
		return derrors.SphinxConfigError(err)
	}
	return nil
}

// Render produces the conf.py contents for the site configuration.
func Render(sc *SiteConfig) string {
	var b strings.Builder

	b.WriteString("# Configuration file for the Sphinx documentation builder.\n")
	b.WriteString("# Generated by doxsite; edits are overwritten on the next build.\n\n")

	for _, hook := range sc.Hooks {
		for _, tr := range hook.Transforms {
			b.WriteString(tr.Import + "\n")
		}
	}
	b.WriteString("\n")

	b.WriteString("# -- Project information -----------------------------------------------------\n")
	fmt.Fprintf(&b, "project = %s\n", pyString(sc.Project))
	fmt.Fprintf(&b, "copyright = %s\n", pyString(sc.Copyright))
	fmt.Fprintf(&b, "author = %s\n", pyString(sc.Author))
	fmt.Fprintf(&b, "version = %s\n", pyString(sc.Version))
	fmt.Fprintf(&b, "release = %s\n", pyString(sc.Release))
	b.WriteString("\n")

	b.WriteString("# -- General configuration ---------------------------------------------------\n")
	fmt.Fprintf(&b, "extensions = %s\n", pyStringList(sc.Extensions))
	fmt.Fprintf(&b, "source_suffix = %s\n", pyStringMap(sc.SourceSuffix))
	fmt.Fprintf(&b, "templates_path = %s\n", pyStringList(sc.TemplatesPath))
	fmt.Fprintf(&b, "master_doc = %s\n", pyString(sc.MasterDoc))
	fmt.Fprintf(&b, "exclude_patterns = %s\n", pyStringList(sc.ExcludePatterns))
	b.WriteString("default_role = None\n")
	fmt.Fprintf(&b, "pygments_style = %s\n", pyString(sc.PygmentsStyle))
	b.WriteString("\n")

	b.WriteString("# -- Options for HTML output -------------------------------------------------\n")
	fmt.Fprintf(&b, "html_theme = %s\n", pyString(sc.HTMLTheme))
	fmt.Fprintf(&b, "html_static_path = %s\n", pyStringList(sc.HTMLStaticPath))
	b.WriteString("\n")

	b.WriteString("# Breathe configuration\n")
	fmt.Fprintf(&b, "breathe_projects = %s\n", pyStringMap(sc.BreatheProjects))
	fmt.Fprintf(&b, "breathe_default_project = %s\n", pyString(sc.BreatheDefaultProject))
	if len(sc.BreatheProjectsSource) > 0 {
		b.WriteString("breathe_projects_source = {\n")
		names := make([]string, 0, len(sc.BreatheProjectsSource))
		for name := range sc.BreatheProjectsSource {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			listing := sc.BreatheProjectsSource[name]
			fmt.Fprintf(&b, "    %s: (%s, %s),\n",
				pyString(name), pyString(listing.Dir), pyStringList(listing.Files))
		}
		b.WriteString("}\n")
	}
	b.WriteString("\n")

	b.WriteString("\n# app setup hook\ndef setup(app):\n")
	wroteHookBody := false
	for _, hook := range sc.Hooks {
		for _, cv := range hook.ConfigValues {
			fmt.Fprintf(&b, "    app.add_config_value(%s, %s, %s)\n",
				pyString(cv.Name), pyValue(cv.Value), pyBool(cv.Rebuild))
			wroteHookBody = true
		}
		for _, tr := range hook.Transforms {
			fmt.Fprintf(&b, "    app.add_transform(%s)\n", tr.Name)
			wroteHookBody = true
		}
	}
	if !wroteHookBody {
		b.WriteString("    pass\n")
	}

	return b.String()
}

func pyString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "\\'") + "'"
}

func pyBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

func pyStringList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = pyString(item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func pyStringMap(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = pyString(k) + ": " + pyString(m[k])
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

// pyValue renders a configuration value as a Python literal. Map values are
// emitted with sorted keys.
func pyValue(v any) string {
	switch val := v.(type) {
	case string:
		return pyString(val)
	case bool:
		return pyBool(val)
	case int:
		return fmt.Sprintf("%d", val)
	case []string:
		return pyStringList(val)
	case map[string]string:
		return pyStringMap(val)
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = pyString(k) + ": " + pyValue(val[k])
		}
		return "{" + strings.Join(pairs, ", ") + "}"
	case nil:
		return "None"
	default:
		return pyString(fmt.Sprintf("%v", val))
	}
}

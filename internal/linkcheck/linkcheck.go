// Package linkcheck scans staged HTML and docs-tree Markdown for local links
// whose targets do not exist on disk. Findings are warnings; generated API
// docs occasionally carry dangling anchors and that must not fail a build.
package linkcheck

import (
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/timemory/doxsite/internal/markdown"
)

// Finding names one dangling local link.
type Finding struct {
	File   string // HTML file containing the link, relative to the scanned root
	Target string // the link target as written
}

// CheckTree walks an HTML tree and verifies every local href/src resolves to
// an existing file within it. External links and pure fragments are skipped.
func CheckTree(root string) ([]Finding, error) {
	var findings []Finding

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		refs, err := extractRefs(path)
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		for _, ref := range refs {
			if !isLocal(ref) {
				continue
			}
			if _, err := os.Stat(localTarget(filepath.Dir(path), ref)); err != nil {
				findings = append(findings, Finding{File: rel, Target: ref})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return findings, nil
}

// CheckMarkdownTree walks a docs tree and verifies every local Markdown link
// resolves. Entries listed under the auto-toctree section may omit the source
// suffix, so those are also tried with the suffixes the generator accepts.
// Staged generator output under the tree is not scanned.
func CheckMarkdownTree(root, tocSection string) ([]Finding, error) {
	var findings []Finding

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			switch d.Name() {
			case "_build", "doxygen-xml", ".git":
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".md") {
			return nil
		}

		body, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		tocEntries := make(map[string]bool)
		for _, entry := range markdown.TocEntries(body, tocSection) {
			tocEntries[entry] = true
		}

		for _, link := range markdown.ExtractLinks(body) {
			ref := link.Destination
			if !isLocal(ref) {
				continue
			}
			if resolvesMarkdown(filepath.Dir(path), ref, tocEntries[ref]) {
				continue
			}
			findings = append(findings, Finding{File: rel, Target: ref})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return findings, nil
}

// resolvesMarkdown reports whether ref names an existing file relative to
// dir. Toctree entries are document references, not necessarily file paths,
// so bare entries are retried with the known source suffixes.
func resolvesMarkdown(dir, ref string, tocEntry bool) bool {
	target := localTarget(dir, ref)
	if _, err := os.Stat(target); err == nil {
		return true
	}
	if !tocEntry {
		return false
	}
	for _, suffix := range []string{".md", ".rst"} {
		if _, err := os.Stat(target + suffix); err == nil {
			return true
		}
	}
	return false
}

// localTarget resolves a link reference against the directory of the file
// containing it. Percent-escapes are decoded so targets with spaces or
// similar characters are found on disk.
func localTarget(dir, ref string) string {
	target := stripFragment(ref)
	if decoded, err := url.PathUnescape(target); err == nil {
		target = decoded
	}
	return filepath.Join(dir, filepath.FromSlash(target))
}

// extractRefs parses one HTML file and collects href/src attribute values.
func extractRefs(path string) ([]string, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return extractRefsFromReader(file)
}

func extractRefsFromReader(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var refs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a", "link":
				if v := attr(n, "href"); v != "" {
					refs = append(refs, v)
				}
			case "img", "script":
				if v := attr(n, "src"); v != "" {
					refs = append(refs, v)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return refs, nil
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// isLocal reports whether ref points into the scanned tree: not an absolute
// URL, not protocol-relative, not a bare fragment.
func isLocal(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") {
		return false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == "" && u.Path != ""
}

func stripFragment(ref string) string {
	if i := strings.IndexByte(ref, '#'); i >= 0 {
		return ref[:i]
	}
	return ref
}

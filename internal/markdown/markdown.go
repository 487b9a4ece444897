// Package markdown analyzes Markdown pages the way the documentation
// generator's auto-structure transform does: it extracts the document
// outline, resolves the auto-toctree section, and detects embedded
// reStructuredText blocks.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Heading is one entry of a document outline.
type Heading struct {
	Level int
	Text  string
}

// Link is a link-like construct found in a Markdown body.
type Link struct {
	Text        string
	Destination string
}

// Parse parses a Markdown body into a Goldmark AST.
func Parse(body []byte) gmast.Node {
	md := goldmark.New()
	return md.Parser().Parse(text.NewReader(body))
}

// Outline returns all headings of a Markdown body in document order.
func Outline(body []byte) []Heading {
	root := Parse(body)
	headings := make([]Heading, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if h, ok := n.(*gmast.Heading); ok {
			headings = append(headings, Heading{Level: h.Level, Text: nodeText(h, body)})
		}
		return gmast.WalkContinue, nil
	})
	return headings
}

// TocEntries returns the link destinations listed under the heading whose
// text equals section. This mirrors the generator's auto-toctree behavior:
// only the list immediately belonging to that section is considered, and
// scanning stops at the next heading of the same or higher level.
func TocEntries(body []byte, section string) []string {
	root := Parse(body)

	entries := make([]string, 0)
	sectionLevel := 0
	inSection := false

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *gmast.Heading:
			if inSection && node.Level <= sectionLevel {
				return entries
			}
			if nodeText(node, body) == section {
				inSection = true
				sectionLevel = node.Level
			}
		case *gmast.List:
			if inSection {
				entries = append(entries, listLinks(node, body)...)
			}
		}
	}
	return entries
}

// HasEvalRST reports whether the body contains a fenced eval_rst block,
// i.e. embedded reStructuredText the generator must be configured to accept.
func HasEvalRST(body []byte) bool {
	root := Parse(body)
	found := false
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if fc, ok := n.(*gmast.FencedCodeBlock); ok {
			if bytes.Equal(fc.Language(body), []byte("eval_rst")) {
				found = true
				return gmast.WalkStop, nil
			}
		}
		return gmast.WalkContinue, nil
	})
	return found
}

// ExtractLinks parses a Markdown body and extracts link-like constructs.
//
// This is an analysis API; it does not attempt to re-render Markdown.
func ExtractLinks(body []byte) []Link {
	root := Parse(body)
	links := make([]Link, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.AutoLink:
			links = append(links, Link{Destination: string(node.URL(body))})
		case *gmast.Image:
			links = append(links, Link{Destination: string(node.Destination)})
		case *gmast.Link:
			links = append(links, Link{Text: nodeText(node, body), Destination: string(node.Destination)})
		}
		return gmast.WalkContinue, nil
	})
	return links
}

// listLinks collects the destinations of links inside a list node.
func listLinks(list *gmast.List, body []byte) []string {
	dests := make([]string, 0)
	_ = gmast.Walk(list, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if l, ok := n.(*gmast.Link); ok {
			dests = append(dests, string(l.Destination))
		}
		return gmast.WalkContinue, nil
	})
	return dests
}

// nodeText concatenates the raw text segments below a node.
func nodeText(n gmast.Node, body []byte) string {
	var buf bytes.Buffer
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if t, ok := c.(*gmast.Text); ok {
			buf.Write(t.Segment.Value(body))
		}
		return gmast.WalkContinue, nil
	})
	return buf.String()
}

package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"
)

// Section is one header-delimited region of a markdown document.
type Section struct {
	HeaderPath string // hierarchy, e.g. "# Flu > ## Prevention"
	Content    string // section text including its heading line
}

// MarkdownSplitter splits markdown documents at H1/H2 boundaries so each
// indexed piece carries its header hierarchy as retrieval context.
type MarkdownSplitter struct {
	parser goldmark.Markdown
}

// NewMarkdownSplitter creates a splitter with a goldmark parser configured
// for auto heading IDs.
func NewMarkdownSplitter() *MarkdownSplitter {
	md := goldmark.New(
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
	return &MarkdownSplitter{parser: md}
}

// Split divides the source at H1 and H2 headings. A document without
// headings comes back as a single untitled section.
func (s *MarkdownSplitter) Split(source []byte) ([]Section, error) {
	reader := text.NewReader(source)
	doc := s.parser.Parser().Parse(reader)

	tree, err := toc.Inspect(doc, source,
		toc.MinDepth(1),
		toc.MaxDepth(2),
		toc.Compact(true),
	)
	if err != nil {
		return nil, fmt.Errorf("inspect TOC: %w", err)
	}

	if len(tree.Items) == 0 {
		return []Section{{HeaderPath: "", Content: strings.TrimSpace(string(source))}}, nil
	}

	var sections []Section
	s.extract(doc, source, tree.Items, nil, &sections)
	return sections, nil
}

func (s *MarkdownSplitter) extract(doc ast.Node, source []byte, items toc.Items, ancestors []string, sections *[]Section) {
	for i, item := range items {
		currentPath := append(ancestors, string(item.Title))

		headerNode := findHeaderByID(doc, string(item.ID))
		if headerNode == nil {
			continue
		}

		startLine := headerNode.Lines().At(0)
		var endLine text.Segment
		if i+1 < len(items) {
			if next := findHeaderByID(doc, string(items[i+1].ID)); next != nil {
				endLine = next.Lines().At(0)
			}
		} else {
			endLine = nextHeaderBoundary(doc, headerNode, headerNode.(*ast.Heading).Level)
		}

		*sections = append(*sections, Section{
			HeaderPath: formatHeaderPath(currentPath),
			Content:    sliceContent(source, startLine, endLine),
		})

		if len(item.Items) > 0 {
			s.extract(doc, source, item.Items, currentPath, sections)
		}
	}
}

// formatHeaderPath renders ["Flu", "Prevention"] as "# Flu > ## Prevention".
func formatHeaderPath(path []string) string {
	if len(path) == 0 {
		return ""
	}
	parts := make([]string, len(path))
	for i, segment := range path {
		parts[i] = fmt.Sprintf("%s %s", strings.Repeat("#", i+1), segment)
	}
	return strings.Join(parts, " > ")
}

func findHeaderByID(node ast.Node, id string) ast.Node {
	var found ast.Node
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == ast.KindHeading {
			headingID, ok := n.(*ast.Heading).AttributeString("id")
			if ok && string(headingID.([]byte)) == id {
				found = n
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})
	return found
}

// nextHeaderBoundary finds the first heading after current at the same or a
// higher level. A zero segment means the section runs to EOF.
func nextHeaderBoundary(root ast.Node, current ast.Node, currentLevel int) text.Segment {
	var next ast.Node
	foundCurrent := false

	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if n.Kind() == ast.KindHeading {
			if !foundCurrent {
				if n == current {
					foundCurrent = true
				}
				return ast.WalkContinue, nil
			}
			if n.(*ast.Heading).Level <= currentLevel {
				next = n
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})

	if next != nil {
		return next.Lines().At(0)
	}
	return text.Segment{}
}

func sliceContent(source []byte, start, end text.Segment) string {
	var buf bytes.Buffer
	if end.Start == 0 && end.Stop == 0 {
		buf.Write(source[start.Start:])
	} else {
		buf.Write(source[start.Start:end.Start])
	}
	return strings.TrimSpace(buf.String())
}

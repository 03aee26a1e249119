package ingest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vietcare/health-rag/internal/document"
)

// LoadDir reads every .txt and .md file under dir into documents. Markdown
// files are split at H1/H2 headings so each section indexes independently;
// plain text files load whole. The source identifier is the path relative to
// dir, with the section title appended for markdown sections.
func LoadDir(dir string) ([]document.Document, error) {
	splitter := NewMarkdownSplitter()

	var docs []document.Document
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".txt" && ext != ".md" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}

		loaded, err := fileDocuments(rel, ext, data, splitter)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		docs = append(docs, loaded...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return docs, nil
}

func fileDocuments(rel, ext string, data []byte, splitter *MarkdownSplitter) ([]document.Document, error) {
	if ext != ".md" {
		content := strings.TrimSpace(string(data))
		if content == "" {
			return nil, nil
		}
		doc, err := document.New(content, document.Metadata{Source: rel, Type: "text"})
		if err != nil {
			return nil, err
		}
		return []document.Document{doc}, nil
	}

	sections, err := splitter.Split(data)
	if err != nil {
		return nil, err
	}
	var docs []document.Document
	for _, section := range sections {
		if section.Content == "" {
			continue
		}
		doc, err := document.New(section.Content, document.Metadata{
			Source: rel,
			Type:   "markdown",
			Title:  section.HeaderPath,
		})
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

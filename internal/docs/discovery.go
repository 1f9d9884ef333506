package docs

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/inful/mdfigure/internal/logfields"
)

// DocFile represents a discovered markdown document
type DocFile struct {
	Path         string // Absolute path to the file
	RelativePath string // Slash-separated path relative to the source directory, NFC form
	Section      string // Containing directory relative to the source root, "" at the root
	Name         string // File name without extension
	Extension    string // File extension
	Content      []byte // File content (loaded on demand)
}

// Discover finds all markdown files under sourceDir. Hidden files and hidden
// directories are skipped. The result is sorted by relative path, so two
// discoveries over the same tree yield the same order.
func Discover(sourceDir string) ([]DocFile, error) {
	root, err := filepath.Abs(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("resolve source directory: %w", err)
	}
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("source directory not usable: %w", err)
	}

	var files []DocFile
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(info.Name(), ".") {
			return nil
		}
		if !isMarkdownFile(path) {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", path, err)
		}
		// macOS volumes report decomposed names; store NFC so the same tree
		// produces identical paths everywhere.
		relPath = norm.NFC.String(filepath.ToSlash(relPath))

		section := ""
		if dir := filepath.Dir(relPath); dir != "." {
			section = dir
		}

		files = append(files, DocFile{
			Path:         path,
			RelativePath: relPath,
			Section:      section,
			Name:         strings.TrimSuffix(info.Name(), filepath.Ext(info.Name())),
			Extension:    filepath.Ext(info.Name()),
		})

		slog.Debug("Discovered file", logfields.Doc(relPath))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk source directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].RelativePath < files[j].RelativePath
	})

	slog.Debug("Documentation discovered", logfields.Source(sourceDir), logfields.Docs(len(files)))
	return files, nil
}

// LoadContent loads the content of a documentation file
func (df *DocFile) LoadContent() error {
	if df.Content != nil {
		return nil // Already loaded
	}

	content, err := os.ReadFile(df.Path)
	if err != nil {
		return fmt.Errorf("read %s: %w", df.Path, err)
	}

	df.Content = content
	return nil
}

// OutputPath returns the relative path the rendered HTML is written to.
func (df *DocFile) OutputPath() string {
	return strings.TrimSuffix(df.RelativePath, df.Extension) + ".html"
}

// isMarkdownFile checks if a file is a markdown file
func isMarkdownFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".md" || ext == ".markdown" || ext == ".mdown" || ext == ".mkd"
}

// Package loader reads files from disk and prepares them for indexing.
// Markdown formatting is simplified to plain text before segmentation;
// code and plain text pass through with normalised line endings.
package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/lumenchat/lumen/internal/core/domain"
)

// Format tags assigned by file extension.
const (
	FormatMarkdown = "markdown"
	FormatText     = "text"
	FormatCode     = "code"
)

// codeLanguages maps file extensions to language tags.
var codeLanguages = map[string]string{
	".go":   "go",
	".py":   "python",
	".js":   "javascript",
	".ts":   "typescript",
	".rs":   "rust",
	".java": "java",
	".c":    "c",
	".h":    "c",
	".cpp":  "cpp",
	".rb":   "ruby",
	".sh":   "shell",
	".sql":  "sql",
}

// DefaultExtensions are the file types indexed when no filter is configured.
func DefaultExtensions() []string {
	exts := []string{".md", ".markdown", ".txt"}
	for ext := range codeLanguages {
		exts = append(exts, ext)
	}
	return exts
}

// Load reads one file into a SourceDocument.
func Load(path string) (domain.SourceDocument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.SourceDocument{}, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return domain.SourceDocument{}, fmt.Errorf("reading %s: %w", path, err)
	}

	content := normaliseLineEndings(string(raw))
	format := FormatTag(path)
	if format == FormatMarkdown {
		content = stripMarkdown(content)
	}

	return domain.SourceDocument{
		Path:      path,
		Name:      filepath.Base(path),
		Content:   content,
		FormatTag: format,
		Language:  Language(path),
	}, nil
}

// LoadDir walks a directory tree and loads every file matching the
// extension filter (empty = DefaultExtensions). Unreadable files are
// skipped; the walk itself failing is an error.
func LoadDir(root string, extensions []string) ([]domain.SourceDocument, error) {
	if len(extensions) == 0 {
		extensions = DefaultExtensions()
	}

	var docs []domain.SourceDocument
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !matchExtension(path, extensions) {
			return nil
		}

		doc, err := Load(path)
		if err != nil {
			return nil // unreadable file, skip
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	return docs, nil
}

// FormatTag classifies a file by extension.
func FormatTag(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".md" || ext == ".markdown":
		return FormatMarkdown
	case codeLanguages[ext] != "":
		return FormatCode
	default:
		return FormatText
	}
}

// Language returns the language tag for code files, or "" otherwise.
func Language(path string) string {
	return codeLanguages[strings.ToLower(filepath.Ext(path))]
}

func matchExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

func normaliseLineEndings(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.ReplaceAll(content, "\r", "\n")
}

var (
	codeBlockPattern  = regexp.MustCompile("(?s)```[^`]*```")
	inlineCodePattern = regexp.MustCompile("`[^`]+`")
	imagePattern      = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	linkPattern       = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headingPattern    = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	blockquotePattern = regexp.MustCompile(`(?m)^>\s*`)
	hrPattern         = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
)

// stripMarkdown removes common markdown formatting so only prose is
// embedded. Code blocks are dropped entirely; links keep their text.
func stripMarkdown(content string) string {
	content = codeBlockPattern.ReplaceAllString(content, "")
	content = inlineCodePattern.ReplaceAllString(content, "")
	content = imagePattern.ReplaceAllString(content, "")
	content = linkPattern.ReplaceAllString(content, "$1")
	content = headingPattern.ReplaceAllString(content, "")
	content = blockquotePattern.ReplaceAllString(content, "")
	content = hrPattern.ReplaceAllString(content, "")

	content = strings.ReplaceAll(content, "**", "")
	content = strings.ReplaceAll(content, "__", "")
	content = strings.ReplaceAll(content, "*", "")

	return strings.TrimSpace(content)
}

package loader

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFormatTag(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"notes.md", FormatMarkdown},
		{"NOTES.MD", FormatMarkdown},
		{"readme.markdown", FormatMarkdown},
		{"plain.txt", FormatText},
		{"no-extension", FormatText},
		{"main.go", FormatCode},
		{"script.py", FormatCode},
	}
	for _, tc := range cases {
		if got := FormatTag(tc.path); got != tc.want {
			t.Errorf("FormatTag(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestLanguage(t *testing.T) {
	if got := Language("main.go"); got != "go" {
		t.Errorf("Language(main.go) = %q, want go", got)
	}
	if got := Language("notes.md"); got != "" {
		t.Errorf("Language(notes.md) = %q, want empty", got)
	}
}

func TestLoad_Markdown(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.md", "# Title\n\nSome **bold** prose with a [link](https://x.test).\n\n```go\ncode here\n```\n")

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if doc.FormatTag != FormatMarkdown {
		t.Errorf("format = %q, want markdown", doc.FormatTag)
	}
	if doc.Name != "doc.md" {
		t.Errorf("name = %q", doc.Name)
	}

	want := "Title\n\nSome bold prose with a link."
	if doc.Content != want {
		t.Errorf("content = %q, want %q", doc.Content, want)
	}
}

func TestLoad_CodeKeepsContent(t *testing.T) {
	dir := t.TempDir()
	src := "package main\n\nfunc main() {}\n"
	path := writeFile(t, dir, "main.go", src)

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Content != src {
		t.Errorf("code content changed: %q", doc.Content)
	}
	if doc.Language != "go" {
		t.Errorf("language = %q, want go", doc.Language)
	}
}

func TestLoad_NormalisesLineEndings(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "crlf.txt", "line one\r\nline two\r\n")

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Content != "line one\nline two\n" {
		t.Errorf("content = %q", doc.Content)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "# A")
	writeFile(t, dir, "nested/b.txt", "b")
	writeFile(t, dir, "skip.bin", "binary")
	writeFile(t, dir, ".hidden/c.md", "# hidden")

	docs, err := LoadDir(dir, nil)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d docs, want 2", len(docs))
	}

	names := map[string]bool{}
	for _, doc := range docs {
		names[doc.Name] = true
	}
	if !names["a.md"] || !names["b.txt"] {
		t.Errorf("unexpected docs: %v", names)
	}
}

func TestLoadDir_ExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "# A")
	writeFile(t, dir, "b.txt", "b")

	docs, err := LoadDir(dir, []string{".md"})
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(docs) != 1 || docs[0].Name != "a.md" {
		t.Fatalf("got %v", docs)
	}
}

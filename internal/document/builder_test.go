package document_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ledongthuc/pdf"

	"github.com/temirov/repo2doc/internal/collector"
	"github.com/temirov/repo2doc/internal/config"
	"github.com/temirov/repo2doc/internal/document"
	"github.com/temirov/repo2doc/internal/pathfilter"
	"github.com/temirov/repo2doc/internal/reader"
	"github.com/temirov/repo2doc/internal/tree"
	"github.com/temirov/repo2doc/internal/types"
	"github.com/temirov/repo2doc/internal/utils"
)

type recordingSink struct {
	title      string
	structure  string
	sections   []types.RenderedFileSection
	closed     bool
	writeError error
}

func (sink *recordingSink) WriteTitle(repositoryName string) error {
	sink.title = repositoryName
	return nil
}

func (sink *recordingSink) WriteStructure(structureTree string) error {
	sink.structure = structureTree
	return nil
}

func (sink *recordingSink) WriteFile(section types.RenderedFileSection) error {
	if sink.writeError != nil {
		return sink.writeError
	}
	sink.sections = append(sink.sections, section)
	return nil
}

func (sink *recordingSink) Close() error {
	sink.closed = true
	return nil
}

type fixedStructure string

func (structure fixedStructure) Render(string) (string, error) {
	return string(structure), nil
}

type prefixFormatter struct {
	calls atomic.Int32
	panic bool
}

func (formatter *prefixFormatter) Format(_ context.Context, content string, extension string) string {
	formatter.calls.Add(1)
	if formatter.panic {
		panic("formatter crashed")
	}
	return "FORMATTED" + extension + ":" + content
}

func writeRepository(t *testing.T, root string, files map[string][]byte) []types.FileEntry {
	t.Helper()
	var entries []types.FileEntry
	for relativePath, data := range files {
		fullPath := filepath.Join(root, filepath.FromSlash(relativePath))
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(fullPath, data, 0o600); err != nil {
			t.Fatalf("write %s: %v", relativePath, err)
		}
		entries = append(entries, types.FileEntry{AbsolutePath: fullPath, RelativePath: relativePath})
	}
	return entries
}

func newBuilder(formatter document.ContentFormatter, batchSize int) *document.Builder {
	return &document.Builder{
		Reader:    reader.Reader{MaxSizeBytes: utils.BytesPerMegabyte, ChunkSizeBytes: 64},
		Formatter: formatter,
		Structure: fixedStructure("repo/"),
		Options:   document.Options{BatchSize: batchSize, MaxConcurrentTasks: 3, WrapWidth: 80},
	}
}

func TestBuildProcessesBatchesInOrder(t *testing.T) {
	root := filepath.Join(t.TempDir(), "repo")
	names := []string{"a.txt", "b.txt", "c.txt", "d.txt", "e.txt"}
	var entries []types.FileEntry
	for _, name := range names {
		entries = append(entries, writeRepository(t, root, map[string][]byte{name: []byte("content of " + name)})...)
	}

	builder := newBuilder(&prefixFormatter{}, 2)
	var batchSizes []int
	builder.Observer = func(batchIndex int, batchSize int) {
		if batchIndex != len(batchSizes) {
			t.Errorf("unexpected batch index %d", batchIndex)
		}
		batchSizes = append(batchSizes, batchSize)
	}
	sink := &recordingSink{}
	if err := builder.Build(context.Background(), root, entries, sink); err != nil {
		t.Fatalf("Build error: %v", err)
	}

	if len(batchSizes) != 3 || batchSizes[0] != 2 || batchSizes[1] != 2 || batchSizes[2] != 1 {
		t.Fatalf("expected batches [2 2 1], got %v", batchSizes)
	}
	if sink.title != "repo" || sink.structure != "repo/" || !sink.closed {
		t.Fatalf("unexpected header or close state: %+v", sink)
	}
	for index, section := range sink.sections {
		if section.RelativePath != names[index] {
			t.Errorf("position %d: expected %s, got %s", index, names[index], section.RelativePath)
		}
		if section.Content != "FORMATTED.txt:content of "+names[index] {
			t.Errorf("position %d: unexpected content %q", index, section.Content)
		}
	}
}

func TestBuildPlaceholders(t *testing.T) {
	root := filepath.Join(t.TempDir(), "repo")
	entries := writeRepository(t, root, map[string][]byte{
		"web/node_modules/pkg/index.js": []byte("module.exports = {}"),
		"big.txt":                       make([]byte, 2*utils.BytesPerMegabyte),
		"blob.bin":                      {0xff, 0xfe, 0x00},
		"distance.py":                   []byte("x = 1"),
	})
	formatter := &prefixFormatter{}
	sink := &recordingSink{}
	if err := newBuilder(formatter, 10).Build(context.Background(), root, entries, sink); err != nil {
		t.Fatalf("Build error: %v", err)
	}

	expected := map[string]string{
		"web/node_modules/pkg/index.js": types.PlaceholderDirectorySkipped,
		"big.txt":                       "[File too large to process: 2.0MB]",
		"blob.bin":                      types.PlaceholderBinaryContent,
		"distance.py":                   "FORMATTED.py:x = 1",
	}
	if len(sink.sections) != len(expected) {
		t.Fatalf("expected %d sections, got %d", len(expected), len(sink.sections))
	}
	for _, section := range sink.sections {
		if section.Content != expected[section.RelativePath] {
			t.Errorf("%s: expected %q, got %q", section.RelativePath, expected[section.RelativePath], section.Content)
		}
	}
	if calls := formatter.calls.Load(); calls != 1 {
		t.Fatalf("expected placeholders to bypass the formatter, got %d calls", calls)
	}
}

func TestBuildRecoversFromFormatterPanic(t *testing.T) {
	root := filepath.Join(t.TempDir(), "repo")
	entries := writeRepository(t, root, map[string][]byte{"main.go": []byte("package main")})
	sink := &recordingSink{}
	if err := newBuilder(&prefixFormatter{panic: true}, 10).Build(context.Background(), root, entries, sink); err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if len(sink.sections) != 1 || sink.sections[0].Content != "[Error processing file: formatter crashed]" {
		t.Fatalf("unexpected sections %+v", sink.sections)
	}
}

func TestBuildStopsOnSinkError(t *testing.T) {
	root := filepath.Join(t.TempDir(), "repo")
	entries := writeRepository(t, root, map[string][]byte{"a.txt": []byte("a")})
	sinkFailure := errors.New("disk full")
	sink := &recordingSink{writeError: sinkFailure}
	err := newBuilder(&prefixFormatter{}, 10).Build(context.Background(), root, entries, sink)
	if !errors.Is(err, sinkFailure) {
		t.Fatalf("expected sink error, got %v", err)
	}
	if !sink.closed {
		t.Fatalf("expected sink to be closed after a failure")
	}
}

func TestBuildHonorsCancellation(t *testing.T) {
	root := filepath.Join(t.TempDir(), "repo")
	entries := writeRepository(t, root, map[string][]byte{"a.txt": []byte("a")})
	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()
	err := newBuilder(&prefixFormatter{}, 10).Build(cancelledContext, root, entries, &recordingSink{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBuildTextDocumentExcludesVersionControl(t *testing.T) {
	root := filepath.Join(t.TempDir(), "sample_repo")
	writeRepository(t, root, map[string][]byte{
		"main.py":     []byte("print('hi')\n"),
		".git/config": []byte("[core]\n"),
	})
	filter := pathfilter.New(config.DefaultExcludePatterns())
	entries, err := collector.NewCollector(filter, nil).Collect(context.Background(), root)
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}

	builder := newBuilder(&prefixFormatter{}, 10)
	builder.Structure = tree.NewRenderer(filter, nil)
	outputPath := filepath.Join(t.TempDir(), "sample_repo"+types.ArtifactSuffixTXT)
	sink, err := document.NewTXTSink(outputPath)
	if err != nil {
		t.Fatalf("NewTXTSink error: %v", err)
	}
	if err := builder.Build(context.Background(), root, entries, sink); err != nil {
		t.Fatalf("Build error: %v", err)
	}

	written, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	expected := "sample_repo\n\n" +
		"Repository Structure\n===================\n\n" +
		"sample_repo/\n+-- main.py\n\n" +
		"\nFile: main.py\n=============\n\n" +
		"FORMATTED.py:print('hi')\n\n\n"
	if string(written) != expected {
		t.Fatalf("unexpected text document:\n%q\nexpected:\n%q", string(written), expected)
	}
}

func TestBuildPDFDocument(t *testing.T) {
	root := filepath.Join(t.TempDir(), "pdf_repo")
	entries := writeRepository(t, root, map[string][]byte{
		"main.py":   []byte("print('hi')\n"),
		"README.md": []byte("# Title\n"),
		"util.go":   []byte("package util\n"),
	})
	outputPath := filepath.Join(t.TempDir(), "pdf_repo"+types.ArtifactSuffixPDF)
	builder := newBuilder(&prefixFormatter{}, 2)
	if err := builder.Build(context.Background(), root, entries, document.NewPDFSink(outputPath, 80)); err != nil {
		t.Fatalf("Build error: %v", err)
	}

	fileHandle, pdfReader, err := pdf.Open(outputPath)
	if err != nil {
		t.Fatalf("open pdf: %v", err)
	}
	defer fileHandle.Close()
	if pageCount := pdfReader.NumPage(); pageCount != 2+len(entries) {
		t.Fatalf("expected %d pages, got %d", 2+len(entries), pageCount)
	}
	plainText, err := pdfReader.GetPlainText()
	if err != nil {
		t.Fatalf("extract text: %v", err)
	}
	var extracted strings.Builder
	if _, err := io.Copy(&extracted, plainText); err != nil {
		t.Fatalf("read text: %v", err)
	}
	compacted := strings.Join(strings.Fields(extracted.String()), "")
	if !strings.Contains(compacted, "RepositoryStructure") {
		t.Fatalf("expected structure heading in extracted text, got %q", compacted)
	}
}

type lookAheadSink struct {
	recordingSink
	formatter *prefixFormatter
	maxAhead  int
}

func (sink *lookAheadSink) WriteFile(section types.RenderedFileSection) error {
	ahead := int(sink.formatter.calls.Load()) - len(sink.sections)
	sink.maxAhead = max(sink.maxAhead, ahead)
	return sink.recordingSink.WriteFile(section)
}

func TestBuildStreamsSectionsWithBoundedLookAhead(t *testing.T) {
	root := filepath.Join(t.TempDir(), "repo")
	var entries []types.FileEntry
	var names []string
	for index := range 12 {
		name := string(rune('a'+index)) + ".txt"
		names = append(names, name)
		entries = append(entries, writeRepository(t, root, map[string][]byte{name: []byte(name)})...)
	}

	formatter := &prefixFormatter{}
	builder := newBuilder(formatter, 100)
	builder.Options.MaxConcurrentTasks = 2
	sink := &lookAheadSink{formatter: formatter}
	if err := builder.Build(context.Background(), root, entries, sink); err != nil {
		t.Fatalf("Build error: %v", err)
	}

	if sink.maxAhead > builder.Options.MaxConcurrentTasks {
		t.Fatalf("expected at most %d sections ahead of the writer, saw %d", builder.Options.MaxConcurrentTasks, sink.maxAhead)
	}
	if len(sink.sections) != len(names) {
		t.Fatalf("expected %d sections, got %d", len(names), len(sink.sections))
	}
	for index, section := range sink.sections {
		if section.RelativePath != names[index] {
			t.Errorf("position %d: expected %s, got %s", index, names[index], section.RelativePath)
		}
	}
}

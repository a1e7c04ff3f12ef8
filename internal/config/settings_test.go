package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/temirov/repo2doc/internal/config"
	"github.com/temirov/repo2doc/internal/utils"
)

var fixedHost = config.HostResources{AvailableMemoryBytes: 64 * 1024 * 1024, CPUCount: 2}

func TestOptimalBatchSize(t *testing.T) {
	testCases := []struct {
		name            string
		availableMemory uint64
		expected        int
	}{
		{name: "unknown memory uses default", availableMemory: 0, expected: 5000},
		{name: "half of memory over ten kilobyte files", availableMemory: 20 * 1024 * 1024, expected: 1024},
		{name: "large hosts are capped", availableMemory: 64 * 1024 * 1024 * 1024, expected: 10000},
		{name: "tiny hosts still process one file", availableMemory: 1024, expected: 1},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if actual := config.OptimalBatchSize(testCase.availableMemory); actual != testCase.expected {
				t.Fatalf("expected %d, got %d", testCase.expected, actual)
			}
		})
	}
}

func TestConcurrentTaskHint(t *testing.T) {
	testCases := []struct {
		cpuCount int
		expected int
	}{
		{cpuCount: 0, expected: 4},
		{cpuCount: 8, expected: 32},
		{cpuCount: 128, expected: 200},
	}
	for _, testCase := range testCases {
		if actual := config.ConcurrentTaskHint(testCase.cpuCount); actual != testCase.expected {
			t.Errorf("cpu %d: expected %d, got %d", testCase.cpuCount, testCase.expected, actual)
		}
	}
}

func TestLoadSettingsDefaults(t *testing.T) {
	host := fixedHost
	settings, err := config.LoadSettings(config.LoadOptions{WorkingDirectory: t.TempDir(), Host: &host})
	if err != nil {
		t.Fatalf("LoadSettings error: %v", err)
	}
	if settings.BatchSize != 3276 {
		t.Errorf("expected batch size 3276, got %d", settings.BatchSize)
	}
	if settings.MaxConcurrentTasks != 8 {
		t.Errorf("expected 8 concurrent tasks, got %d", settings.MaxConcurrentTasks)
	}
	if settings.MaxFileSizeBytes != utils.BytesPerMegabyte {
		t.Errorf("expected 1MB file cap, got %d", settings.MaxFileSizeBytes)
	}
	if settings.MaxFormatFileSizeBytes != 100*1024 {
		t.Errorf("expected 100KB format cap, got %d", settings.MaxFormatFileSizeBytes)
	}
	if settings.ChunkSizeBytes != utils.BytesPerMegabyte {
		t.Errorf("expected 1MB chunks, got %d", settings.ChunkSizeBytes)
	}
	if settings.FormatterTimeout != 30*time.Second {
		t.Errorf("expected 30s formatter timeout, got %s", settings.FormatterTimeout)
	}
	if settings.WrapWidth != 80 {
		t.Errorf("expected wrap width 80, got %d", settings.WrapWidth)
	}
	if settings.OutputDirectory != "output" {
		t.Errorf("expected output directory 'output', got %q", settings.OutputDirectory)
	}
	if len(settings.Exclude) != len(config.DefaultExcludePatterns()) {
		t.Errorf("expected %d default patterns, got %d", len(config.DefaultExcludePatterns()), len(settings.Exclude))
	}
	if !settings.UseIgnoreFile {
		t.Errorf("expected ignore file support to be enabled by default")
	}
}

func TestLoadSettingsLayersFileAndEnvironment(t *testing.T) {
	workingDirectory := t.TempDir()
	fileContent := strings.Join([]string{
		"batch_size: 2",
		"formatter_timeout: 5s",
		"output_dir: artifacts",
		"exclude_extra:",
		"  - \"*.snap\"",
		"tokens:",
		"  enabled: true",
		"  model: gpt-4",
	}, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(workingDirectory, config.ConfigFileName), []byte(fileContent), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("REPO2DOC_WRAP_WIDTH", "100")
	t.Setenv("REPO2DOC_OUTPUT_DIR", "from-env")

	host := fixedHost
	settings, err := config.LoadSettings(config.LoadOptions{WorkingDirectory: workingDirectory, Host: &host})
	if err != nil {
		t.Fatalf("LoadSettings error: %v", err)
	}
	if settings.BatchSize != 2 {
		t.Errorf("expected batch size from file, got %d", settings.BatchSize)
	}
	if settings.FormatterTimeout != 5*time.Second {
		t.Errorf("expected 5s timeout from file, got %s", settings.FormatterTimeout)
	}
	if settings.WrapWidth != 100 {
		t.Errorf("expected wrap width from environment, got %d", settings.WrapWidth)
	}
	if settings.OutputDirectory != "from-env" {
		t.Errorf("expected environment to override file, got %q", settings.OutputDirectory)
	}
	if len(settings.ExcludeExtra) != 1 || settings.ExcludeExtra[0] != "*.snap" {
		t.Errorf("expected extra exclusion from file, got %v", settings.ExcludeExtra)
	}
	if !settings.Tokens.Enabled || settings.Tokens.Model != "gpt-4" {
		t.Errorf("expected token settings from file, got %+v", settings.Tokens)
	}
}

func TestLoadSettingsExplicitFile(t *testing.T) {
	workingDirectory := t.TempDir()
	if err := os.WriteFile(filepath.Join(workingDirectory, "custom.yaml"), []byte("max_file_size_bytes: 2048\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	host := fixedHost
	settings, err := config.LoadSettings(config.LoadOptions{WorkingDirectory: workingDirectory, ExplicitFilePath: "custom.yaml", Host: &host})
	if err != nil {
		t.Fatalf("LoadSettings error: %v", err)
	}
	if settings.MaxFileSizeBytes != 2048 {
		t.Fatalf("expected explicit file to apply, got %d", settings.MaxFileSizeBytes)
	}
}

func TestLoadSettingsRejectsInvalidValues(t *testing.T) {
	workingDirectory := t.TempDir()
	if err := os.WriteFile(filepath.Join(workingDirectory, config.ConfigFileName), []byte("batch_size: 0\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	host := fixedHost
	if _, err := config.LoadSettings(config.LoadOptions{WorkingDirectory: workingDirectory, Host: &host}); err == nil {
		t.Fatalf("expected zero batch size to be rejected")
	}
}

func TestLoadSettingsMissingExplicitFile(t *testing.T) {
	host := fixedHost
	_, err := config.LoadSettings(config.LoadOptions{WorkingDirectory: t.TempDir(), ExplicitFilePath: "absent.yaml", Host: &host})
	if err == nil {
		t.Fatalf("expected an error for a missing explicit configuration file")
	}
}

func TestExcludePatternsMergesIgnoreFile(t *testing.T) {
	repositoryRoot := t.TempDir()
	ignoreContent := "# generated code\n\nfixtures/\n*.golden\n*.pyc\n"
	if err := os.WriteFile(filepath.Join(repositoryRoot, utils.IgnoreFileName), []byte(ignoreContent), 0o600); err != nil {
		t.Fatalf("write ignore file: %v", err)
	}
	settings := config.DefaultSettings(fixedHost)
	settings.ExcludeExtra = []string{"*.snap"}

	patterns, err := settings.ExcludePatterns(repositoryRoot)
	if err != nil {
		t.Fatalf("ExcludePatterns error: %v", err)
	}
	expectedTail := []string{"*.snap", "fixtures/", "*.golden"}
	if len(patterns) != len(config.DefaultExcludePatterns())+len(expectedTail) {
		t.Fatalf("unexpected pattern count %d: %v", len(patterns), patterns)
	}
	tail := patterns[len(patterns)-len(expectedTail):]
	for index, expected := range expectedTail {
		if tail[index] != expected {
			t.Errorf("position %d: expected %q, got %q", index, expected, tail[index])
		}
	}

	settings.UseIgnoreFile = false
	withoutIgnoreFile, err := settings.ExcludePatterns(repositoryRoot)
	if err != nil {
		t.Fatalf("ExcludePatterns error: %v", err)
	}
	if len(withoutIgnoreFile) != len(config.DefaultExcludePatterns())+1 {
		t.Fatalf("expected ignore file to be skipped, got %v", withoutIgnoreFile)
	}
}

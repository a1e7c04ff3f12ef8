package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/repo2doc/internal/utils"
)

// LoadIgnoreFilePatterns reads an ignore file and returns its patterns in order.
// Blank lines and lines starting with "#" are skipped. A missing file yields no patterns.
//
// #nosec G304
func LoadIgnoreFilePatterns(ignoreFilePath string) ([]string, error) {
	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil
		}
		return nil, openFileError
	}
	defer fileHandle.Close()

	var ignorePatterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, "#") {
			continue
		}
		ignorePatterns = append(ignorePatterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	return ignorePatterns, nil
}

// ExcludePatterns combines the configured exclusion globs, the extra globs, and,
// when enabled, the patterns of the ignore file at the repository root.
func (settings Settings) ExcludePatterns(repositoryRoot string) ([]string, error) {
	combinedPatterns := append([]string{}, settings.Exclude...)
	combinedPatterns = append(combinedPatterns, settings.ExcludeExtra...)
	if settings.UseIgnoreFile {
		ignoreFilePath := filepath.Join(repositoryRoot, utils.IgnoreFileName)
		ignoreFilePatterns, loadError := LoadIgnoreFilePatterns(ignoreFilePath)
		if loadError != nil {
			return nil, fmt.Errorf(errorLoadIgnoreFileFormat, ignoreFilePath, loadError)
		}
		combinedPatterns = append(combinedPatterns, ignoreFilePatterns...)
	}
	return utils.DeduplicatePatterns(combinedPatterns), nil
}

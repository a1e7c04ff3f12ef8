// Package utils contains general helper functions used across the repo2doc tool.
package utils

import (
	"path/filepath"
	"strings"
)

const (
	// IgnoreFileName is the name of the optional per-repository ignore file.
	IgnoreFileName = ".ignore"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
	// PathSegmentSeparator separates segments of every relative path handled by the tool.
	PathSegmentSeparator = "/"
)

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// RelativePathOrSelf calculates the forward-slash relative path from root to fullPath.
// Returns the cleaned fullPath if relative calculation fails.
// Returns "." if fullPath and root resolve to the same directory.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	absoluteRoot, err := filepath.Abs(root)
	if err != nil {
		return cleanPath
	}
	cleanAbsoluteRoot := filepath.Clean(absoluteRoot)

	if cleanPath == cleanAbsoluteRoot {
		return "."
	}

	relativePath, relErr := filepath.Rel(cleanAbsoluteRoot, cleanPath)
	if relErr != nil {
		return cleanPath
	}
	return filepath.ToSlash(relativePath)
}

// SplitSegments normalizes backslashes and splits a relative path into its segments.
func SplitSegments(relativePath string) []string {
	normalizedPath := strings.ReplaceAll(relativePath, "\\", PathSegmentSeparator)
	return strings.Split(normalizedPath, PathSegmentSeparator)
}

// HasDirectorySegment reports whether any directory segment of relativePath, that is
// every segment except the final file name, equals one of the provided names.
func HasDirectorySegment(relativePath string, directoryNames []string) bool {
	pathSegments := SplitSegments(relativePath)
	for _, directorySegment := range pathSegments[:len(pathSegments)-1] {
		for _, directoryName := range directoryNames {
			if directorySegment == directoryName {
				return true
			}
		}
	}
	return false
}

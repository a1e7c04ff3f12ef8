// Package pathfilter matches repository paths against exclusion glob patterns.
//
// A single matching primitive serves both directory-tree pruning and file
// collection; both pass a slash-separated path relative to the scan root. Patterns
// use shell-glob syntax: "*" matches any run of characters including "/", "?"
// matches one character, "[...]" / "[!...]" match character classes, and "\"
// escapes the next character. Matching is case-sensitive. A pattern matches a
// candidate when it matches the whole candidate, any leading sub-path of it, or
// any single segment of it, so "node_modules/" and ".git" exclude everything below
// those directories wherever they appear.
//
// A trailing "/" marks a directory pattern: it never matches the final segment of
// a file path. A leading "/" anchors a pattern to the scan root: it is matched
// against leading sub-paths only, never against inner segments. Malformed
// patterns never match.
package pathfilter

import (
	"strings"

	"github.com/gobwas/glob"

	"github.com/temirov/repo2doc/internal/utils"
)

const (
	directoryPatternSuffix = "/"
	anchoredPatternPrefix  = "/"
	globMetaCharacters     = `\*?[]{}`
)

type compiledPattern struct {
	source        string
	matcher       glob.Glob
	directoryOnly bool
	anchored      bool
}

// Filter is an immutable, compiled exclusion pattern set safe for concurrent use.
type Filter struct {
	sources  []string
	compiled []compiledPattern
}

// New compiles patterns once. Empty and malformed patterns are dropped.
func New(patterns []string) *Filter {
	filter := &Filter{sources: append([]string(nil), patterns...)}
	for _, pattern := range patterns {
		trimmedPattern := strings.TrimSpace(pattern)
		directoryOnly := strings.HasSuffix(trimmedPattern, directoryPatternSuffix)
		anchored := strings.HasPrefix(trimmedPattern, anchoredPatternPrefix)
		trimmedPattern = strings.TrimSuffix(trimmedPattern, directoryPatternSuffix)
		trimmedPattern = strings.TrimPrefix(trimmedPattern, anchoredPatternPrefix)
		if trimmedPattern == "" {
			continue
		}
		matcher, compileError := glob.Compile(trimmedPattern)
		if compileError != nil {
			continue
		}
		filter.compiled = append(filter.compiled, compiledPattern{
			source:        pattern,
			matcher:       matcher,
			directoryOnly: directoryOnly,
			anchored:      anchored,
		})
	}
	return filter
}

// Matches reports whether the file path candidate matches any pattern in patterns.
func Matches(candidate string, patterns []string) bool {
	return New(patterns).Matches(candidate)
}

// EscapeLiteral escapes glob metacharacters so value matches only itself.
func EscapeLiteral(value string) string {
	var escaped strings.Builder
	for _, character := range value {
		if strings.ContainsRune(globMetaCharacters, character) {
			escaped.WriteByte('\\')
		}
		escaped.WriteRune(character)
	}
	return escaped.String()
}

// Patterns returns the pattern strings the filter was built from.
func (filter *Filter) Patterns() []string {
	if filter == nil {
		return nil
	}
	return append([]string(nil), filter.sources...)
}

// Matches reports whether the file path candidate is excluded.
func (filter *Filter) Matches(candidate string) bool {
	_, matched := filter.MatchingPattern(candidate, false)
	return matched
}

// MatchesEntry reports whether candidate is excluded; isDirectory tells whether its
// final segment names a directory.
func (filter *Filter) MatchesEntry(candidate string, isDirectory bool) bool {
	_, matched := filter.MatchingPattern(candidate, isDirectory)
	return matched
}

// MatchingPattern returns the first pattern that excludes candidate.
func (filter *Filter) MatchingPattern(candidate string, isDirectory bool) (string, bool) {
	if filter == nil || len(filter.compiled) == 0 {
		return "", false
	}
	normalizedCandidate := strings.TrimPrefix(strings.Trim(strings.ReplaceAll(candidate, "\\", utils.PathSegmentSeparator), utils.PathSegmentSeparator), "./")
	if normalizedCandidate == "" || normalizedCandidate == "." {
		return "", false
	}
	pathSegments := utils.SplitSegments(normalizedCandidate)
	leadingPaths := make([]string, len(pathSegments))
	for segmentIndex := range pathSegments {
		leadingPaths[segmentIndex] = strings.Join(pathSegments[:segmentIndex+1], utils.PathSegmentSeparator)
	}
	finalSegmentIndex := len(pathSegments) - 1

	for _, pattern := range filter.compiled {
		for segmentIndex, pathSegment := range pathSegments {
			if pattern.directoryOnly && segmentIndex == finalSegmentIndex && !isDirectory {
				continue
			}
			if pattern.matcher.Match(leadingPaths[segmentIndex]) {
				return pattern.source, true
			}
			if !pattern.anchored && pattern.matcher.Match(pathSegment) {
				return pattern.source, true
			}
		}
	}
	return "", false
}

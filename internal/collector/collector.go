// Package collector gathers the repository files that make it into the document.
package collector

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/repo2doc/internal/pathfilter"
	"github.com/temirov/repo2doc/internal/types"
	"github.com/temirov/repo2doc/internal/utils"
)

const (
	errorAbsolutePathFormat = "getting absolute path for %s: %w"
	errorWalkFormat         = "walking %s: %w"
	warningAccessPath       = "Skipping inaccessible path"
	debugExcludedPath       = "Excluded path"
)

// Collector walks a repository and returns the files not matched by Filter.
type Collector struct {
	Filter *pathfilter.Filter
	Logger *zap.Logger
}

// NewCollector constructs a Collector.
func NewCollector(filter *pathfilter.Filter, logger *zap.Logger) *Collector {
	return &Collector{Filter: filter, Logger: utils.LoggerOrNop(logger)}
}

// isCollectableFile accepts regular files and symbolic links resolving to regular
// files. Linked directories are never descended.
func isCollectableFile(walkedPath string, directoryEntry fs.DirEntry) bool {
	if directoryEntry.Type().IsRegular() {
		return true
	}
	if directoryEntry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	targetInfo, statError := os.Stat(walkedPath)
	return statError == nil && targetInfo.Mode().IsRegular()
}

// Collect walks every directory below rootPath and returns the regular files whose
// root-relative path is not excluded, in lexical order within each directory.
// Subtrees are not pruned early; the relative path of each file is tested instead.
func (collector *Collector) Collect(executionContext context.Context, rootPath string) ([]types.FileEntry, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootPath)
	if absolutePathError != nil {
		return nil, fmt.Errorf(errorAbsolutePathFormat, rootPath, absolutePathError)
	}
	cleanedRootPath := filepath.Clean(absoluteRootPath)
	logger := utils.LoggerOrNop(collector.Logger)

	fileEntries := []types.FileEntry{}
	walkError := filepath.WalkDir(cleanedRootPath, func(walkedPath string, directoryEntry fs.DirEntry, accessError error) error {
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}
		if accessError != nil {
			logger.Warn(warningAccessPath, zap.String("path", walkedPath), zap.Error(accessError))
			if directoryEntry != nil && directoryEntry.IsDir() && walkedPath != cleanedRootPath {
				return filepath.SkipDir
			}
			if walkedPath == cleanedRootPath {
				return accessError
			}
			return nil
		}
		if !isCollectableFile(walkedPath, directoryEntry) {
			return nil
		}

		relativePath := utils.RelativePathOrSelf(walkedPath, cleanedRootPath)
		if pattern, excluded := collector.Filter.MatchingPattern(relativePath, false); excluded {
			logger.Debug(debugExcludedPath, zap.String("path", relativePath), zap.String("pattern", pattern))
			return nil
		}
		fileEntries = append(fileEntries, types.FileEntry{AbsolutePath: walkedPath, RelativePath: relativePath})
		return nil
	})
	if walkError != nil {
		return nil, fmt.Errorf(errorWalkFormat, cleanedRootPath, walkError)
	}
	return fileEntries, nil
}

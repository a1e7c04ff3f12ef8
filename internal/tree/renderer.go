// Package tree renders the ASCII structure overview of a repository.
package tree

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/repo2doc/internal/pathfilter"
	"github.com/temirov/repo2doc/internal/types"
	"github.com/temirov/repo2doc/internal/utils"
)

const (
	connectorMiddle = "|-- "
	connectorLast   = "+-- "
	extensionMiddle = "|   "
	extensionLast   = "    "
	rootSuffix      = "/"

	errorAbsolutePathFormat = "getting absolute path for %s: %w"
	warningReadDirectory    = "Skipping unreadable directory in structure tree"
)

// DirectoryReader lists a directory sorted by name, as os.ReadDir does.
type DirectoryReader func(directoryPath string) ([]fs.DirEntry, error)

// Renderer produces the structure tree. Entries whose root-relative path matches
// Filter are omitted together with their subtrees.
type Renderer struct {
	Filter        *pathfilter.Filter
	Logger        *zap.Logger
	ReadDirectory DirectoryReader
}

// NewRenderer constructs a Renderer reading the real filesystem.
func NewRenderer(filter *pathfilter.Filter, logger *zap.Logger) *Renderer {
	return &Renderer{Filter: filter, Logger: utils.LoggerOrNop(logger), ReadDirectory: os.ReadDir}
}

// directoryFrame is one directory on the explicit traversal stack.
type directoryFrame struct {
	prefix       string
	entries      []fs.DirEntry
	nextIndex    int
	path         string
	relativePath string
}

// Render returns one line per entry: the root basename with a trailing "/", then
// every kept descendant in depth-first, lexicographic order. The traversal uses an
// explicit stack so arbitrarily deep trees cannot exhaust the goroutine stack.
// Symbolic links are listed but never followed.
func (renderer *Renderer) Render(rootDirectoryPath string) (string, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootDirectoryPath)
	if absolutePathError != nil {
		return "", fmt.Errorf(errorAbsolutePathFormat, rootDirectoryPath, absolutePathError)
	}
	logger := utils.LoggerOrNop(renderer.Logger)

	lines := []string{filepath.Base(absoluteRootPath) + rootSuffix}
	var stack []*directoryFrame

	openDirectory := func(directoryPath string, relativePath string, prefix string) {
		entries, readError := renderer.listDirectory(directoryPath, relativePath)
		if readError != nil {
			if errors.Is(readError, fs.ErrPermission) {
				lines = append(lines, prefix+types.PlaceholderPermissionDenied)
				return
			}
			logger.Warn(warningReadDirectory, zap.String("directory", directoryPath), zap.Error(readError))
			return
		}
		stack = append(stack, &directoryFrame{prefix: prefix, entries: entries, path: directoryPath, relativePath: relativePath})
	}

	openDirectory(absoluteRootPath, "", "")
	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		if frame.nextIndex >= len(frame.entries) {
			stack = stack[:len(stack)-1]
			continue
		}
		entry := frame.entries[frame.nextIndex]
		frame.nextIndex++
		isLastChild := frame.nextIndex == len(frame.entries)

		connector, extension := connectorMiddle, extensionMiddle
		if isLastChild {
			connector, extension = connectorLast, extensionLast
		}
		lines = append(lines, frame.prefix+connector+entry.Name())
		if entry.IsDir() {
			openDirectory(filepath.Join(frame.path, entry.Name()), path.Join(frame.relativePath, entry.Name()), frame.prefix+extension)
		}
	}

	return strings.Join(lines, "\n"), nil
}

// listDirectory returns the kept entries of directoryPath sorted by name.
// relativeDirectory is directoryPath relative to the rendered root.
func (renderer *Renderer) listDirectory(directoryPath string, relativeDirectory string) ([]fs.DirEntry, error) {
	readDirectory := renderer.ReadDirectory
	if readDirectory == nil {
		readDirectory = os.ReadDir
	}
	directoryEntries, readError := readDirectory(directoryPath)
	if readError != nil {
		return nil, readError
	}
	keptEntries := directoryEntries[:0]
	for _, directoryEntry := range directoryEntries {
		entryPath := path.Join(relativeDirectory, directoryEntry.Name())
		if renderer.Filter.MatchesEntry(entryPath, directoryEntry.IsDir()) {
			continue
		}
		keptEntries = append(keptEntries, directoryEntry)
	}
	return keptEntries, nil
}

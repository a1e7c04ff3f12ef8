// Package reader loads one repository file as normalized text, substituting a
// placeholder whenever the content cannot be embedded.
package reader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/repo2doc/internal/types"
	"github.com/temirov/repo2doc/internal/utils"
)

const (
	warningReadFile = "Failed to read file"
	debugOversized  = "Skipping oversized file"
	debugBinary     = "Skipping binary file"
)

// contentNormalizer unifies line endings, expands tabs, and blanks block-drawing glyphs.
var contentNormalizer = newContentNormalizer()

func newContentNormalizer() *strings.Replacer {
	replacementPairs := []string{"\r\n", "\n", "\r", "\n", "\t", "    "}
	for _, blockGlyph := range []string{"■", "▄", "▌", "█", "▐", "▖", "▗", "▘", "▙", "▚", "▛", "▜", "▝", "▞", "▟"} {
		replacementPairs = append(replacementPairs, blockGlyph, " ")
	}
	return strings.NewReplacer(replacementPairs...)
}

// Reader reads files up to MaxSizeBytes in ChunkSizeBytes pieces.
type Reader struct {
	MaxSizeBytes   int64
	ChunkSizeBytes int
	Logger         *zap.Logger
}

// Result is the outcome of loading one file.
type Result struct {
	Content string
	// Placeholder is true when Content replaces unavailable file content.
	Placeholder bool
}

// Read returns the normalized text of the file at path, or a placeholder.
func (reader Reader) Read(executionContext context.Context, path string) string {
	return reader.Load(executionContext, path).Content
}

// Load is Read with the placeholder flag exposed, so callers can avoid
// post-processing substitute text.
func (reader Reader) Load(executionContext context.Context, path string) Result {
	logger := utils.LoggerOrNop(reader.Logger)

	fileInfo, statError := os.Stat(path)
	if statError != nil {
		logger.Warn(warningReadFile, zap.String("path", path), zap.Error(statError))
		return placeholder(fmt.Sprintf(types.PlaceholderReadErrorFormat, statError))
	}
	if reader.MaxSizeBytes > 0 && fileInfo.Size() > reader.MaxSizeBytes {
		logger.Debug(debugOversized, zap.String("path", path), zap.String("size", utils.FormatFileSize(fileInfo.Size())))
		return placeholder(fmt.Sprintf(types.PlaceholderTooLargeFormat, utils.Megabytes(fileInfo.Size())))
	}

	data, readError := reader.readChunks(executionContext, path, fileInfo.Size())
	if readError != nil {
		logger.Warn(warningReadFile, zap.String("path", path), zap.Error(readError))
		return placeholder(fmt.Sprintf(types.PlaceholderReadErrorFormat, readError))
	}
	if utils.IsBinary(data) {
		logger.Debug(debugBinary, zap.String("path", path))
		return placeholder(types.PlaceholderBinaryContent)
	}
	return Result{Content: Normalize(string(data))}
}

// Normalize converts CRLF and lone CR to LF, tabs to four spaces, and block glyphs to spaces.
func Normalize(content string) string {
	return contentNormalizer.Replace(content)
}

// readChunks streams the file into one buffer, checking for cancellation between chunks.
//
// #nosec G304
func (reader Reader) readChunks(executionContext context.Context, path string, sizeHint int64) ([]byte, error) {
	fileHandle, openError := os.Open(path)
	if openError != nil {
		return nil, openError
	}
	defer fileHandle.Close()

	chunkSize := reader.ChunkSizeBytes
	if chunkSize <= 0 {
		chunkSize = utils.BytesPerMegabyte
	}
	var contentBuffer bytes.Buffer
	if sizeHint > 0 {
		contentBuffer.Grow(int(sizeHint))
	}
	chunk := make([]byte, chunkSize)
	for {
		if contextError := executionContext.Err(); contextError != nil {
			return nil, contextError
		}
		bytesRead, chunkError := fileHandle.Read(chunk)
		contentBuffer.Write(chunk[:bytesRead])
		if errors.Is(chunkError, io.EOF) {
			return contentBuffer.Bytes(), nil
		}
		if chunkError != nil {
			return nil, chunkError
		}
	}
}

func placeholder(content string) Result {
	return Result{Content: content, Placeholder: true}
}

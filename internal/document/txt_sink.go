package document

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/temirov/repo2doc/internal/types"
)

const (
	structureUnderline    = "==================="
	fileUnderlineRune     = "="
	fileUnderlinePadding  = 6
	errorCreateTextFormat = "create text document %s: %w"
	errorWriteTextFormat  = "write text document %s: %w"
	errorCloseTextFormat  = "close text document %s: %w"
)

// TXTSink streams sections to a buffered file handle held open for the whole run.
type TXTSink struct {
	outputPath string
	fileHandle *os.File
	writer     *bufio.Writer
}

// NewTXTSink creates or truncates outputPath.
func NewTXTSink(outputPath string) (*TXTSink, error) {
	// #nosec G304
	fileHandle, createError := os.Create(outputPath)
	if createError != nil {
		return nil, fmt.Errorf(errorCreateTextFormat, outputPath, createError)
	}
	return &TXTSink{outputPath: outputPath, fileHandle: fileHandle, writer: bufio.NewWriter(fileHandle)}, nil
}

// WriteTitle implements Sink.
func (sink *TXTSink) WriteTitle(repositoryName string) error {
	return sink.write(repositoryName, "\n\n")
}

// WriteStructure implements Sink.
func (sink *TXTSink) WriteStructure(structureTree string) error {
	return sink.write(structureHeading, "\n", structureUnderline, "\n\n", structureTree, "\n\n")
}

// WriteFile implements Sink.
func (sink *TXTSink) WriteFile(section types.RenderedFileSection) error {
	underline := strings.Repeat(fileUnderlineRune, utf8.RuneCountInString(section.RelativePath)+fileUnderlinePadding)
	return sink.write("\n", fileHeadingPrefix, section.RelativePath, "\n", underline, "\n\n", section.Content, "\n\n")
}

// Close flushes buffered output and closes the file.
func (sink *TXTSink) Close() error {
	flushError := sink.writer.Flush()
	closeError := sink.fileHandle.Close()
	if flushError != nil {
		return fmt.Errorf(errorWriteTextFormat, sink.outputPath, flushError)
	}
	if closeError != nil {
		return fmt.Errorf(errorCloseTextFormat, sink.outputPath, closeError)
	}
	return nil
}

func (sink *TXTSink) write(fragments ...string) error {
	for _, fragment := range fragments {
		if _, writeError := sink.writer.WriteString(fragment); writeError != nil {
			return fmt.Errorf(errorWriteTextFormat, sink.outputPath, writeError)
		}
	}
	return nil
}

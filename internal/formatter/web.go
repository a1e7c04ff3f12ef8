package formatter

import (
	"context"
	"fmt"
	"os"
)

const (
	temporaryFilePattern = "repo2doc-*"

	errorTemporaryFileFormat = "prepare temporary file: %w"
	errorReadBackFormat      = "read formatted file: %w"
)

var prettierCommand = []string{"npx", "prettier", "--no-config", "--ignore-path", "/dev/null", "--write"}

// WebFormatter runs prettier against a temporary copy of the content named with
// its extension. Content above MaxSizeBytes is returned unchanged.
type WebFormatter struct {
	Runner       CommandRunner
	MaxSizeBytes int64
}

// Format implements Formatter.
func (formatter WebFormatter) Format(executionContext context.Context, content string, extension string) (string, error) {
	if formatter.MaxSizeBytes > 0 && int64(len(content)) > formatter.MaxSizeBytes {
		return content, nil
	}

	temporaryFile, createError := os.CreateTemp("", temporaryFilePattern+extension)
	if createError != nil {
		return "", fmt.Errorf(errorTemporaryFileFormat, createError)
	}
	temporaryPath := temporaryFile.Name()
	defer os.Remove(temporaryPath)

	if _, writeError := temporaryFile.WriteString(content); writeError != nil {
		_ = temporaryFile.Close()
		return "", fmt.Errorf(errorTemporaryFileFormat, writeError)
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		return "", fmt.Errorf(errorTemporaryFileFormat, closeError)
	}

	arguments := append(append([]string{}, prettierCommand[1:]...), temporaryPath)
	if _, runError := formatter.Runner.Run(executionContext, "", prettierCommand[0], arguments...); runError != nil {
		return "", runError
	}

	// #nosec G304
	formattedBytes, readError := os.ReadFile(temporaryPath)
	if readError != nil {
		return "", fmt.Errorf(errorReadBackFormat, readError)
	}
	return string(formattedBytes), nil
}

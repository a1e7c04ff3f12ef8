package formatter

import (
	"context"
	"fmt"
	"go/format"

	"golang.org/x/mod/modfile"
	"golang.org/x/tools/imports"
)

const (
	goSourceFileName = "source.go"
	goModuleFileName = "go.mod"
	goTabWidth       = 4

	errorGoFormatFormat     = "format go source: %w"
	errorModuleParseFormat  = "parse go.mod: %w"
	errorModuleFormatFormat = "format go.mod: %w"
)

// GoFormatter formats Go source in process. Imports are left untouched; output
// is indented with four spaces.
type GoFormatter struct{}

// Format implements Formatter.
func (GoFormatter) Format(_ context.Context, content string, _ string) (string, error) {
	formattedSource, importsError := imports.Process(goSourceFileName, []byte(content), &imports.Options{
		FormatOnly: true,
		Comments:   true,
		TabIndent:  false,
		TabWidth:   goTabWidth,
	})
	if importsError == nil {
		return expandTabs(string(formattedSource)), nil
	}
	formattedSource, formatError := format.Source([]byte(content))
	if formatError != nil {
		return "", fmt.Errorf(errorGoFormatFormat, formatError)
	}
	return expandTabs(string(formattedSource)), nil
}

// ModuleFileFormatter canonicalizes go.mod files.
type ModuleFileFormatter struct{}

// Format implements Formatter.
func (ModuleFileFormatter) Format(_ context.Context, content string, _ string) (string, error) {
	moduleFile, parseError := modfile.Parse(goModuleFileName, []byte(content), nil)
	if parseError != nil {
		return "", fmt.Errorf(errorModuleParseFormat, parseError)
	}
	moduleFile.Cleanup()
	formattedModule, formatError := moduleFile.Format()
	if formatError != nil {
		return "", fmt.Errorf(errorModuleFormatFormat, formatError)
	}
	return expandTabs(string(formattedModule)), nil
}

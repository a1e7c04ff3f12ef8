// Package formatter applies best-effort, per-language code formatting to file
// content before it is embedded in a document.
package formatter

import (
	"context"
	"strings"
	"time"
)

const (
	// ExtensionGo selects the in-process Go formatter.
	ExtensionGo = ".go"
	// ExtensionGoModule selects the in-process go.mod formatter.
	ExtensionGoModule = ".mod"
	// ExtensionPython selects the black / autopep8 formatter.
	ExtensionPython = ".py"

	indentationSpaces = "    "
)

// WebExtensions lists the extensions routed to prettier.
var WebExtensions = []string{".js", ".jsx", ".ts", ".tsx", ".html", ".css", ".scss"}

// Formatter rewrites content written in the language identified by extension.
// Implementations return an error rather than partial output when they cannot format.
type Formatter interface {
	Format(executionContext context.Context, content string, extension string) (string, error)
}

// PassThrough returns content unchanged.
type PassThrough struct{}

// Format implements Formatter.
func (PassThrough) Format(_ context.Context, content string, _ string) (string, error) {
	return content, nil
}

// Dispatcher routes content to a Formatter by lower-cased extension. Unknown
// extensions pass through unchanged.
type Dispatcher struct {
	routes map[string]Formatter
}

// NewDispatcher constructs an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{routes: map[string]Formatter{}}
}

// Register routes every given extension to formatter.
func (dispatcher *Dispatcher) Register(formatter Formatter, extensions ...string) *Dispatcher {
	for _, extension := range extensions {
		dispatcher.routes[strings.ToLower(extension)] = formatter
	}
	return dispatcher
}

// Supports reports whether extension has a registered formatter.
func (dispatcher *Dispatcher) Supports(extension string) bool {
	_, registered := dispatcher.routes[strings.ToLower(extension)]
	return registered
}

// Format implements Formatter.
func (dispatcher *Dispatcher) Format(executionContext context.Context, content string, extension string) (string, error) {
	routedFormatter, registered := dispatcher.routes[strings.ToLower(extension)]
	if !registered {
		return content, nil
	}
	return routedFormatter.Format(executionContext, content, extension)
}

// Options configures the default formatter set.
type Options struct {
	// Runner executes external formatters; nil means an ExecRunner with Timeout.
	Runner          CommandRunner
	Timeout         time.Duration
	MaxWebSizeBytes int64
}

// NewDefaultDispatcher wires the built-in Go, go.mod, Python, and web formatters.
func NewDefaultDispatcher(options Options) *Dispatcher {
	runner := options.Runner
	if runner == nil {
		runner = ExecRunner{Timeout: options.Timeout}
	}
	return NewDispatcher().
		Register(GoFormatter{}, ExtensionGo).
		Register(ModuleFileFormatter{}, ExtensionGoModule).
		Register(PythonFormatter{Runner: runner}, ExtensionPython).
		Register(WebFormatter{Runner: runner, MaxSizeBytes: options.MaxWebSizeBytes}, WebExtensions...)
}

func expandTabs(content string) string {
	return strings.ReplaceAll(content, "\t", indentationSpaces)
}

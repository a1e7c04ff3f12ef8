package formatter

import (
	"context"
	"errors"
)

var (
	blackCommand    = []string{"black", "-q", "-"}
	autopep8Command = []string{"autopep8", "-"}
)

// PythonFormatter pipes source through black, falling back to autopep8.
type PythonFormatter struct {
	Runner CommandRunner
}

// Format implements Formatter.
func (formatter PythonFormatter) Format(executionContext context.Context, content string, _ string) (string, error) {
	formatted, blackError := formatter.Runner.Run(executionContext, content, blackCommand[0], blackCommand[1:]...)
	if blackError == nil {
		return formatted, nil
	}
	formatted, autopep8Error := formatter.Runner.Run(executionContext, content, autopep8Command[0], autopep8Command[1:]...)
	if autopep8Error == nil {
		return formatted, nil
	}
	return "", errors.Join(blackError, autopep8Error)
}

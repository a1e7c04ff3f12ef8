// Package clipboard copies the text artifact to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
)

const errorReadArtifactFormat = "read %s for clipboard: %w"

// ErrUnsupported is returned when no clipboard utility is available on the host.
var ErrUnsupported = errors.New("clipboard is not supported on this system")

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct{}

// NewService constructs a clipboard Service.
func NewService() *Service {
	return &Service{}
}

// Copy writes text to the system clipboard.
func (service *Service) Copy(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	return clipboard.WriteAll(text)
}

// CopyFile copies the content of the file at path through copier.
//
// #nosec G304
func CopyFile(copier Copier, path string) error {
	content, readError := os.ReadFile(path)
	if readError != nil {
		return fmt.Errorf(errorReadArtifactFormat, path, readError)
	}
	return copier.Copy(string(content))
}

var _ Copier = (*Service)(nil)

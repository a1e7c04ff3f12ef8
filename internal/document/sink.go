package document

import (
	"github.com/temirov/repo2doc/internal/types"
)

const (
	structureHeading  = "Repository Structure"
	fileHeadingPrefix = "File: "
)

// Sink receives the document sections in order. Close finalizes the artifact.
type Sink interface {
	WriteTitle(repositoryName string) error
	WriteStructure(structureTree string) error
	WriteFile(section types.RenderedFileSection) error
	Close() error
}

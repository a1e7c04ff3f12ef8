// Package types defines every cross‑package data structure used by the repo2doc CLI.
package types

const (
	// PlaceholderDirectorySkipped replaces files below heavy build or dependency directories.
	PlaceholderDirectorySkipped = "[Directory skipped for performance]"
	// PlaceholderBinaryContent replaces content that is not valid text.
	PlaceholderBinaryContent = "[Binary file content]"
	// PlaceholderTooLargeFormat reports the size in megabytes of a file above the size cap.
	PlaceholderTooLargeFormat = "[File too large to process: %.1fMB]"
	// PlaceholderReadErrorFormat embeds an I/O fault raised while reading a file.
	PlaceholderReadErrorFormat = "[Error reading file: %v]"
	// PlaceholderProcessingErrorFormat embeds a fault raised while preparing a file section.
	PlaceholderProcessingErrorFormat = "[Error processing file: %v]"
	// PlaceholderPermissionDenied marks a directory the tree renderer could not list.
	PlaceholderPermissionDenied = "[Permission Denied]"

	// ArtifactSuffixPDF is appended to the repository name for the paginated artifact.
	ArtifactSuffixPDF = "_context.pdf"
	// ArtifactSuffixTXT is appended to the repository name for the flat text artifact.
	ArtifactSuffixTXT = "_context.txt"
)

// FileEntry is one file selected for rendering.
type FileEntry struct {
	AbsolutePath string
	// RelativePath is relative to the repository root and always uses forward slashes.
	RelativePath string
}

// RenderedFileSection is the final text of one file section, possibly a placeholder.
type RenderedFileSection struct {
	RelativePath string
	Content      string
}

// ValidatedPath is an absolute input path that already passed existence checks.
type ValidatedPath struct {
	AbsolutePath string
	IsDir        bool
}

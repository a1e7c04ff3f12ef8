// Package document assembles the repository context document: a title, the
// structure tree, and one section per collected file, processed in bounded batches.
package document

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/repo2doc/internal/reader"
	"github.com/temirov/repo2doc/internal/types"
	"github.com/temirov/repo2doc/internal/utils"
)

const (
	errorAbsolutePathFormat = "getting absolute path for %s: %w"
	errorRenderTreeFormat   = "rendering structure of %s: %w"
	errorWriteSectionFormat = "writing section %s: %w"
	errorWriteHeaderFormat  = "writing document header: %w"
	errorFinalizeFormat     = "finalizing document: %w"
	warningSectionPanicked  = "Failed to process file"
	debugBatchCompleted     = "Batch completed"
)

// DefaultSkippedDirectories name heavy build and dependency directories whose
// files are replaced by a placeholder instead of being read.
var DefaultSkippedDirectories = []string{"node_modules", "dist", "build"}

// ContentFormatter formats file content, returning the original on failure.
type ContentFormatter interface {
	Format(executionContext context.Context, content string, extension string) string
}

// StructureRenderer renders the repository structure tree.
type StructureRenderer interface {
	Render(rootDirectoryPath string) (string, error)
}

// BatchObserver is notified after each batch has been emitted and released.
type BatchObserver func(batchIndex int, batchSize int)

// Options tunes batching and layout.
type Options struct {
	BatchSize          int
	MaxConcurrentTasks int
	WrapWidth          int
	SkippedDirectories []string
}

// Builder runs the batch pipeline for one document.
type Builder struct {
	Reader    reader.Reader
	Formatter ContentFormatter
	Structure StructureRenderer
	Options   Options
	Observer  BatchObserver
	// NewProgress creates the reporter for a run; nil disables progress output.
	NewProgress func(total int) ProgressReporter
	Logger      *zap.Logger
}

// Build writes the title, structure, and every file section to sink in order,
// then closes the sink. Per-file faults become placeholder sections; sink errors abort.
func (builder *Builder) Build(executionContext context.Context, rootPath string, files []types.FileEntry, sink Sink) (buildError error) {
	defer func() {
		if closeError := sink.Close(); closeError != nil {
			buildError = errors.Join(buildError, fmt.Errorf(errorFinalizeFormat, closeError))
		}
	}()

	absoluteRootPath, absolutePathError := filepath.Abs(rootPath)
	if absolutePathError != nil {
		return fmt.Errorf(errorAbsolutePathFormat, rootPath, absolutePathError)
	}
	if titleError := sink.WriteTitle(filepath.Base(absoluteRootPath)); titleError != nil {
		return fmt.Errorf(errorWriteHeaderFormat, titleError)
	}
	structureTree, renderError := builder.Structure.Render(absoluteRootPath)
	if renderError != nil {
		return fmt.Errorf(errorRenderTreeFormat, absoluteRootPath, renderError)
	}
	if structureError := sink.WriteStructure(WrapText(structureTree, builder.Options.WrapWidth)); structureError != nil {
		return fmt.Errorf(errorWriteHeaderFormat, structureError)
	}

	var progress ProgressReporter = silentProgress{}
	if builder.NewProgress != nil {
		progress = builder.NewProgress(len(files))
	}
	defer progress.Finish()

	batchSize := max(1, builder.Options.BatchSize)
	batchIndex := 0
	for batch := range slices.Chunk(files, batchSize) {
		if batchError := builder.emitBatch(executionContext, batch, sink, progress); batchError != nil {
			return batchError
		}
		utils.LoggerOrNop(builder.Logger).Debug(debugBatchCompleted, zap.Int("batch", batchIndex), zap.Int("files", len(batch)))
		if builder.Observer != nil {
			builder.Observer(batchIndex, len(batch))
		}
		batchIndex++
	}
	return nil
}

// emitBatch renders the sections of one batch concurrently and writes each to sink,
// in batch order, as soon as it and its predecessors are ready. At most
// MaxConcurrentTasks sections are being rendered or waiting to be written.
func (builder *Builder) emitBatch(executionContext context.Context, batch []types.FileEntry, sink Sink, progress ProgressReporter) error {
	window := max(1, builder.Options.MaxConcurrentTasks)
	emitContext, cancelEmit := context.WithCancel(executionContext)
	defer cancelEmit()
	group, groupContext := errgroup.WithContext(emitContext)
	pending := make(chan chan types.RenderedFileSection, window-1)

	group.Go(func() error {
		defer close(pending)
		for _, entry := range batch {
			if contextError := groupContext.Err(); contextError != nil {
				return contextError
			}
			result := make(chan types.RenderedFileSection, 1)
			select {
			case pending <- result:
			case <-groupContext.Done():
				return groupContext.Err()
			}
			group.Go(func() error {
				result <- builder.renderSection(groupContext, entry)
				return nil
			})
		}
		return nil
	})

	var writeError error
	for result := range pending {
		section := <-result
		if writeError != nil || executionContext.Err() != nil {
			continue
		}
		if sinkError := sink.WriteFile(section); sinkError != nil {
			writeError = fmt.Errorf(errorWriteSectionFormat, section.RelativePath, sinkError)
			cancelEmit()
			continue
		}
		_ = progress.Add(1)
	}
	waitError := group.Wait()
	if writeError != nil {
		return writeError
	}
	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}
	return waitError
}

// renderSection never fails: faults are reported as placeholder content.
func (builder *Builder) renderSection(executionContext context.Context, entry types.FileEntry) (section types.RenderedFileSection) {
	section.RelativePath = entry.RelativePath
	defer func() {
		if recovered := recover(); recovered != nil {
			utils.LoggerOrNop(builder.Logger).Warn(warningSectionPanicked, zap.String("path", entry.RelativePath), zap.Any("reason", recovered))
			section.Content = fmt.Sprintf(types.PlaceholderProcessingErrorFormat, recovered)
		}
	}()

	skippedDirectories := builder.Options.SkippedDirectories
	if skippedDirectories == nil {
		skippedDirectories = DefaultSkippedDirectories
	}
	if utils.HasDirectorySegment(entry.RelativePath, skippedDirectories) {
		section.Content = types.PlaceholderDirectorySkipped
		return section
	}

	contentReader := builder.Reader
	if contentReader.Logger == nil {
		contentReader.Logger = builder.Logger
	}
	loaded := contentReader.Load(executionContext, entry.AbsolutePath)
	content := loaded.Content
	if !loaded.Placeholder && builder.Formatter != nil {
		content = builder.Formatter.Format(executionContext, content, strings.ToLower(filepath.Ext(entry.AbsolutePath)))
	}
	section.Content = WrapText(content, builder.Options.WrapWidth)
	return section
}

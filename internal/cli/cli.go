// Package cli provides the repo2doc command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repo2doc/internal/collector"
	"github.com/temirov/repo2doc/internal/config"
	"github.com/temirov/repo2doc/internal/document"
	"github.com/temirov/repo2doc/internal/formatter"
	"github.com/temirov/repo2doc/internal/pathfilter"
	"github.com/temirov/repo2doc/internal/reader"
	"github.com/temirov/repo2doc/internal/services/clipboard"
	"github.com/temirov/repo2doc/internal/tokenizer"
	"github.com/temirov/repo2doc/internal/tree"
	"github.com/temirov/repo2doc/internal/types"
	"github.com/temirov/repo2doc/internal/utils"
)

const (
	rootUse              = "repo2doc <repository_path>"
	rootShortDescription = "render a repository into PDF and text context documents"
	rootLongDescription  = `repo2doc walks a repository, renders its directory structure, and embeds
every included file, formatted where a formatter is available, into two
documents: <name>_context.pdf and <name>_context.txt.

Settings come from defaults, repo2doc.yaml in the working directory (or --config),
REPO2DOC_* environment variables, and flags, in increasing precedence.`
	rootUsageExample = `  # Render the current project into ./output
  repo2doc .

  # Write the documents elsewhere and copy the text document to the clipboard
  repo2doc --output-dir /tmp/context --clipboard ~/src/service`
	versionTemplate = "repo2doc version: {{.Version}}\n"

	configFlagName           = "config"
	configFlagDescription    = "configuration file (default ./repo2doc.yaml)"
	outputDirFlagName        = "output-dir"
	outputDirFlagDescription = "directory receiving the generated documents"
	clipboardFlagName        = "clipboard"
	clipboardFlagDescription = "copy the text document to the clipboard"
	tokensFlagName           = "tokens"
	tokensFlagDescription    = "estimate the token count of the text document"
	modelFlagName            = "model"
	modelFlagDescription     = "tokenizer model used with --tokens"
	verboseFlagName          = "verbose"
	verboseFlagDescription   = "log per-file decisions"

	anchoredPatternPrefix = "/"
	parentDirectoryName   = ".."
	currentDirectoryName  = "."

	bannerTitle            = "=== Repository to PDF/TXT Converter ==="
	bannerRule             = "========================================"
	repositoryLineFormat   = "Repository: %s\n"
	outputLineFormat       = "Output directory: %s\n"
	collectingMessage      = "\nCollecting files..."
	foundFilesFormat       = "Found %d files to process\n"
	generatingPDFMessage   = "\nGenerating PDF..."
	pdfGeneratedFormat     = "PDF generated successfully: %s\n"
	generatingTXTMessage   = "\nGenerating TXT..."
	txtGeneratedFormat     = "Text file generated successfully: %s\n"
	tokenEstimateFormat    = "Estimated tokens (%s): %d\n"
	clipboardCopiedMessage = "Text document copied to clipboard"
	elapsedTimeFormat      = "\nTotal execution time: %.2f seconds\n"

	errorPathMissingFormat      = "repository path '%s' does not exist"
	errorPathNotDirectoryFormat = "repository path '%s' is not a directory"
	errorAbsolutePathFormat     = "abs failed for '%s': %w"
	errorStatFormat             = "stat failed for '%s': %w"
	errorWorkingDirectoryFormat = "unable to determine working directory: %w"
	errorLoadSettingsFormat     = "load settings: %w"
	errorOutputDirectoryFormat  = "create output directory %s: %w"
	errorCollectFormat          = "collect files: %w"
	errorPDFFormat              = "generate pdf document: %w"
	errorTXTFormat              = "generate text document: %w"
	errorFormatCacheFormat      = "create format cache: %w"
	warningTokenCount           = "Failed to estimate tokens"
	warningClipboard            = "Failed to copy text document to clipboard"
	debugExclusionPatterns      = "Exclusion patterns"
)

// applicationDependencies are the collaborators a run needs. Tests replace them.
type applicationDependencies struct {
	standardOutput   io.Writer
	workingDirectory string
	host             *config.HostResources
	logger           *zap.Logger
	copier           clipboard.Copier
	newCounter       func(model string) (tokenizer.Counter, string, error)
	newProgress      func(total int) document.ProgressReporter
	formatCommands   formatter.CommandRunner
}

func defaultDependencies() applicationDependencies {
	return applicationDependencies{
		standardOutput: os.Stdout,
		copier:         clipboard.NewService(),
		newCounter:     tokenizer.NewCounter,
		newProgress:    document.NewTerminalProgress,
	}
}

// commandOptions holds the flag values of one invocation.
type commandOptions struct {
	configFilePath  string
	outputDirectory string
	copyToClipboard bool
	tokensEnabled   bool
	tokenModel      string
	verbose         bool
}

// Execute runs the repo2doc application.
func Execute(executionContext context.Context) error {
	rootCommand := createRootCommand(defaultDependencies())
	rootCommand.SetArgs(normalizeToggleArguments(rootCommand.Flags(), os.Args[1:]))
	return rootCommand.ExecuteContext(executionContext)
}

// createRootCommand builds the root Cobra command.
func createRootCommand(dependencies applicationDependencies) *cobra.Command {
	var options commandOptions

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		Version:       utils.GetApplicationVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(command *cobra.Command, arguments []string) error {
			if argumentError := cobra.ExactArgs(1)(command, arguments); argumentError != nil {
				_ = command.Usage()
				return argumentError
			}
			return nil
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return runApplication(command, dependencies, options, arguments[0])
		},
	}
	rootCommand.SetVersionTemplate(versionTemplate)

	flagSet := rootCommand.Flags()
	flagSet.StringVar(&options.configFilePath, configFlagName, "", configFlagDescription)
	flagSet.StringVar(&options.outputDirectory, outputDirFlagName, "", outputDirFlagDescription)
	flagSet.StringVar(&options.tokenModel, modelFlagName, "", modelFlagDescription)
	registerToggleFlag(flagSet, &options.copyToClipboard, clipboardFlagName, clipboardFlagDescription)
	registerToggleFlag(flagSet, &options.tokensEnabled, tokensFlagName, tokensFlagDescription)
	registerToggleFlag(flagSet, &options.verbose, verboseFlagName, verboseFlagDescription)
	return rootCommand
}

// runApplication resolves settings and renders both documents for repositoryPath.
func runApplication(command *cobra.Command, dependencies applicationDependencies, options commandOptions, repositoryPath string) error {
	startTime := time.Now()
	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}
	output := dependencies.standardOutput
	if output == nil {
		output = command.OutOrStdout()
	}

	workingDirectory := dependencies.workingDirectory
	if workingDirectory == "" {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return fmt.Errorf(errorWorkingDirectoryFormat, workingDirectoryError)
		}
		workingDirectory = currentDirectory
	}

	repository, pathError := resolveRepositoryPath(repositoryPath)
	if pathError != nil {
		return pathError
	}

	settings, settingsError := config.LoadSettings(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: options.configFilePath,
		Host:             dependencies.host,
	})
	if settingsError != nil {
		return fmt.Errorf(errorLoadSettingsFormat, settingsError)
	}
	applyFlagOverrides(command, options, &settings)
	if !filepath.IsAbs(settings.OutputDirectory) {
		settings.OutputDirectory = filepath.Join(workingDirectory, settings.OutputDirectory)
	}

	logger := dependencies.logger
	if logger == nil {
		applicationLogger, loggerError := utils.NewApplicationLogger(settings.Verbose)
		if loggerError != nil {
			return fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerError)
		}
		defer func() { _ = applicationLogger.Sync() }()
		logger = applicationLogger
	}

	repositoryName := filepath.Base(repository.AbsolutePath)
	pdfPath := filepath.Join(settings.OutputDirectory, repositoryName+types.ArtifactSuffixPDF)
	txtPath := filepath.Join(settings.OutputDirectory, repositoryName+types.ArtifactSuffixTXT)

	fmt.Fprintln(output)
	fmt.Fprintln(output, bannerTitle)
	fmt.Fprintf(output, repositoryLineFormat, repositoryName)
	fmt.Fprintf(output, outputLineFormat, settings.OutputDirectory)
	fmt.Fprintln(output, bannerRule)

	if mkdirError := os.MkdirAll(settings.OutputDirectory, 0o755); mkdirError != nil {
		return fmt.Errorf(errorOutputDirectoryFormat, settings.OutputDirectory, mkdirError)
	}

	excludePatterns, patternsError := settings.ExcludePatterns(repository.AbsolutePath)
	if patternsError != nil {
		return fmt.Errorf(errorLoadSettingsFormat, patternsError)
	}
	excludePatterns = append(excludePatterns, outputExclusionPatterns(repository.AbsolutePath, settings.OutputDirectory, pdfPath, txtPath)...)
	exclusionFilter := pathfilter.New(excludePatterns)
	logger.Debug(debugExclusionPatterns, zap.Strings("patterns", exclusionFilter.Patterns()))

	fmt.Fprintln(output, collectingMessage)
	files, collectError := collector.NewCollector(exclusionFilter, logger).Collect(executionContext, repository.AbsolutePath)
	if collectError != nil {
		return fmt.Errorf(errorCollectFormat, collectError)
	}
	fmt.Fprintf(output, foundFilesFormat, len(files))

	builder, builderError := newDocumentBuilder(settings, dependencies, exclusionFilter, logger)
	if builderError != nil {
		return builderError
	}

	fmt.Fprintln(output, generatingPDFMessage)
	if buildError := builder.Build(executionContext, repository.AbsolutePath, files, document.NewPDFSink(pdfPath, settings.WrapWidth)); buildError != nil {
		return fmt.Errorf(errorPDFFormat, buildError)
	}
	fmt.Fprintf(output, pdfGeneratedFormat, pdfPath)

	fmt.Fprintln(output, generatingTXTMessage)
	txtSink, sinkError := document.NewTXTSink(txtPath)
	if sinkError != nil {
		return fmt.Errorf(errorTXTFormat, sinkError)
	}
	if buildError := builder.Build(executionContext, repository.AbsolutePath, files, txtSink); buildError != nil {
		return fmt.Errorf(errorTXTFormat, buildError)
	}
	fmt.Fprintf(output, txtGeneratedFormat, txtPath)

	if settings.Tokens.Enabled {
		reportTokenEstimate(output, dependencies, settings.Tokens.Model, txtPath, logger)
	}
	if options.copyToClipboard {
		if copyError := clipboard.CopyFile(dependencies.copier, txtPath); copyError != nil {
			logger.Warn(warningClipboard, zap.Error(copyError))
		} else {
			fmt.Fprintln(output, clipboardCopiedMessage)
		}
	}

	fmt.Fprintf(output, elapsedTimeFormat, time.Since(startTime).Seconds())
	return nil
}

// outputExclusionPatterns returns root-anchored patterns that keep generated
// documents out of the scan when the output directory lies inside the repository.
func outputExclusionPatterns(repositoryRoot string, outputDirectory string, artifactPaths ...string) []string {
	relativeOutput, relativeError := filepath.Rel(resolvedPath(repositoryRoot), resolvedPath(outputDirectory))
	if relativeError != nil || relativeOutput == parentDirectoryName || strings.HasPrefix(relativeOutput, parentDirectoryName+string(filepath.Separator)) {
		return nil
	}
	if relativeOutput != currentDirectoryName {
		return []string{anchoredPatternPrefix + pathfilter.EscapeLiteral(filepath.ToSlash(relativeOutput)) + utils.PathSegmentSeparator}
	}
	patterns := make([]string, 0, len(artifactPaths))
	for _, artifactPath := range artifactPaths {
		patterns = append(patterns, anchoredPatternPrefix+pathfilter.EscapeLiteral(filepath.Base(artifactPath)))
	}
	return patterns
}

// resolvedPath follows symbolic links when the path exists so that aliased
// locations compare equal.
func resolvedPath(path string) string {
	if evaluatedPath, evaluationError := filepath.EvalSymlinks(path); evaluationError == nil {
		return evaluatedPath
	}
	return filepath.Clean(path)
}

// applyFlagOverrides gives explicitly set flags precedence over every other settings source.
func applyFlagOverrides(command *cobra.Command, options commandOptions, settings *config.Settings) {
	flagSet := command.Flags()
	if flagSet.Changed(outputDirFlagName) {
		settings.OutputDirectory = options.outputDirectory
	}
	if flagSet.Changed(tokensFlagName) {
		settings.Tokens.Enabled = options.tokensEnabled
	}
	if flagSet.Changed(modelFlagName) {
		settings.Tokens.Model = options.tokenModel
	}
	if flagSet.Changed(verboseFlagName) {
		settings.Verbose = options.verbose
	}
}

func newDocumentBuilder(settings config.Settings, dependencies applicationDependencies, exclusionFilter *pathfilter.Filter, logger *zap.Logger) (*document.Builder, error) {
	dispatcher := formatter.NewDefaultDispatcher(formatter.Options{
		Runner:          dependencies.formatCommands,
		Timeout:         settings.FormatterTimeout,
		MaxWebSizeBytes: settings.MaxFormatFileSizeBytes,
	})
	formatCache, cacheError := formatter.NewCache(dispatcher, settings.FormatCacheCapacity, logger)
	if cacheError != nil {
		return nil, fmt.Errorf(errorFormatCacheFormat, cacheError)
	}
	return &document.Builder{
		Reader: reader.Reader{
			MaxSizeBytes:   settings.MaxFileSizeBytes,
			ChunkSizeBytes: settings.ChunkSizeBytes,
			Logger:         logger,
		},
		Formatter: formatCache,
		Structure: tree.NewRenderer(exclusionFilter, logger),
		Options: document.Options{
			BatchSize:          settings.BatchSize,
			MaxConcurrentTasks: settings.MaxConcurrentTasks,
			WrapWidth:          settings.WrapWidth,
		},
		NewProgress: dependencies.newProgress,
		Logger:      logger,
	}, nil
}

// reportTokenEstimate prints the token estimate; failures are logged, never fatal.
func reportTokenEstimate(output io.Writer, dependencies applicationDependencies, model string, txtPath string, logger *zap.Logger) {
	if dependencies.newCounter == nil {
		return
	}
	counter, resolvedModel, counterError := dependencies.newCounter(model)
	if counterError != nil {
		logger.Warn(warningTokenCount, zap.Error(counterError))
		return
	}
	countResult, countError := tokenizer.CountFile(counter, txtPath)
	if countError != nil {
		logger.Warn(warningTokenCount, zap.Error(countError))
		return
	}
	if countResult.Counted {
		fmt.Fprintf(output, tokenEstimateFormat, resolvedModel, countResult.Tokens)
	}
}

// resolveRepositoryPath converts the input path to absolute form and validates that it is a directory.
func resolveRepositoryPath(inputPath string) (types.ValidatedPath, error) {
	if strings.TrimSpace(inputPath) == "" {
		return types.ValidatedPath{}, fmt.Errorf(errorPathMissingFormat, inputPath)
	}
	absolutePath, absolutePathError := filepath.Abs(inputPath)
	if absolutePathError != nil {
		return types.ValidatedPath{}, fmt.Errorf(errorAbsolutePathFormat, inputPath, absolutePathError)
	}
	cleanPath := filepath.Clean(absolutePath)
	fileInfo, statError := os.Stat(cleanPath)
	if statError != nil {
		if errors.Is(statError, os.ErrNotExist) {
			return types.ValidatedPath{}, fmt.Errorf(errorPathMissingFormat, inputPath)
		}
		return types.ValidatedPath{}, fmt.Errorf(errorStatFormat, inputPath, statError)
	}
	if !fileInfo.IsDir() {
		return types.ValidatedPath{}, fmt.Errorf(errorPathNotDirectoryFormat, inputPath)
	}
	return types.ValidatedPath{AbsolutePath: cleanPath, IsDir: true}, nil
}

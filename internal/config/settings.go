package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is looked up in the working directory when no explicit file is given.
	ConfigFileName = "repo2doc.yaml"
	// EnvironmentPrefix prefixes every environment override, e.g. REPO2DOC_BATCH_SIZE.
	EnvironmentPrefix = "REPO2DOC"

	defaultFormatterTimeout = 30 * time.Second

	keyBatchSize              = "batch_size"
	keyMaxConcurrentTasks     = "max_concurrent_tasks"
	keyMaxFileSizeBytes       = "max_file_size_bytes"
	keyMaxFormatFileSizeBytes = "max_format_file_size_bytes"
	keyChunkSizeBytes         = "chunk_size_bytes"
	keyFormatterTimeout       = "formatter_timeout"
	keyFormatCacheCapacity    = "format_cache_capacity"
	keyWrapWidth              = "wrap_width"
	keyOutputDirectory        = "output_dir"
	keyExclude                = "exclude"
	keyExcludeExtra           = "exclude_extra"
	keyUseIgnoreFile          = "use_ignore_file"
	keyTokensEnabled          = "tokens.enabled"
	keyTokensModel            = "tokens.model"
	keyVerbose                = "verbose"

	errorWorkingDirectoryFormat = "determine working directory: %w"
	errorStatConfigFormat       = "stat configuration %s: %w"
	errorConfigIsDirectory      = "configuration path %s is a directory"
	errorReadConfigFormat       = "read configuration from %s: %w"
	errorDecodeConfigFormat     = "decode configuration: %w"
	errorNonPositiveFormat      = "configuration value %s must be positive, got %d"
	errorLoadIgnoreFileFormat   = "loading ignore file %s: %w"
)

// Settings holds every tunable of a run. It is built once at startup and passed
// explicitly to the components that need it.
type Settings struct {
	BatchSize              int           `mapstructure:"batch_size"`
	MaxConcurrentTasks     int           `mapstructure:"max_concurrent_tasks"`
	MaxFileSizeBytes       int64         `mapstructure:"max_file_size_bytes"`
	MaxFormatFileSizeBytes int64         `mapstructure:"max_format_file_size_bytes"`
	ChunkSizeBytes         int           `mapstructure:"chunk_size_bytes"`
	FormatterTimeout       time.Duration `mapstructure:"formatter_timeout"`
	FormatCacheCapacity    int           `mapstructure:"format_cache_capacity"`
	WrapWidth              int           `mapstructure:"wrap_width"`
	OutputDirectory        string        `mapstructure:"output_dir"`
	Exclude                []string      `mapstructure:"exclude"`
	ExcludeExtra           []string      `mapstructure:"exclude_extra"`
	UseIgnoreFile          bool          `mapstructure:"use_ignore_file"`
	Tokens                 TokenSettings `mapstructure:"tokens"`
	Verbose                bool          `mapstructure:"verbose"`
}

// TokenSettings controls the optional token estimate of the text artifact.
type TokenSettings struct {
	Enabled bool   `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// LoadOptions controls how settings are discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
	// Host overrides host introspection; nil means DetectHostResources.
	Host *HostResources
}

// DefaultSettings returns the built-in settings for the given host.
func DefaultSettings(host HostResources) Settings {
	return Settings{
		BatchSize:              OptimalBatchSize(host.AvailableMemoryBytes),
		MaxConcurrentTasks:     ConcurrentTaskHint(host.CPUCount),
		MaxFileSizeBytes:       defaultMaxFileSizeBytes,
		MaxFormatFileSizeBytes: defaultMaxFormatFileSizeBytes,
		ChunkSizeBytes:         defaultChunkSizeBytes,
		FormatterTimeout:       defaultFormatterTimeout,
		FormatCacheCapacity:    defaultFormatCacheCapacity,
		WrapWidth:              defaultWrapWidth,
		OutputDirectory:        defaultOutputDirectory,
		Exclude:                DefaultExcludePatterns(),
		UseIgnoreFile:          true,
		Tokens:                 TokenSettings{Model: defaultTokenModel},
	}
}

// LoadSettings layers defaults, the configuration file, and REPO2DOC_* environment variables.
func LoadSettings(options LoadOptions) (Settings, error) {
	host := DetectHostResources()
	if options.Host != nil {
		host = *options.Host
	}
	defaults := DefaultSettings(host)

	reader := viper.New()
	reader.SetDefault(keyBatchSize, defaults.BatchSize)
	reader.SetDefault(keyMaxConcurrentTasks, defaults.MaxConcurrentTasks)
	reader.SetDefault(keyMaxFileSizeBytes, defaults.MaxFileSizeBytes)
	reader.SetDefault(keyMaxFormatFileSizeBytes, defaults.MaxFormatFileSizeBytes)
	reader.SetDefault(keyChunkSizeBytes, defaults.ChunkSizeBytes)
	reader.SetDefault(keyFormatterTimeout, defaults.FormatterTimeout)
	reader.SetDefault(keyFormatCacheCapacity, defaults.FormatCacheCapacity)
	reader.SetDefault(keyWrapWidth, defaults.WrapWidth)
	reader.SetDefault(keyOutputDirectory, defaults.OutputDirectory)
	reader.SetDefault(keyExclude, defaults.Exclude)
	reader.SetDefault(keyExcludeExtra, []string{})
	reader.SetDefault(keyUseIgnoreFile, defaults.UseIgnoreFile)
	reader.SetDefault(keyTokensEnabled, defaults.Tokens.Enabled)
	reader.SetDefault(keyTokensModel, defaults.Tokens.Model)
	reader.SetDefault(keyVerbose, false)

	reader.SetEnvPrefix(EnvironmentPrefix)
	reader.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	reader.AutomaticEnv()

	configurationPath, resolveError := resolveConfigPath(options.WorkingDirectory, options.ExplicitFilePath)
	if resolveError != nil {
		return Settings{}, resolveError
	}
	if configurationPath != "" {
		reader.SetConfigFile(configurationPath)
		if readError := reader.ReadInConfig(); readError != nil {
			return Settings{}, fmt.Errorf(errorReadConfigFormat, configurationPath, readError)
		}
	}

	var settings Settings
	if decodeError := reader.Unmarshal(&settings); decodeError != nil {
		return Settings{}, fmt.Errorf(errorDecodeConfigFormat, decodeError)
	}
	if validationError := settings.Validate(); validationError != nil {
		return Settings{}, validationError
	}
	return settings, nil
}

// Validate rejects settings that would stall or break the pipeline.
func (settings Settings) Validate() error {
	positiveValues := []struct {
		key   string
		value int64
	}{
		{keyBatchSize, int64(settings.BatchSize)},
		{keyMaxConcurrentTasks, int64(settings.MaxConcurrentTasks)},
		{keyMaxFileSizeBytes, settings.MaxFileSizeBytes},
		{keyMaxFormatFileSizeBytes, settings.MaxFormatFileSizeBytes},
		{keyChunkSizeBytes, int64(settings.ChunkSizeBytes)},
		{keyFormatterTimeout, int64(settings.FormatterTimeout)},
		{keyFormatCacheCapacity, int64(settings.FormatCacheCapacity)},
		{keyWrapWidth, int64(settings.WrapWidth)},
	}
	for _, positiveValue := range positiveValues {
		if positiveValue.value <= 0 {
			return fmt.Errorf(errorNonPositiveFormat, positiveValue.key, positiveValue.value)
		}
	}
	return nil
}

// resolveConfigPath returns the explicit file, or the working-directory file when it exists.
func resolveConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) || workingDirectory == "" {
			return filepath.Abs(explicitPath)
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf(errorWorkingDirectoryFormat, err)
		}
		workingDirectory = currentDirectory
	}
	candidatePath := filepath.Join(workingDirectory, ConfigFileName)
	info, statErr := os.Stat(candidatePath)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return "", nil
		}
		return "", fmt.Errorf(errorStatConfigFormat, candidatePath, statErr)
	}
	if info.IsDir() {
		return "", fmt.Errorf(errorConfigIsDirectory, candidatePath)
	}
	return candidatePath, nil
}

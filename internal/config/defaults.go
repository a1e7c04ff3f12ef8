// Package config builds the run settings from defaults, host resources, configuration files, and the environment.
package config

import (
	"github.com/temirov/repo2doc/internal/utils"
)

const (
	defaultBatchSize              = 5000
	maximumBatchSize              = 10000
	batchMemoryFraction           = 0.5
	assumedAverageFileSizeBytes   = 10 * 1024
	maximumConcurrentTasks        = 200
	concurrentTasksPerCPU         = 4
	defaultMaxFileSizeBytes       = 1 * utils.BytesPerMegabyte
	defaultMaxFormatFileSizeBytes = 100 * 1024
	defaultChunkSizeBytes         = 1 * utils.BytesPerMegabyte
	defaultFormatCacheCapacity    = 256
	defaultWrapWidth              = 80
	defaultOutputDirectory        = "output"
	defaultTokenModel             = "gpt-4o"
)

// excludePatternGroups lists the default exclusion globs per ecosystem.
var excludePatternGroups = [][]string{
	// version control
	{".git", ".svn", ".hg"},
	// python
	{
		"__pycache__", "*.pyc", "*.pyo", "*.pyd", "*.so", ".Python",
		"build/", "develop-eggs/", "dist/", "downloads/", "eggs/", ".eggs/",
		"lib/", "lib64/", "parts/", "sdist/", "var/", "wheels/",
		"*.egg-info/", ".installed.cfg", "*.egg", "MANIFEST",
		".env", ".venv", "env/", "venv/", "ENV/",
	},
	// node, javascript, typescript
	{
		"node_modules/", "npm-debug.log*", "yarn-debug.log*", "yarn-error.log*",
		".npm", ".yarn", "package-lock.json", "yarn.lock", "*.tsbuildinfo",
		"dist/", "build/", ".next/", "out/", ".nuxt/", ".output/", "report*", "reports*",
	},
	// java, kotlin
	{
		"target/", "*.class", "*.jar", "*.war", "*.ear", "*.zip", "*.tar.gz",
		"*.rar", "hs_err_pid*", ".gradle/", "build/", "out/", ".idea/",
		"*.iml", "*.iws", "*.ipr", ".settings/", ".project", ".classpath",
	},
	// go
	{
		"bin/", "pkg/", "*.exe", "*.exe~", "*.dll", "*.so", "*.dylib",
		"*.test", "*.out", "go.work",
	},
	// swift
	{
		"*.xcodeproj/", "*.xcworkspace/", "*.pbxuser", "*.mode1v3",
		"*.mode2v3", "*.perspectivev3", "*.xcuserstate", "xcuserdata/",
		"*.moved-aside", "*.xccheckout", "*.xcscmblueprint", "DerivedData/",
		"*.hmap", "*.ipa", "*.dSYM.zip", "*.dSYM",
	},
}

// DefaultExcludePatterns returns a fresh, ordered, duplicate-free copy of the built-in exclusion globs.
func DefaultExcludePatterns() []string {
	var patterns []string
	for _, group := range excludePatternGroups {
		patterns = append(patterns, group...)
	}
	return utils.DeduplicatePatterns(patterns)
}

package pathfilter_test

import (
	"path"
	"testing"

	"github.com/temirov/repo2doc/internal/config"
	"github.com/temirov/repo2doc/internal/pathfilter"
)

func TestMatches(t *testing.T) {
	testCases := []struct {
		name      string
		candidate string
		patterns  []string
		expected  bool
	}{
		{name: "extension wildcard on bare name", candidate: "module.pyc", patterns: []string{"*.pyc"}, expected: true},
		{name: "extension wildcard on nested path", candidate: "pkg/sub/module.pyc", patterns: []string{"*.pyc"}, expected: true},
		{name: "literal directory name excludes descendants", candidate: ".git/objects/ab/cdef", patterns: []string{".git"}, expected: true},
		{name: "directory pattern on nested descendant", candidate: "web/node_modules/react/index.js", patterns: []string{"node_modules/"}, expected: true},
		{name: "directory pattern skips a file of the same name", candidate: "scripts/build", patterns: []string{"build/"}, expected: false},
		{name: "directory glob pattern", candidate: "demo.egg-info/PKG-INFO", patterns: []string{"*.egg-info/"}, expected: true},
		{name: "prefix wildcard on segment", candidate: "src/reporter.go", patterns: []string{"report*"}, expected: true},
		{name: "question mark matches one character", candidate: "ab.txt", patterns: []string{"a?.txt"}, expected: true},
		{name: "question mark does not match two characters", candidate: "abc.txt", patterns: []string{"a?.txt"}, expected: false},
		{name: "character class", candidate: "file1.log", patterns: []string{"file[0-9].log"}, expected: true},
		{name: "negated character class", candidate: "file1.log", patterns: []string{"file[!0-9].log"}, expected: false},
		{name: "escaped brackets match literally", candidate: "notes/[draft].md", patterns: []string{`\[draft\].md`}, expected: true},
		{name: "escaped brackets are not a class", candidate: "notes/d.md", patterns: []string{`\[draft\].md`}, expected: false},
		{name: "star crosses separators in path patterns", candidate: "docs/guide/intro.md", patterns: []string{"docs/*.md"}, expected: true},
		{name: "anchored pattern matches from the root", candidate: "output/repo_context.txt", patterns: []string{"/output/"}, expected: true},
		{name: "anchored pattern ignores inner segments", candidate: "src/output/result.go", patterns: []string{"/output/"}, expected: false},
		{name: "matching is case sensitive", candidate: "module.pyc", patterns: []string{"*.PYC"}, expected: false},
		{name: "no pattern matches", candidate: "src/main.py", patterns: []string{"*.pyc", ".git", "build/"}, expected: false},
		{name: "malformed pattern never matches", candidate: "main.py", patterns: []string{"["}, expected: false},
		{name: "empty pattern set", candidate: "main.py", patterns: nil, expected: false},
		{name: "windows separators in candidates are normalized", candidate: `web\dist\bundle.js`, patterns: []string{"dist/"}, expected: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if actual := pathfilter.Matches(testCase.candidate, testCase.patterns); actual != testCase.expected {
				t.Fatalf("Matches(%q, %v) = %t, expected %t", testCase.candidate, testCase.patterns, actual, testCase.expected)
			}
		})
	}
}

func TestMatchesEntryDirectoryPatterns(t *testing.T) {
	filter := pathfilter.New([]string{"build/", "/output/"})
	testCases := []struct {
		candidate   string
		isDirectory bool
		expected    bool
	}{
		{candidate: "build", isDirectory: true, expected: true},
		{candidate: "build", isDirectory: false, expected: false},
		{candidate: "web/build", isDirectory: true, expected: true},
		{candidate: "output", isDirectory: true, expected: true},
		{candidate: "output", isDirectory: false, expected: false},
		{candidate: "src/output", isDirectory: true, expected: false},
	}
	for _, testCase := range testCases {
		if actual := filter.MatchesEntry(testCase.candidate, testCase.isDirectory); actual != testCase.expected {
			t.Errorf("MatchesEntry(%q, %t) = %t, expected %t", testCase.candidate, testCase.isDirectory, actual, testCase.expected)
		}
	}
}

func TestEscapeLiteral(t *testing.T) {
	literal := "repo [v2]{old}*?.txt"
	filter := pathfilter.New([]string{"/" + pathfilter.EscapeLiteral(literal)})
	if !filter.Matches(literal) {
		t.Fatalf("expected escaped literal to match itself")
	}
	if filter.Matches("repo v.txt") {
		t.Fatalf("expected escaped literal to match nothing else")
	}
}

func TestMatchingPatternReportsSource(t *testing.T) {
	filter := pathfilter.New([]string{"*.pyc", "build/"})
	pattern, matched := filter.MatchingPattern("app/build/output.js", false)
	if !matched {
		t.Fatalf("expected app/build/output.js to be excluded")
	}
	if pattern != "build/" {
		t.Fatalf("expected build/ to be reported, got %q", pattern)
	}
}

// TestTreeAndCollectionCallSitesAgree checks that an entry excluded during tree
// pruning is also excluded when collection meets it, and that a kept entry is kept
// in both places.
func TestTreeAndCollectionCallSitesAgree(t *testing.T) {
	filter := pathfilter.New(config.DefaultExcludePatterns())
	entries := []struct {
		name        string
		isDirectory bool
	}{
		{".git", true}, {"node_modules", true}, {"main.py", false}, {"module.pyc", false},
		{"package-lock.json", false}, {"README.md", false}, {"target", true}, {"app.jar", false},
		{"go.work", false}, {"Makefile", false}, {"reports", true}, {"lib", true}, {"lib", false},
		{"App.xcodeproj", true}, {"setup.cfg", false}, {"build", false},
	}
	for _, entry := range entries {
		treePath := path.Join("src", "component", entry.name)
		treeDecision := filter.MatchesEntry(treePath, entry.isDirectory)
		collectedPath := treePath
		if entry.isDirectory {
			collectedPath = path.Join(treePath, "inner.txt")
		}
		collectionDecision := filter.Matches(collectedPath)
		if treeDecision != collectionDecision {
			t.Errorf("%s (directory %t): tree decision %t, collection decision %t", entry.name, entry.isDirectory, treeDecision, collectionDecision)
		}
	}
}

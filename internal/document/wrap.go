package document

import (
	"strings"
	"unicode/utf8"
)

const (
	lineSeparator = "\n"
	wordSeparator = " "
)

// WrapText greedily wraps every line of text longer than width at spaces. Lines
// are never split inside a word, so a word longer than width stays whole on its
// own line. Widths are measured in runes; a non-positive width disables wrapping.
func WrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	sourceLines := strings.Split(text, lineSeparator)
	wrappedLines := make([]string, 0, len(sourceLines))
	for _, sourceLine := range sourceLines {
		if utf8.RuneCountInString(sourceLine) <= width {
			wrappedLines = append(wrappedLines, sourceLine)
			continue
		}
		currentLine := ""
		currentLength := 0
		for _, word := range strings.Split(sourceLine, wordSeparator) {
			wordLength := utf8.RuneCountInString(word)
			if currentLength+wordLength+1 <= width {
				if currentLine != "" {
					currentLine += wordSeparator + word
					currentLength += wordLength + 1
				} else {
					currentLine = word
					currentLength = wordLength
				}
				continue
			}
			if currentLine != "" {
				wrappedLines = append(wrappedLines, currentLine)
			}
			currentLine = word
			currentLength = wordLength
		}
		if currentLine != "" {
			wrappedLines = append(wrappedLines, currentLine)
		}
	}
	return strings.Join(wrappedLines, lineSeparator)
}

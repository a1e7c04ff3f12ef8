// Package tokenizer estimates how many model tokens the text artifact occupies.
package tokenizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const (
	defaultModel        = "gpt-4o"
	defaultEncodingName = "cl100k_base"

	errorInitializeEncodingFormat = "initialize tokenizer encoding %s: %w"
)

var errNilEncoding = errors.New("nil tiktoken encoding")

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

// NewCounter returns a tiktoken Counter for model and the encoding name actually
// used. Models tiktoken does not know fall back to cl100k_base.
func NewCounter(model string) (Counter, string, error) {
	lowerModel := strings.ToLower(strings.TrimSpace(model))
	if lowerModel == "" {
		lowerModel = defaultModel
	}
	if encoding, modelError := tiktoken.EncodingForModel(lowerModel); modelError == nil && encoding != nil {
		return encodingCounter{encoding: encoding, name: lowerModel}, lowerModel, nil
	}
	fallback, fallbackError := tiktoken.GetEncoding(defaultEncodingName)
	if fallbackError != nil {
		return nil, "", fmt.Errorf(errorInitializeEncodingFormat, defaultEncodingName, fallbackError)
	}
	return encodingCounter{encoding: fallback, name: defaultEncodingName}, defaultEncodingName, nil
}

type encodingCounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

func (counter encodingCounter) Name() string {
	return counter.name
}

func (counter encodingCounter) CountString(input string) (int, error) {
	if counter.encoding == nil {
		return 0, errNilEncoding
	}
	return len(counter.encoding.Encode(input, nil, nil)), nil
}

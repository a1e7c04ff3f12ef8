package tokenizer

import (
	"errors"
	"os"

	"github.com/temirov/repo2doc/internal/utils"
)

var errNilCounter = errors.New("nil tokenizer counter")

// CountResult captures the outcome of counting a file or byte slice.
type CountResult struct {
	Tokens  int
	Counted bool
}

// CountBytes estimates tokens for data. Binary data is not counted.
func CountBytes(counter Counter, data []byte) (CountResult, error) {
	if counter == nil {
		return CountResult{}, errNilCounter
	}
	if utils.IsBinary(data) {
		return CountResult{}, nil
	}
	tokens, countError := counter.CountString(string(data))
	if countError != nil {
		return CountResult{}, countError
	}
	return CountResult{Tokens: tokens, Counted: true}, nil
}

// CountFile reads the file at path and estimates its token count.
//
// #nosec G304
func CountFile(counter Counter, path string) (CountResult, error) {
	if counter == nil {
		return CountResult{}, errNilCounter
	}
	data, readError := os.ReadFile(path)
	if readError != nil {
		return CountResult{}, readError
	}
	return CountBytes(counter, data)
}

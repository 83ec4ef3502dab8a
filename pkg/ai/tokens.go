package ai

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
	encodingErr  error
)

// CountTokens returns the token count of text under the o200k_base encoding.
// It is used for sizing local model context windows.
func CountTokens(text string) (int, error) {
	encodingOnce.Do(func() {
		encoding, encodingErr = tiktoken.GetEncoding("o200k_base")
	})
	if encodingErr != nil {
		return 0, encodingErr
	}
	return len(encoding.Encode(text, nil, nil)), nil
}

// SPDX-License-Identifier: GPL-3.0-only

package gemini

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"neurostudy-server/commons"
)

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// CountResponseTokens counts tokens in a model response with the
// cl100k_base encoding. Used only to reconcile usage when the provider
// omits usage metadata; admission estimates stay on the chars/4
// heuristic. Returns nil when the encoding is unavailable.
func CountResponseTokens(text string) *int {
	if text == "" {
		return nil
	}
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			commons.Logger.Warnf("Failed to load cl100k_base encoding: %v", err)
			return
		}
		encoding = enc
	})
	if encoding == nil {
		return nil
	}
	n := len(encoding.Encode(text, nil, nil))
	return &n
}

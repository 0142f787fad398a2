// Package engine provides the reasoning-loop orchestration core.
// This file contains token counting interfaces and implementations.

package engine

import (
	"fmt"
	"strings"
)

// Tokenizer provides token counting for text. Different models use different
// tokenization schemes, so the model name is passed through.
type Tokenizer interface {
	CountTokens(text string, model string) (int, error)
}

// EstimateTokens provides a rough token count estimation using a fixed
// character-to-token ratio (~4 chars per token for English/code). It is
// deterministic and monotonic: extending a text never lowers the estimate.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}

	charCount := len([]rune(text))
	whitespaceCount := strings.Count(text, " ") + strings.Count(text, "\n") + strings.Count(text, "\t")

	// Whitespace-heavy text tokenizes a little denser than the flat ratio.
	estimated := (charCount / 4) + (whitespaceCount / 6)
	if estimated < 1 {
		return 1
	}
	return estimated
}

// DefaultTokenizer uses estimation as a fallback when no model-specific
// tokenizer is available.
type DefaultTokenizer struct{}

// CountTokens implements Tokenizer using estimation.
func (t DefaultTokenizer) CountTokens(text string, model string) (int, error) {
	return EstimateTokens(text), nil
}

// CountTokensForMessages counts tokens for a slice of messages, including
// rough formatting overhead per message.
func CountTokensForMessages(tokenizer Tokenizer, messages []ChatMessage, model string) (int, error) {
	total := 0
	for _, msg := range messages {
		roleTokens, err := tokenizer.CountTokens(string(msg.Role), model)
		if err != nil {
			return 0, fmt.Errorf("failed to count role tokens: %w", err)
		}
		total += roleTokens

		contentTokens, err := tokenizer.CountTokens(msg.Content, model)
		if err != nil {
			return 0, fmt.Errorf("failed to count content tokens: %w", err)
		}
		total += contentTokens

		for _, tc := range msg.ToolCalls {
			nameTokens, err := tokenizer.CountTokens(tc.Name, model)
			if err != nil {
				return 0, fmt.Errorf("failed to count tool call name tokens: %w", err)
			}
			argsTokens, err := tokenizer.CountTokens(tc.Args, model)
			if err != nil {
				return 0, fmt.Errorf("failed to count tool call args tokens: %w", err)
			}
			total += nameTokens + argsTokens
		}

		// Per-message formatting overhead.
		total += 4
	}
	return total, nil
}

// GetTokenizerForModel returns an appropriate tokenizer for the given model.
// Currently estimation only; provider-specific tokenizers can slot in here.
func GetTokenizerForModel(model string) Tokenizer {
	return DefaultTokenizer{}
}

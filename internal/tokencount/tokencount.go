// Package tokencount provides token estimation for providers that don't
// return usage in their response (huggingface). Uses a character-based
// heuristic (~4 chars per token for English).
package tokencount

import (
	gateway "github.com/corvid-systems/llmgate/internal"
)

// EstimateMessages estimates the total prompt token count for a list of
// chat messages.
func EstimateMessages(messages []gateway.Message) int {
	total := 0
	for _, m := range messages {
		total += 4 // per-message role/formatting overhead
		total += estimateTokens(m.Role)
		total += estimateTokens(m.Content)
	}
	return max(total, 1)
}

// EstimateText estimates tokens for a plain text string.
func EstimateText(text string) int {
	return max(estimateTokens(text), 1)
}

// estimateTokens uses a ~4 characters per token heuristic, a reasonable
// approximation for English text with GPT-family tokenizers.
func estimateTokens(s string) int {
	if len(s) == 0 {
		return 0
	}
	return len(s) / 4
}

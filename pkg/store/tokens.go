package store

import "unicode/utf8"

// DefaultTokenDivisor maps characters to approximate LLM tokens. The
// corpus is predominantly Cyrillic, where a token covers fewer characters
// than in English, so the divisor is deliberately low. Override it via
// Config.TokenDivisor when targeting a different corpus.
const DefaultTokenDivisor = 3

// EstimateTokens approximates the token count of text for budgeting.
// Counts runes, not bytes, so multi-byte scripts are not overcounted.
func EstimateTokens(text string, divisor int) int {
	if divisor <= 0 {
		divisor = DefaultTokenDivisor
	}
	return utf8.RuneCountInString(text) / divisor
}

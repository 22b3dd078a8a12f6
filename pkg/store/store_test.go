package store

import "time"

// nopLogger satisfies logger.ILogger for tests.
type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// testConfig uses divisor 1 so token expectations are just rune counts.
func testConfig() Config {
	return Config{
		SessionTTL:           time.Minute,
		MaxDocsPerCollection: 10,
		MaxTotalTokens:       1_500_000,
		TokenDivisor:         1,
		SweepInterval:        time.Minute,
	}
}

func hit(fileID, fileName, content string, score float64, source string) SearchResult {
	return SearchResult{
		FileID:   fileID,
		FileName: fileName,
		Content:  content,
		Score:    score,
		Source:   source,
	}
}

package eod

import (
	"sync"

	"kis-trading-bot/internal/interfaces"
	"kis-trading-bot/internal/tradelog"
)

var (
	mu         sync.Mutex
	defaultSum interfaces.EodSummarizer
)

// Default returns the process-wide summarizer, creating one over the
// default trade log location on first use.
func Default() interfaces.EodSummarizer {
	mu.Lock()
	defer mu.Unlock()
	if defaultSum == nil {
		defaultSum = NewSummarizer(tradelog.New(""), "")
	}
	return defaultSum
}

// SetDefault swaps the process-wide summarizer. Used by tests and by
// callers that wrap the summarizer with observability.
func SetDefault(s interfaces.EodSummarizer) {
	mu.Lock()
	defer mu.Unlock()
	defaultSum = s
}

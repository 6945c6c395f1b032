// Package llm wraps the language model used to parse requests and write
// recommendations. Calls are single-shot: no retries, bounded by a timeout.
package llm

import (
	"context"
)

// Request is one completion call
type Request struct {
	Prompt    string
	MaxTokens int64
}

// Completer turns a prompt into model text
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

package llm

import (
	"context"
	"time"
)

const (
	initialBackoff = 1 * time.Second
	maxBackoff     = 16 * time.Second
)

// GenerateWithRetry calls the client and retries retryable failures up
// to maxRetries times with exponential backoff (1s doubling, capped at
// 16s). Permanent failures and context cancellation return immediately.
func GenerateWithRetry(ctx context.Context, client Client, req BatchRequest, maxRetries int) ([]Candidate, error) {
	backoff := initialBackoff

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		req.RetryCount = attempt

		candidates, err := client.Generate(ctx, req)
		if err == nil {
			return candidates, nil
		}
		lastErr = err

		if !IsRetryable(err) || attempt == maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, &GenerationError{Retryable: false, Err: ctx.Err()}
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	return nil, lastErr
}

package pipeline

import (
	"context"
	"errors"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/johnquangdev/meeting-actions/internal/infrastructure/metrics"
	pkgai "github.com/johnquangdev/meeting-actions/pkg/ai"
)

// LLM is the reasoning backend contract. The only network dependency of
// every pipeline component.
type LLM interface {
	Infer(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error)
}

// inferWithRetry calls the backend with exponential backoff. Client errors
// are permanent; rate limits and 5xx are retried until MaxElapsedTime.
func inferWithRetry(ctx context.Context, llm LLM, operation, system, user string, temperature float64, maxTokens int) (string, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 15 * time.Second
	bo.MaxElapsedTime = 60 * time.Second

	start := time.Now()
	var out string
	err := backoff.Retry(func() error {
		var err error
		out, err = llm.Infer(ctx, system, user, temperature, maxTokens)
		if err != nil {
			var infErr *pkgai.InferenceError
			if errors.As(err, &infErr) && !infErr.Retryable() {
				return backoff.Permanent(err)
			}
			return err
		}
		return nil
	}, backoff.WithContext(bo, ctx))

	metrics.RecordInference(operation, time.Since(start), err)
	return out, err
}

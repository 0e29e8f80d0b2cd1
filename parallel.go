package transcache

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency bounds TranslateBatch when the caller passes 0.
const DefaultBatchConcurrency = 8

// BatchResult is the outcome of one request in a batch.
type BatchResult struct {
	Result *Result
	Err    error
}

// TranslateBatch translates independent requests in parallel, at most
// concurrency at a time. Results are returned in request order; a failed
// item does not cancel the others.
func (s *Service) TranslateBatch(ctx context.Context, reqs []Request, concurrency int) []BatchResult {
	results := make([]BatchResult, len(reqs))
	if len(reqs) == 0 {
		return results
	}
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, req := range reqs {
		g.Go(func() error {
			res, err := s.Translate(ctx, req)
			results[i] = BatchResult{Result: res, Err: err}
			return nil
		})
	}

	_ = g.Wait() // per-item errors live in results
	return results
}

package api

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitedTranscriber spaces out calls to a Transcriber.
type RateLimitedTranscriber struct {
	next    Transcriber
	limiter *rate.Limiter
}

// NewRateLimitedTranscriber allows at most rpm requests per minute. A
// non-positive rpm returns t unchanged.
func NewRateLimitedTranscriber(t Transcriber, rpm int) Transcriber {
	if rpm <= 0 {
		return t
	}
	return &RateLimitedTranscriber{
		next:    t,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
	}
}

func (r *RateLimitedTranscriber) Transcript(ctx context.Context, inputFilePath string, opts TranscriptOptions) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return r.next.Transcript(ctx, inputFilePath, opts)
}

func (r *RateLimitedTranscriber) Name() string {
	return r.next.Name()
}

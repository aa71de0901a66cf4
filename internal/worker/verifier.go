package worker

import (
	"context"
	"strings"
	"time"

	"github.com/ppiankov/crisisverify/internal/cache"
	"github.com/ppiankov/crisisverify/internal/model"
	"github.com/ppiankov/crisisverify/internal/score"
	"go.uber.org/zap"
)

// Corpus is the immutable reference data a verifier scores against
type Corpus interface {
	score.Corpus
	Fingerprint() string
}

// Outcome is the single result delivered for an asynchronous verification
type Outcome struct {
	Query   model.Query
	Verdict model.Verdict
	Err     error // Set only when the caller's context ended during the delay
}

// Verifier runs verifications as delay-then-score tasks.
// The only suspension point is the processing delay; scoring itself is synchronous.
type Verifier struct {
	scorer   *score.Scorer
	corpus   Corpus
	delay    time.Duration
	verdicts *cache.Verdicts
	logger   *zap.Logger
}

// NewVerifier creates a verifier over corpus. verdicts may be nil to disable caching.
func NewVerifier(corpus Corpus, delay time.Duration, verdicts *cache.Verdicts, logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Verifier{
		scorer:   score.NewScorer(),
		corpus:   corpus,
		delay:    delay,
		verdicts: verdicts,
		logger:   logger,
	}
}

// Verify waits out the processing delay, then returns the verdict for q.
// It fails only if ctx ends while waiting.
func (v *Verifier) Verify(ctx context.Context, q model.Query) (model.Verdict, error) {
	if err := v.wait(ctx); err != nil {
		return model.Verdict{}, err
	}
	return v.Now(q), nil
}

// Now scores q immediately, without the processing delay
func (v *Verifier) Now(q model.Query) model.Verdict {
	key := cache.Key(v.corpus.Fingerprint(), strings.Join(score.Tokenize(q), " "))
	if verdict, ok := v.verdicts.Get(key); ok {
		v.logger.Debug("verdict cache hit", zap.String("status", string(verdict.Status)))
		return verdict
	}

	verdict := v.scorer.Verify(q, v.corpus)
	if err := v.verdicts.Put(key, verdict); err != nil {
		v.logger.Warn("verdict cache write failed", zap.Error(err))
	}

	v.logger.Debug("verification complete",
		zap.String("location", q.Location),
		zap.String("status", string(verdict.Status)),
		zap.Float64("confidence", verdict.Confidence))

	return verdict
}

// Evaluate scores q immediately and returns the full scoring breakdown
func (v *Verifier) Evaluate(q model.Query) model.Evaluation {
	return v.scorer.Evaluate(q, v.corpus)
}

// Go starts an asynchronous verification. The returned channel receives exactly one
// Outcome and is then closed. It is buffered, so a caller that stops listening never
// blocks the task; the result is simply dropped.
func (v *Verifier) Go(ctx context.Context, q model.Query) <-chan Outcome {
	out := make(chan Outcome, 1)

	go func() {
		defer close(out)
		verdict, err := v.Verify(ctx, q)
		out <- Outcome{Query: q, Verdict: verdict, Err: err}
	}()

	return out
}

func (v *Verifier) wait(ctx context.Context) error {
	if v.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(v.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

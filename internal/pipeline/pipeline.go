package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/ppiankov/crisisverify/internal/cache"
	"github.com/ppiankov/crisisverify/internal/feed"
	"github.com/ppiankov/crisisverify/internal/model"
	"github.com/ppiankov/crisisverify/internal/reference"
	"github.com/ppiankov/crisisverify/internal/worker"
	"go.uber.org/zap"
)

// Pipeline wires reference data, verifier and feed together
type Pipeline struct {
	store    *reference.Store
	loadErr  error // Why the store is empty, if loading failed
	verifier *worker.Verifier
	limiter  *worker.Limiter
	feed     *feed.Feed
	config   *model.Config
	logger   *zap.Logger
}

// NewPipeline loads reference data from cfg.Reference.Source and builds the pipeline.
// A load failure is not fatal: the pipeline runs on an empty store and LoadError reports why.
func NewPipeline(ctx context.Context, cfg *model.Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}

	loader := reference.NewLoader(cfg.Reference, logger)
	store, err := loader.LoadOrEmpty(ctx, cfg.Reference.Source)

	p := NewWithStore(cfg, store, logger)
	p.loadErr = err
	return p
}

// NewWithStore builds a pipeline over an already loaded store
func NewWithStore(cfg *model.Config, store *reference.Store, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = reference.Empty()
	}

	var verdicts *cache.Verdicts
	if c := cache.New(cfg.Cache); c != nil {
		verdicts = cache.NewVerdicts(c, cfg.Cache.TTL)
	}

	verifier := worker.NewVerifier(store, cfg.Processing.Delay, verdicts, logger)
	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	for location, override := range cfg.RateLimiting.Locations {
		limiter.SetKeyRate(location, override.RequestsPerSecond, override.BurstSize)
	}

	return &Pipeline{
		store:    store,
		verifier: verifier,
		limiter:  limiter,
		feed:     feed.New(verifier, limiter, logger),
		config:   cfg,
		logger:   logger,
	}
}

// Store returns the reference store in use
func (p *Pipeline) Store() *reference.Store {
	return p.store
}

// LoadError returns the reference loading error, or nil if data loaded
func (p *Pipeline) LoadError() error {
	return p.loadErr
}

// Feed returns the incident feed
func (p *Pipeline) Feed() *feed.Feed {
	return p.feed
}

// Verify verifies a single query after the processing delay
func (p *Pipeline) Verify(ctx context.Context, q model.Query) (model.Verdict, error) {
	return p.verifier.Verify(ctx, q)
}

// Evaluate scores a query immediately and returns the breakdown behind the verdict
func (p *Pipeline) Evaluate(q model.Query) model.Evaluation {
	return p.verifier.Evaluate(q)
}

// Submit adds a submission to the feed and verifies it in the background
func (p *Pipeline) Submit(ctx context.Context, sub model.Submission) (feed.Post, error) {
	return p.feed.Submit(ctx, sub)
}

// Batch runs submissions through the feed with the configured worker count
func (p *Pipeline) Batch(ctx context.Context, subs []model.Submission) []*worker.SubmissionResult {
	processor := worker.NewBatchProcessor(p.feed, p.config.Processing.Workers)
	return processor.ProcessSubmissions(ctx, subs)
}

// BatchFile reads submissions from a file and runs them through the feed.
// There is one result per distinct submission, in file order.
func (p *Pipeline) BatchFile(ctx context.Context, path string) ([]*worker.SubmissionResult, error) {
	processor := worker.NewBatchProcessor(p.feed, p.config.Processing.Workers)
	return processor.ProcessFile(ctx, path)
}

// RenderFeed writes the current feed in the given format (table or json)
func (p *Pipeline) RenderFeed(w io.Writer, format string) error {
	posts := p.feed.Posts()

	switch format {
	case "json":
		return feed.RenderJSON(w, posts)
	case "table", "":
		return feed.RenderTable(w, posts)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// Package feed holds the incident feed: user submissions rendered as pending posts
// and updated exactly once when their verification finishes.
package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/crisisverify/internal/model"
	"github.com/ppiankov/crisisverify/internal/worker"
	"go.uber.org/zap"
)

var (
	// ErrIncompleteSubmission is returned when a submission lacks a required field
	ErrIncompleteSubmission = errors.New("incomplete submission")

	// ErrThrottled is returned when too many submissions target one location
	ErrThrottled = errors.New("too many submissions for this location")

	// ErrUnknownPost is returned when applying a verdict to a post that is not in the feed
	ErrUnknownPost = errors.New("unknown post")

	// ErrAlreadyFinal is returned when a post already received its verdict
	ErrAlreadyFinal = errors.New("post already has a final verdict")
)

// VerdictSource starts asynchronous verifications
type VerdictSource interface {
	Go(ctx context.Context, q model.Query) <-chan worker.Outcome
}

// Feed is the ordered list of posts, newest first
type Feed struct {
	mu       sync.RWMutex
	posts    []*Post
	index    map[string]*Post
	verifier VerdictSource
	limiter  *worker.Limiter // nil disables throttling
	logger   *zap.Logger
	inflight sync.WaitGroup

	now   func() time.Time
	newID func() string
}

// New creates an empty feed. limiter may be nil.
func New(verifier VerdictSource, limiter *worker.Limiter, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Feed{
		index:    make(map[string]*Post),
		verifier: verifier,
		limiter:  limiter,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Seed appends the official starting post
func (f *Feed) Seed() {
	f.mu.Lock()
	defer f.mu.Unlock()

	post := SeedPost(f.now())
	f.posts = append(f.posts, &post)
	f.index[post.ID] = &post
}

// Submit renders the submission as a pending post at the top of the feed and starts
// its verification. The verdict is applied in the background when it arrives; if ctx
// ends first the post stays pending.
func (f *Feed) Submit(ctx context.Context, sub model.Submission) (Post, error) {
	if err := validateSubmission(sub); err != nil {
		return Post{}, err
	}
	if f.limiter != nil && !f.limiter.Allow(sub.Location) {
		return Post{}, fmt.Errorf("%s: %w", sub.Location, ErrThrottled)
	}

	post := f.addPending(sub)
	out := f.verifier.Go(ctx, sub.Query())

	f.inflight.Add(1)
	go func() {
		defer f.inflight.Done()
		outcome := <-out
		if outcome.Err != nil {
			f.logger.Debug("verification abandoned", zap.String("post", post.ID), zap.Error(outcome.Err))
			return
		}
		if err := f.Apply(post.ID, outcome.Verdict); err != nil {
			f.logger.Debug("verdict dropped", zap.String("post", post.ID), zap.Error(err))
		}
	}()

	return post, nil
}

// Process runs a submission to completion: it waits for the location's rate limit,
// renders the pending post, waits for the verdict and applies it.
func (f *Feed) Process(ctx context.Context, sub model.Submission) (string, model.Verdict, error) {
	if err := validateSubmission(sub); err != nil {
		return "", model.Verdict{}, err
	}
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, sub.Location); err != nil {
			return "", model.Verdict{}, fmt.Errorf("rate limit: %w", err)
		}
	}

	post := f.addPending(sub)
	outcome := <-f.verifier.Go(ctx, sub.Query())
	if outcome.Err != nil {
		return post.ID, model.Verdict{}, outcome.Err
	}

	if err := f.Apply(post.ID, outcome.Verdict); err != nil {
		return post.ID, outcome.Verdict, err
	}
	return post.ID, outcome.Verdict, nil
}

// Apply moves a pending post to its terminal state. Each post accepts one verdict.
func (f *Feed) Apply(id string, verdict model.Verdict) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	post, ok := f.index[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrUnknownPost)
	}
	if post.Final {
		return fmt.Errorf("%s: %w", id, ErrAlreadyFinal)
	}

	post.Status = verdict.Status
	post.Confidence = verdict.Confidence
	post.Reason = verdict.Reason
	post.Final = true

	f.logger.Info("post verified",
		zap.String("post", id),
		zap.String("status", string(verdict.Status)),
		zap.Float64("confidence", verdict.Confidence))

	return nil
}

// Discard removes a post; a verdict arriving later for it is dropped
func (f *Feed) Discard(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.index[id]; !ok {
		return false
	}
	delete(f.index, id)

	for i, p := range f.posts {
		if p.ID == id {
			f.posts = append(f.posts[:i], f.posts[i+1:]...)
			break
		}
	}
	return true
}

// Get returns a snapshot of one post
func (f *Feed) Get(id string) (Post, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	post, ok := f.index[id]
	if !ok {
		return Post{}, false
	}
	return *post, true
}

// Posts returns a snapshot of the feed, newest first
func (f *Feed) Posts() []Post {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]Post, len(f.posts))
	for i, p := range f.posts {
		out[i] = *p
	}
	return out
}

// Wait blocks until every background verification started by Submit has finished
func (f *Feed) Wait() {
	f.inflight.Wait()
}

func (f *Feed) addPending(sub model.Submission) Post {
	f.mu.Lock()
	defer f.mu.Unlock()

	post := pendingPost(f.newID(), sub, f.now())
	f.posts = append([]*Post{&post}, f.posts...)
	f.index[post.ID] = &post

	return post
}

func validateSubmission(sub model.Submission) error {
	var missing []string
	if strings.TrimSpace(sub.Type) == "" {
		missing = append(missing, "type")
	}
	if strings.TrimSpace(sub.Location) == "" {
		missing = append(missing, "location")
	}
	if strings.TrimSpace(sub.Description) == "" {
		missing = append(missing, "description")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteSubmission, strings.Join(missing, ", "))
	}
	return nil
}

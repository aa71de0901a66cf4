package worker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/crisisverify/internal/model"
)

// Submitter runs one submission through the feed until it reaches a terminal verdict
type Submitter interface {
	Process(ctx context.Context, sub model.Submission) (postID string, verdict model.Verdict, err error)
}

// SubmissionJob represents one batch line to verify
type SubmissionJob struct {
	Index      int
	Submission model.Submission
	Submitter  Submitter
}

// Execute executes the submission job
func (j *SubmissionJob) Execute(ctx context.Context) Result {
	postID, verdict, err := j.Submitter.Process(ctx, j.Submission)
	return &SubmissionResult{
		Index:      j.Index,
		Submission: j.Submission,
		PostID:     postID,
		Verdict:    verdict,
		Error:      err,
	}
}

// SubmissionResult represents the result of a submission job
type SubmissionResult struct {
	Index      int
	Submission model.Submission
	PostID     string
	Verdict    model.Verdict
	Error      error
}

// GetError returns the error from the submission result
func (r *SubmissionResult) GetError() error {
	return r.Error
}

// BatchProcessor verifies many submissions concurrently
type BatchProcessor struct {
	submitter   Submitter
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(submitter Submitter, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		submitter:   submitter,
		concurrency: concurrency,
	}
}

// errNotProcessed marks a submission the batch never reached while its context was still live
var errNotProcessed = errors.New("submission not processed")

// ProcessSubmissions verifies submissions concurrently and returns one result per
// submission, in input order. Submissions that never ran because ctx ended carry ctx's error.
func (b *BatchProcessor) ProcessSubmissions(ctx context.Context, subs []model.Submission) []*SubmissionResult {
	if len(subs) == 0 {
		return []*SubmissionResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, sub := range subs {
		job := &SubmissionJob{
			Index:      i,
			Submission: sub,
			Submitter:  b.submitter,
		}
		if !pool.Submit(job) {
			break
		}
	}

	results := pool.Wait()

	out := make([]*SubmissionResult, len(subs))
	for _, result := range results {
		r := result.(*SubmissionResult)
		out[r.Index] = r
	}

	for i, r := range out {
		if r != nil {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = errNotProcessed
		}
		out[i] = &SubmissionResult{Index: i, Submission: subs[i], Error: err}
	}

	return out
}

// ProcessFile reads submissions from a file and verifies them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*SubmissionResult, error) {
	subs, err := ReadSubmissionsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read submissions: %w", err)
	}

	return b.ProcessSubmissions(ctx, subs), nil
}

// ReadSubmissionsFromFile reads submissions from a file, one "type | location | description" per line
func ReadSubmissionsFromFile(filePath string) ([]model.Submission, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return ParseSubmissions(file)
}

// ParseSubmissions parses batch lines. Blank lines and # comments are skipped,
// exact duplicates (ignoring case and surrounding space) are dropped.
func ParseSubmissions(r io.Reader) ([]model.Submission, error) {
	var subs []model.Submission
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "|", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("line %d: expected \"type | location | description\"", lineNo)
		}

		sub := model.Submission{
			Type:        strings.TrimSpace(parts[0]),
			Location:    strings.TrimSpace(parts[1]),
			Description: strings.TrimSpace(parts[2]),
		}

		key := strings.ToLower(sub.Type + "|" + sub.Location + "|" + sub.Description)
		if !seen[key] {
			seen[key] = true
			subs = append(subs, sub)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return subs, nil
}

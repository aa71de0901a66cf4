package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/crisisverify/internal/model"
)

// mockSubmitter implements Submitter
type mockSubmitter struct {
	shouldError bool
	calls       atomic.Int32
}

func (m *mockSubmitter) Process(ctx context.Context, sub model.Submission) (string, model.Verdict, error) {
	m.calls.Add(1)
	time.Sleep(5 * time.Millisecond) // Simulate work
	if m.shouldError {
		return "", model.Verdict{}, errors.New("process error")
	}
	return "post-" + sub.Location, model.Verdict{Status: model.StatusVerified, Confidence: 0.9, Reason: "ok"}, nil
}

func TestBatchProcessor_ProcessSubmissions(t *testing.T) {
	submitter := &mockSubmitter{}
	processor := NewBatchProcessor(submitter, 2)

	subs := []model.Submission{
		{Type: "Flood", Location: "A", Description: "water"},
		{Type: "Fire", Location: "B", Description: "smoke"},
		{Type: "Quake", Location: "C", Description: "shaking"},
	}

	results := processor.ProcessSubmissions(context.Background(), subs)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	for i, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Submission.Location, res.Error)
		}
		if res.Index != i {
			t.Errorf("results out of order: position %d has index %d", i, res.Index)
		}
		if res.PostID != "post-"+subs[i].Location {
			t.Errorf("unexpected post id %q", res.PostID)
		}
		if res.Verdict.Status != model.StatusVerified {
			t.Errorf("unexpected status %s", res.Verdict.Status)
		}
	}
}

func TestBatchProcessor_ProcessSubmissions_Error(t *testing.T) {
	processor := NewBatchProcessor(&mockSubmitter{shouldError: true}, 2)

	results := processor.ProcessSubmissions(context.Background(), []model.Submission{{Type: "Flood", Location: "A"}})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].GetError() == nil {
		t.Error("expected error, got nil")
	}
}

func TestBatchProcessor_Empty(t *testing.T) {
	submitter := &mockSubmitter{}
	results := NewBatchProcessor(submitter, 2).ProcessSubmissions(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
	if submitter.calls.Load() != 0 {
		t.Error("submitter should not be called for an empty batch")
	}
}

// blockingSubmitter holds every submission until the batch context ends
type blockingSubmitter struct{}

func (blockingSubmitter) Process(ctx context.Context, sub model.Submission) (string, model.Verdict, error) {
	<-ctx.Done()
	return "", model.Verdict{}, ctx.Err()
}

func TestBatchProcessor_ContextEndsMidBatch(t *testing.T) {
	subs := make([]model.Submission, 6)
	for i := range subs {
		subs[i] = model.Submission{Type: "Flood", Location: string(rune('A' + i)), Description: "water"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	results := NewBatchProcessor(blockingSubmitter{}, 1).ProcessSubmissions(ctx, subs)
	if len(results) != len(subs) {
		t.Fatalf("expected %d results, got %d", len(subs), len(results))
	}

	for i, res := range results {
		if res.Index != i {
			t.Errorf("position %d has index %d", i, res.Index)
		}
		if res.Submission != subs[i] {
			t.Errorf("position %d carries submission %+v", i, res.Submission)
		}
		if !errors.Is(res.Error, context.DeadlineExceeded) {
			t.Errorf("position %d: expected deadline exceeded, got %v", i, res.Error)
		}
	}
}

func TestBatchProcessor_ContextAlreadyEnded(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	submitter := &mockSubmitter{}
	subs := []model.Submission{{Type: "Flood", Location: "A"}, {Type: "Fire", Location: "B"}}

	results := NewBatchProcessor(submitter, 2).ProcessSubmissions(ctx, subs)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, res := range results {
		if !errors.Is(res.Error, context.Canceled) {
			t.Errorf("expected canceled, got %v", res.Error)
		}
	}
}

func TestParseSubmissions(t *testing.T) {
	input := `
# incidents reported overnight
Flood | Sector 4 | Water is rising near the school
Fire|Harbor|Smoke over the docks

flood | sector 4 | water is rising near the school
Scam | Downtown | Pay a fee | then board the bus
`
	subs, err := ParseSubmissions(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(subs) != 3 {
		t.Fatalf("expected 3 submissions (duplicate dropped), got %d", len(subs))
	}

	want := model.Submission{Type: "Flood", Location: "Sector 4", Description: "Water is rising near the school"}
	if subs[0] != want {
		t.Errorf("got %+v, want %+v", subs[0], want)
	}
	if subs[1].Location != "Harbor" {
		t.Errorf("expected trimmed location, got %q", subs[1].Location)
	}
	if subs[2].Description != "Pay a fee | then board the bus" {
		t.Errorf("description should keep extra separators, got %q", subs[2].Description)
	}
}

func TestParseSubmissions_BadLine(t *testing.T) {
	_, err := ParseSubmissions(strings.NewReader("Flood | Sector 4 | ok\njust text\n"))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line 2 error, got %v", err)
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.txt")
	if err := os.WriteFile(path, []byte("Flood | A | water\nFire | B | smoke\n"), 0644); err != nil {
		t.Fatal(err)
	}

	results, err := NewBatchProcessor(&mockSubmitter{}, 4).ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}

	if _, err := NewBatchProcessor(&mockSubmitter{}, 1).ProcessFile(context.Background(), filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

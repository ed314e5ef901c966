package verify

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/gofactcheck/internal/cache"
)

// fakeChat scripts CreateChatCompletion per call.
type fakeChat struct {
	calls int32
	fn    func(call int, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	n := atomic.AddInt32(&f.calls, 1)
	return f.fn(int(n), req)
}

func chatReply(content string) (openai.ChatCompletionResponse, error) {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
		},
	}, nil
}

func TestChecker_EmptyEvidenceShortCircuits(t *testing.T) {
	c := &Checker{
		Client: &fakeChat{fn: func(int, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
			t.Fatal("model must not be called without evidence")
			return openai.ChatCompletionResponse{}, nil
		}},
		Model: "m",
	}
	v, err := c.Check(context.Background(), "The moon is cheese", "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if v.Status != StatusUnverifiable {
		t.Fatalf("unexpected status: %q", v.Status)
	}
	if v.Reason != "No search results found to verify this claim" {
		t.Fatalf("unexpected reason: %q", v.Reason)
	}
}

func TestChecker_MajorityVote(t *testing.T) {
	fc := &fakeChat{fn: func(call int, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
		if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "CLAIM TO VERIFY") {
			t.Errorf("unexpected prompt shape: %+v", req.Messages)
		}
		// Temperatures distinguish the runs since call order is racy.
		if req.Temperature < 0.2 {
			return chatReply(`{"status":"VERIFIED","reason":"looks right"}`)
		}
		return chatReply(`{"status":"HALLUCINATED","reason":"sources disagree"}`)
	}}
	c := &Checker{Client: fc, Model: "m"}
	v, err := c.Check(context.Background(), "claim", "- Title: snippet")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if v.Status != StatusHallucinated {
		t.Fatalf("expected HALLUCINATED majority, got %q", v.Status)
	}
	if !strings.HasPrefix(v.Reason, "2/3 runs agree:") {
		t.Fatalf("unexpected reason: %q", v.Reason)
	}
	if got := atomic.LoadInt32(&fc.calls); got != 3 {
		t.Fatalf("expected 3 voting runs, got %d", got)
	}
}

func TestChecker_ModelErrorCountsAsUnverifiableVote(t *testing.T) {
	fc := &fakeChat{fn: func(call int, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
		if req.Temperature < 0.2 {
			return openai.ChatCompletionResponse{}, errors.New("backend down")
		}
		return chatReply(`{"status":"VERIFIED","reason":"supported"}`)
	}}
	c := &Checker{Client: fc, Model: "m"}
	v, err := c.Check(context.Background(), "claim", "- Title: snippet")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if v.Status != StatusVerified {
		t.Fatalf("expected VERIFIED 2/3 despite one failed run, got %q", v.Status)
	}
}

func TestChecker_AllRunsFail(t *testing.T) {
	fc := &fakeChat{fn: func(int, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
		return openai.ChatCompletionResponse{}, errors.New("backend down")
	}}
	c := &Checker{Client: fc, Model: "m"}
	v, err := c.Check(context.Background(), "claim", "- Title: snippet")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if v.Status != StatusUnverifiable {
		t.Fatalf("unexpected status: %q", v.Status)
	}
	if !strings.HasPrefix(v.Reason, "All 3 runs agree: Model error:") {
		t.Fatalf("unexpected reason: %q", v.Reason)
	}
}

func TestChecker_CacheHitSkipsModel(t *testing.T) {
	store := &cache.FileStore{Dir: t.TempDir()}
	fc := &fakeChat{fn: func(int, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
		return chatReply(`{"status":"VERIFIED","reason":"supported"}`)
	}}
	c := &Checker{Client: fc, Model: "m", Cache: store}

	if _, err := c.Check(context.Background(), "claim", "- Title: snippet"); err != nil {
		t.Fatalf("first check: %v", err)
	}
	first := atomic.LoadInt32(&fc.calls)
	if first != 3 {
		t.Fatalf("expected 3 calls on cold cache, got %d", first)
	}
	v, err := c.Check(context.Background(), "claim", "- Title: snippet")
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if atomic.LoadInt32(&fc.calls) != first {
		t.Fatal("expected cache hit to skip model calls")
	}
	if v.Status != StatusVerified {
		t.Fatalf("unexpected cached status: %q", v.Status)
	}
}

func TestChecker_DifferentEvidenceMissesCache(t *testing.T) {
	store := &cache.FileStore{Dir: t.TempDir()}
	fc := &fakeChat{fn: func(int, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
		return chatReply(`{"status":"VERIFIED","reason":"supported"}`)
	}}
	c := &Checker{Client: fc, Model: "m", Cache: store}

	if _, err := c.Check(context.Background(), "claim", "- A: one"); err != nil {
		t.Fatalf("first check: %v", err)
	}
	if _, err := c.Check(context.Background(), "claim", "- B: two"); err != nil {
		t.Fatalf("second check: %v", err)
	}
	if got := atomic.LoadInt32(&fc.calls); got != 6 {
		t.Fatalf("expected fresh votes for new evidence, got %d calls", got)
	}
}

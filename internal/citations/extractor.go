package citations

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/gofactcheck/internal/llm"
)

const extractSystemPrompt = `You are a citation parsing assistant. Find every bibliographic citation in the user's text and parse its parts. Respond with strict JSON only: {"citations":[{"raw_citation":string,"authors":string,"year":string,"title":string,"venue":string,"pages":string}]}. raw_citation is the citation exactly as written. Leave parts you cannot identify as empty strings. Return {"citations":[]} when there are none.`

// Extractor parses citations out of free text with an LLM pass. Unlike claim
// extraction there is no useful deterministic fallback, so model failures
// surface as errors.
type Extractor struct {
	Client llm.Client
	Model  string
}

type citationsEnvelope struct {
	Citations []Citation `json:"citations"`
}

var envelopeRe = regexp.MustCompile(`(?s)\{.*\}`)

// Extract returns the citations found in text, in order of appearance.
func (e *Extractor) Extract(ctx context.Context, text string) ([]Citation, error) {
	if e.Client == nil || strings.TrimSpace(e.Model) == "" {
		return nil, fmt.Errorf("citation extractor not configured with model client")
	}
	req := openai.ChatCompletionRequest{
		Model: e.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0.0,
		N:           1,
	}
	resp, err := e.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("extract citations: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("extract citations: model returned no choices")
	}
	candidate := strings.TrimSpace(resp.Choices[0].Message.Content)
	if m := envelopeRe.FindString(candidate); m != "" {
		candidate = m
	}
	var env citationsEnvelope
	if err := json.Unmarshal([]byte(candidate), &env); err != nil {
		return nil, fmt.Errorf("extract citations: unparseable model output: %w", err)
	}
	out := make([]Citation, 0, len(env.Citations))
	for _, c := range env.Citations {
		c.Raw = strings.TrimSpace(c.Raw)
		if c.Raw == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

package claims

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/gofactcheck/internal/llm"
)

const extractSystemPrompt = `You are a claim extraction assistant. Split the user's text into discrete factual claims that can be checked against external sources. Respond with strict JSON only, no narration: {"claims":[{"claim":string,"start_char":int,"end_char":int}]}. Offsets index into the original text. Skip opinions, questions and instructions. Return {"claims":[]} when the text contains no checkable claims.`

// defaultMaxClaims bounds how many claims one request may fan out into.
const defaultMaxClaims = 20

// Extractor pulls checkable claims out of text. The LLM pass is preferred;
// a deterministic sentence heuristic keeps the endpoint usable when the
// model is down or answers with garbage.
type Extractor struct {
	Client    llm.Client
	Model     string
	MaxClaims int
}

func (e *Extractor) maxClaims() int {
	if e.MaxClaims > 0 {
		return e.MaxClaims
	}
	return defaultMaxClaims
}

// Extract returns the claims found in text, in order of appearance. An LLM
// answer of zero claims is honored as-is; only failures fall back to the
// heuristic.
func (e *Extractor) Extract(ctx context.Context, text string) ([]Claim, error) {
	if e.Client != nil && strings.TrimSpace(e.Model) != "" {
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
		if err == nil && len(resp.Choices) > 0 {
			if out, ok := parseClaims(resp.Choices[0].Message.Content, text); ok {
				return clamp(out, e.maxClaims()), nil
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn().Err(err).Msg("claim extraction model call failed; using heuristic")
		} else {
			log.Warn().Msg("claim extraction output unparseable; using heuristic")
		}
	}
	return clamp(heuristicExtract(text), e.maxClaims()), nil
}

func clamp(cs []Claim, max int) []Claim {
	if len(cs) > max {
		return cs[:max]
	}
	return cs
}

type claimsEnvelope struct {
	Claims []Claim `json:"claims"`
}

var envelopeRe = regexp.MustCompile(`(?s)\{.*\}`)

// parseClaims decodes the model's JSON envelope and repairs offsets that do
// not actually point at the claim text.
func parseClaims(raw string, original string) ([]Claim, bool) {
	candidate := strings.TrimSpace(raw)
	if m := envelopeRe.FindString(candidate); m != "" {
		candidate = m
	}
	var env claimsEnvelope
	if err := json.Unmarshal([]byte(candidate), &env); err != nil {
		return nil, false
	}
	out := make([]Claim, 0, len(env.Claims))
	cursor := 0
	for _, c := range env.Claims {
		c.Text = strings.TrimSpace(c.Text)
		if c.Text == "" {
			continue
		}
		if !offsetsMatch(original, c) {
			if idx := strings.Index(original[cursor:], c.Text); idx >= 0 {
				c.StartChar = cursor + idx
				c.EndChar = c.StartChar + len(c.Text)
			} else if idx := strings.Index(original, c.Text); idx >= 0 {
				c.StartChar = idx
				c.EndChar = idx + len(c.Text)
			} else {
				// Paraphrased claim; keep it but without a span.
				c.StartChar, c.EndChar = 0, 0
			}
		}
		if c.EndChar > c.StartChar {
			cursor = c.EndChar
		}
		out = append(out, c)
	}
	return out, true
}

func offsetsMatch(original string, c Claim) bool {
	return c.StartChar >= 0 && c.EndChar <= len(original) && c.StartChar < c.EndChar &&
		original[c.StartChar:c.EndChar] == c.Text
}

// heuristicExtract splits on sentence boundaries and keeps spans that look
// like factual statements rather than headings or fragments.
func heuristicExtract(text string) []Claim {
	out := make([]Claim, 0, 8)
	cursor := 0
	for _, s := range splitIntoSentences(text) {
		idx := strings.Index(text[cursor:], s)
		if idx < 0 {
			continue
		}
		start := cursor + idx
		cursor = start + len(s)
		if !looksLikeClaim(s) {
			continue
		}
		out = append(out, Claim{Text: s, StartChar: start, EndChar: start + len(s)})
	}
	return out
}

func splitIntoSentences(s string) []string {
	sep := func(r rune) bool {
		return r == '.' || r == '\n' || r == '?' || r == '!'
	}
	raw := strings.FieldsFunc(s, sep)
	out := make([]string, 0, len(raw))
	for _, part := range raw {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// looksLikeClaim requires some letters and at least three words, enough to
// carry a subject and a predicate.
func looksLikeClaim(s string) bool {
	letters := 0
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			letters++
		}
	}
	return letters >= 8 && len(strings.Fields(s)) >= 3
}

package citations

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/gofactcheck/internal/evidence"
	"github.com/hyperifyio/gofactcheck/internal/llm"
	"github.com/hyperifyio/gofactcheck/internal/search"
	"github.com/hyperifyio/gofactcheck/internal/verify"
)

const verifyPrompt = `You are a citation verification assistant. Decide whether the cited work exists and whether the citation's details match the search results.

CITATION:
%s

PARSED FIELDS:
%s

SEARCH RESULTS:
%s

Rules:
- VERIFIED: the work clearly exists and the parsed fields match the evidence.
- HALLUCINATED: the work does not exist, or a core field (authors, title, venue, year) contradicts the evidence.
- UNVERIFIABLE: the evidence neither confirms nor denies the citation.

Respond with ONLY a JSON object: {"status": "VERIFIED|HALLUCINATED|UNVERIFIABLE", "errors": [string], "reason": string}. errors lists each field mismatch such as "year: cited 2020, sources say 2018"; keep it empty when nothing is wrong. reason must stay under 150 characters.`

// Verifier checks one parsed citation against search evidence.
type Verifier struct {
	Client     llm.Client
	Model      string
	Search     search.Provider
	MaxResults int
}

func (v *Verifier) maxResults() int {
	if v.MaxResults > 0 {
		return v.MaxResults
	}
	return 5
}

// Verify searches for the cited work and asks the model to compare fields.
// Search failure degrades to UNVERIFIABLE rather than failing the request.
func (v *Verifier) Verify(ctx context.Context, c Citation) Outcome {
	query := strings.TrimSpace(c.Title)
	if query == "" {
		query = c.Raw
	}
	results, err := v.Search.Search(ctx, query, v.maxResults())
	if err != nil {
		log.Warn().Err(err).Str("citation", c.Raw).Msg("citation search failed")
		return Outcome{
			Status:  verify.StatusUnverifiable,
			Errors:  []string{},
			Reason:  "Search backend unavailable",
			Sources: []evidence.Source{},
		}
	}
	if len(results) == 0 {
		return Outcome{
			Status:  verify.StatusUnverifiable,
			Errors:  []string{},
			Reason:  "No search results found for this citation",
			Sources: []evidence.Source{},
		}
	}

	fields, _ := json.Marshal(c)
	req := openai.ChatCompletionRequest{
		Model: v.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(verifyPrompt, c.Raw, string(fields), evidence.Format(results)),
			},
		},
		Temperature: 0.0,
		MaxTokens:   256,
		N:           1,
	}
	out := Outcome{
		Status:  verify.StatusUnverifiable,
		Errors:  []string{},
		Reason:  "Unable to determine",
		Sources: evidence.SourcesFrom(results),
	}
	resp, err := v.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("citation", c.Raw).Msg("citation verification model call failed")
		return out
	}
	if len(resp.Choices) == 0 {
		return out
	}
	candidate := strings.TrimSpace(resp.Choices[0].Message.Content)
	if m := envelopeRe.FindString(candidate); m != "" {
		candidate = m
	}
	var parsed struct {
		Status verify.Status `json:"status"`
		Errors []string      `json:"errors"`
		Reason string        `json:"reason"`
	}
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return out
	}
	parsed.Status = verify.Status(strings.ToUpper(strings.TrimSpace(string(parsed.Status))))
	switch parsed.Status {
	case verify.StatusVerified, verify.StatusHallucinated, verify.StatusUnverifiable:
		out.Status = parsed.Status
	}
	if parsed.Reason != "" {
		if r := []rune(parsed.Reason); len(r) > 150 {
			parsed.Reason = string(r[:150])
		}
		out.Reason = parsed.Reason
	}
	if parsed.Errors != nil {
		out.Errors = parsed.Errors
	}
	return out
}

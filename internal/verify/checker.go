package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/gofactcheck/internal/cache"
	"github.com/hyperifyio/gofactcheck/internal/llm"
)

const factCheckPrompt = `You are a rigorous fact-checking assistant. Analyze whether the ENTIRE claim is supported by search results.

CLAIM TO VERIFY:
%s

SEARCH RESULTS:
%s

VERIFICATION RULES:
1. VERIFIED - The search results CLEARLY and DIRECTLY support the COMPLETE claim
   - All parts of the claim must be confirmed (subject, action, object, time, place, etc.)
   - Example: "Einstein discovered penicillin" requires proof Einstein discovered it (not just that Einstein existed)

2. HALLUCINATED - The search results CONTRADICT the claim OR show it's factually wrong
   - Any part of the claim that is proven false makes the whole claim HALLUCINATED
   - Example: If claim says "X did Y" but sources say "Z did Y", mark as HALLUCINATED

3. UNVERIFIABLE - Not enough evidence in search results to confirm or deny
   - Sources don't mention the specific claim at all
   - Sources are ambiguous or inconclusive

CRITICAL: Verify the COMPLETE STATEMENT, not just that entities exist!
- "Einstein discovered penicillin" is HALLUCINATED even though Einstein existed
- "Musk founded Google" is HALLUCINATED even though both Musk and Google exist

Respond with ONLY a JSON object in this exact format:
{"status": "VERIFIED|HALLUCINATED|UNVERIFIABLE", "reason": "Brief explanation under 150 characters"}

IMPORTANT:
- status MUST be exactly one of: VERIFIED, HALLUCINATED, UNVERIFIABLE
- reason MUST be under 150 characters explaining why
- Return ONLY valid JSON, no other text`

// defaultTemperatures gives the voting runs sampling diversity while keeping
// a single configured model.
var defaultTemperatures = []float32{0.1, 0.3, 0.5}

// Checker runs the voting fact check for one claim against formatted
// evidence. The zero value is not usable; Client and Model are required.
type Checker struct {
	Client llm.Client
	Model  string
	// Temperatures sets one voting run per entry. Empty means the default
	// three-run spread.
	Temperatures []float32
	// Cache, when non-nil, short-circuits repeated claim/evidence pairs.
	Cache cache.Store
}

func (c *Checker) temperatures() []float32 {
	if len(c.Temperatures) > 0 {
		return c.Temperatures
	}
	return defaultTemperatures
}

// Check returns the majority verdict for claim judged against the evidence
// block. Empty evidence is UNVERIFIABLE without spending a model call.
func (c *Checker) Check(ctx context.Context, claim string, evidence string) (Verdict, error) {
	if strings.TrimSpace(evidence) == "" {
		return Verdict{
			Status: StatusUnverifiable,
			Reason: "No search results found to verify this claim",
		}, nil
	}
	if c.Client == nil || strings.TrimSpace(c.Model) == "" {
		return Verdict{}, fmt.Errorf("checker not configured with model client")
	}

	key := cache.KeyFrom(c.Model, claim, cache.DigestEvidence(evidence))
	if c.Cache != nil {
		if raw, ok, _ := c.Cache.Get(ctx, key); ok {
			var v Verdict
			if err := json.Unmarshal(raw, &v); err == nil && validStatus(v.Status) {
				return v, nil
			}
		}
	}

	temps := c.temperatures()
	verdicts := make([]Verdict, len(temps))
	var wg sync.WaitGroup
	for i, temp := range temps {
		wg.Add(1)
		go func(i int, temp float32) {
			defer wg.Done()
			verdicts[i] = c.checkOnce(ctx, claim, evidence, temp)
		}(i, temp)
	}
	wg.Wait()

	v := tally(verdicts)
	if c.Cache != nil {
		if b, err := json.Marshal(v); err == nil {
			_ = c.Cache.Save(ctx, key, b)
		}
	}
	return v, nil
}

// checkOnce runs a single voting pass. Failures become UNVERIFIABLE votes so
// one flaky completion cannot sink the whole claim.
func (c *Checker) checkOnce(ctx context.Context, claim, evidence string, temp float32) Verdict {
	req := openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(factCheckPrompt, claim, evidence),
			},
		},
		Temperature: temp,
		MaxTokens:   256,
		N:           1,
	}
	resp, err := c.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		log.Debug().Err(err).Float32("temperature", temp).Msg("fact-check run failed")
		return Verdict{Status: StatusUnverifiable, Reason: capReason("Model error: " + err.Error())}
	}
	if len(resp.Choices) == 0 {
		return Verdict{Status: StatusUnverifiable, Reason: "Model returned no choices"}
	}
	v, ok := parseVerdict(resp.Choices[0].Message.Content)
	if !ok {
		return Verdict{Status: StatusUnverifiable, Reason: "Model returned unparseable output"}
	}
	return v
}

// tally picks the majority status and prefixes the winning reason with the
// vote count. Ties fall to the earliest run so the result stays deterministic.
func tally(verdicts []Verdict) Verdict {
	counts := make(map[Status]int, len(verdicts))
	reasons := make(map[Status]string, len(verdicts))
	for _, v := range verdicts {
		counts[v.Status]++
		if _, seen := reasons[v.Status]; !seen {
			reasons[v.Status] = v.Reason
		}
	}
	var winner Status
	best := -1
	for _, v := range verdicts {
		if counts[v.Status] > best {
			best = counts[v.Status]
			winner = v.Status
		}
	}
	total := len(verdicts)
	var reason string
	switch {
	case best == total:
		reason = fmt.Sprintf("All %d runs agree: %s", total, reasons[winner])
	case best > total/2:
		reason = fmt.Sprintf("%d/%d runs agree: %s", best, total, reasons[winner])
	default:
		reason = fmt.Sprintf("Runs disagree (%d/%d each). Using %s: %s", best, total, winner, reasons[winner])
	}
	return Verdict{Status: winner, Reason: capReason(reason)}
}

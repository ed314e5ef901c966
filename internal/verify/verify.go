// Package verify judges whether a single claim is supported by search
// evidence. Several completions of the same model vote on the verdict to
// smooth over individual sampling noise.
package verify

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Status classifies a checked claim. The wire values are fixed; anything a
// model returns outside this set is coerced to StatusUnverifiable.
type Status string

const (
	StatusVerified     Status = "VERIFIED"
	StatusHallucinated Status = "HALLUCINATED"
	StatusUnverifiable Status = "UNVERIFIABLE"
)

// maxReasonLen bounds the human-readable explanation.
const maxReasonLen = 150

// Verdict is the outcome for one claim.
type Verdict struct {
	Status Status `json:"status"`
	Reason string `json:"reason"`
}

func validStatus(s Status) bool {
	switch s {
	case StatusVerified, StatusHallucinated, StatusUnverifiable:
		return true
	}
	return false
}

// jsonRe pulls the first JSON object out of a completion that may wrap it in
// prose or code fences.
var jsonRe = regexp.MustCompile(`(?s)\{.*\}`)

// parseVerdict extracts {"status","reason"} from raw model output, coercing
// unknown statuses to UNVERIFIABLE and capping the reason length.
func parseVerdict(raw string) (Verdict, bool) {
	raw = strings.TrimSpace(raw)
	candidate := raw
	if m := jsonRe.FindString(raw); m != "" {
		candidate = m
	}
	var v Verdict
	if err := json.Unmarshal([]byte(candidate), &v); err != nil {
		return Verdict{}, false
	}
	v.Status = Status(strings.ToUpper(strings.TrimSpace(string(v.Status))))
	if !validStatus(v.Status) {
		v.Status = StatusUnverifiable
	}
	if v.Reason == "" {
		v.Reason = "Unable to determine"
	}
	v.Reason = capReason(v.Reason)
	return v, true
}

func capReason(s string) string {
	r := []rune(s)
	if len(r) <= maxReasonLen {
		return s
	}
	return string(r[:maxReasonLen])
}

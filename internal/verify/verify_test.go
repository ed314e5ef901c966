package verify

import (
	"strings"
	"testing"
)

func TestParseVerdict_PlainJSON(t *testing.T) {
	v, ok := parseVerdict(`{"status": "VERIFIED", "reason": "Confirmed by sources"}`)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if v.Status != StatusVerified {
		t.Fatalf("unexpected status: %q", v.Status)
	}
	if v.Reason != "Confirmed by sources" {
		t.Fatalf("unexpected reason: %q", v.Reason)
	}
}

func TestParseVerdict_WrappedInProse(t *testing.T) {
	raw := "Sure, here is my answer:\n```json\n{\"status\":\"HALLUCINATED\",\"reason\":\"Sources say otherwise\"}\n```\nHope that helps."
	v, ok := parseVerdict(raw)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if v.Status != StatusHallucinated {
		t.Fatalf("unexpected status: %q", v.Status)
	}
}

func TestParseVerdict_CoercesUnknownStatus(t *testing.T) {
	v, ok := parseVerdict(`{"status":"PROBABLY_FINE","reason":"shrug"}`)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if v.Status != StatusUnverifiable {
		t.Fatalf("expected coercion to UNVERIFIABLE, got %q", v.Status)
	}
}

func TestParseVerdict_LowercaseStatus(t *testing.T) {
	v, ok := parseVerdict(`{"status":"verified","reason":"ok"}`)
	if !ok || v.Status != StatusVerified {
		t.Fatalf("expected VERIFIED, got ok=%v status=%q", ok, v.Status)
	}
}

func TestParseVerdict_CapsReason(t *testing.T) {
	long := strings.Repeat("x", 400)
	v, ok := parseVerdict(`{"status":"VERIFIED","reason":"` + long + `"}`)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if got := len([]rune(v.Reason)); got != maxReasonLen {
		t.Fatalf("expected reason capped at %d, got %d", maxReasonLen, got)
	}
}

func TestParseVerdict_Garbage(t *testing.T) {
	if _, ok := parseVerdict("I cannot answer that."); ok {
		t.Fatal("expected parse failure on non-JSON output")
	}
}

func TestTally_AllAgree(t *testing.T) {
	v := tally([]Verdict{
		{Status: StatusVerified, Reason: "a"},
		{Status: StatusVerified, Reason: "b"},
		{Status: StatusVerified, Reason: "c"},
	})
	if v.Status != StatusVerified {
		t.Fatalf("unexpected status: %q", v.Status)
	}
	if !strings.HasPrefix(v.Reason, "All 3 runs agree: a") {
		t.Fatalf("unexpected reason: %q", v.Reason)
	}
}

func TestTally_Majority(t *testing.T) {
	v := tally([]Verdict{
		{Status: StatusHallucinated, Reason: "contradicted"},
		{Status: StatusVerified, Reason: "supported"},
		{Status: StatusHallucinated, Reason: "also contradicted"},
	})
	if v.Status != StatusHallucinated {
		t.Fatalf("unexpected status: %q", v.Status)
	}
	if !strings.HasPrefix(v.Reason, "2/3 runs agree: contradicted") {
		t.Fatalf("unexpected reason: %q", v.Reason)
	}
}

func TestTally_DisagreeUsesFirstRun(t *testing.T) {
	v := tally([]Verdict{
		{Status: StatusVerified, Reason: "supported"},
		{Status: StatusHallucinated, Reason: "contradicted"},
		{Status: StatusUnverifiable, Reason: "unclear"},
	})
	if v.Status != StatusVerified {
		t.Fatalf("expected first run to win the tie, got %q", v.Status)
	}
	if !strings.Contains(v.Reason, "Runs disagree (1/3 each)") {
		t.Fatalf("unexpected reason: %q", v.Reason)
	}
}

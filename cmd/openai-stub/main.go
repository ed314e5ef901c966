// Command openai-stub is a tiny OpenAI-compatible server for developing
// gofactcheck without spending model credits. It answers the extraction and
// verification prompts with deterministic JSON.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func main() {
	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		sys, user, last := "", "", ""
		if len(req.Messages) > 0 {
			sys = req.Messages[0].Content
			last = req.Messages[len(req.Messages)-1].Content
		}
		if len(req.Messages) >= 2 {
			user = req.Messages[1].Content
		}

		var content string
		switch {
		case strings.Contains(sys, "claim extraction assistant"):
			content = extractionReply(user)
		case strings.Contains(sys, "citation parsing assistant"):
			content = `{"citations":[]}`
		case strings.Contains(sys, "citation verification assistant"):
			content = `{"status":"UNVERIFIABLE","errors":[],"reason":"Stub backend cannot verify citations"}`
		default:
			// Fact-check prompt arrives as a single user message.
			content = factCheckReply(last)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "stub",
			"object": "chat.completion",
			"model":  model,
			"choices": []map[string]any{
				{"index": 0, "finish_reason": "stop", "message": map[string]any{"role": "assistant", "content": content}},
			},
		})
	})

	log.Printf("openai-stub listening on %s (model %s)", addr, model)
	log.Fatal(http.ListenAndServe(addr, mux))
}

// extractionReply treats every sentence of the input as one claim.
func extractionReply(text string) string {
	type claim struct {
		Claim     string `json:"claim"`
		StartChar int    `json:"start_char"`
		EndChar   int    `json:"end_char"`
	}
	var out []claim
	cursor := 0
	for _, s := range strings.FieldsFunc(text, func(r rune) bool { return r == '.' || r == '\n' }) {
		s = strings.TrimSpace(s)
		if len(strings.Fields(s)) < 3 {
			continue
		}
		idx := strings.Index(text[cursor:], s)
		if idx < 0 {
			continue
		}
		start := cursor + idx
		cursor = start + len(s)
		out = append(out, claim{Claim: s, StartChar: start, EndChar: start + len(s)})
	}
	b, _ := json.Marshal(map[string]any{"claims": out})
	return string(b)
}

// factCheckReply calls anything mentioning "flat" hallucinated so the
// canonical smoke test behaves like the real pipeline.
func factCheckReply(prompt string) string {
	if strings.Contains(strings.ToLower(prompt), "flat") {
		return `{"status":"HALLUCINATED","reason":"Sources contradict the claim"}`
	}
	return `{"status":"VERIFIED","reason":"Sources support the claim"}`
}

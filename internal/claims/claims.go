// Package claims splits free text into discrete factual assertions with
// byte offsets back into the original input.
package claims

// Claim is a single checkable assertion. Offsets are byte positions into the
// submitted text so callers can highlight the span.
type Claim struct {
	Text      string `json:"claim"`
	StartChar int    `json:"start_char"`
	EndChar   int    `json:"end_char"`
}

// Package citations extracts bibliographic references from text and checks
// them against search evidence, flagging fabricated or garbled entries.
package citations

import (
	"github.com/hyperifyio/gofactcheck/internal/evidence"
	"github.com/hyperifyio/gofactcheck/internal/verify"
)

// Citation is one parsed bibliographic reference. Fields the model cannot
// identify stay empty.
type Citation struct {
	Raw     string `json:"raw_citation"`
	Authors string `json:"authors"`
	Year    string `json:"year"`
	Title   string `json:"title"`
	Venue   string `json:"venue"`
	Pages   string `json:"pages"`
}

// Outcome is the verification verdict for one citation. Errors lists the
// specific field mismatches found (wrong year, wrong venue, and so on).
type Outcome struct {
	Status  verify.Status     `json:"status"`
	Errors  []string          `json:"errors"`
	Reason  string            `json:"reason"`
	Sources []evidence.Source `json:"sources"`
}

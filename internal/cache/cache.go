// Package cache persists claim verdicts so repeated text does not re-spend
// model and search credits.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Store is the minimal verdict-cache contract. Get returns ok=false on miss;
// backends must treat lookup failures as misses rather than hard errors so a
// degraded cache never fails a verification request.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, data []byte) error
}

// KeyFrom derives a stable cache key from the model name, the claim text and
// a digest of the evidence it was judged against.
func KeyFrom(model, claim, evidenceDigest string) string {
	h := sha256.Sum256([]byte(model + "\n" + claim + "\n" + evidenceDigest))
	return hex.EncodeToString(h[:])
}

// DigestEvidence hashes the evidence block so a claim re-checked against
// different search results gets a fresh verdict.
func DigestEvidence(evidence string) string {
	h := sha256.Sum256([]byte(evidence))
	return hex.EncodeToString(h[:8])
}

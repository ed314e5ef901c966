package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gofactcheck/internal/pipeline"
)

// Pipeline is the subset of the verification pipeline the handlers need,
// kept as an interface so tests can stub it.
type Pipeline interface {
	VerifyText(ctx context.Context, text string) ([]pipeline.ClaimResult, error)
	VerifyCitations(ctx context.Context, text string) ([]pipeline.CitationResult, error)
}

// defaultMaxTextChars caps input size before any model call.
const defaultMaxTextChars = 20000

// ErrEmptyText is the validation failure for blank input.
var ErrEmptyText = errors.New("Text cannot be empty")

type verifyRequest struct {
	Text string `json:"text"`
}

type verifyResponse struct {
	Results []pipeline.ClaimResult `json:"results"`
}

type verifyCitationsResponse struct {
	Results []pipeline.CitationResult `json:"results"`
}

// errorResponse mirrors the "detail" error shape API clients already parse.
type errorResponse struct {
	Detail string `json:"detail"`
}

// Handlers carries the pipeline plus per-request policy.
type Handlers struct {
	Pipeline       Pipeline
	RequestTimeout time.Duration
	MaxTextChars   int
}

func (h *Handlers) maxTextChars() int {
	if h.MaxTextChars > 0 {
		return h.MaxTextChars
	}
	return defaultMaxTextChars
}

// Health reports liveness.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handlers) bindText(c *gin.Context) (string, bool) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: "Invalid JSON body"})
		return "", false
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: ErrEmptyText.Error()})
		return "", false
	}
	if len(req.Text) > h.maxTextChars() {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: "Text too long"})
		return "", false
	}
	return req.Text, true
}

func (h *Handlers) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.RequestTimeout > 0 {
		return context.WithTimeout(c.Request.Context(), h.RequestTimeout)
	}
	return context.WithCancel(c.Request.Context())
}

// Verify checks every factual claim in the submitted text.
func (h *Handlers) Verify(c *gin.Context) {
	text, ok := h.bindText(c)
	if !ok {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	results, err := h.Pipeline.VerifyText(ctx, text)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		log.Error().Err(err).Str("request_id", RequestIDFrom(c)).Msg("verify failed")
		c.JSON(status, errorResponse{Detail: "Verification failed"})
		return
	}
	c.JSON(http.StatusOK, verifyResponse{Results: results})
}

// VerifyCitations checks every bibliographic citation in the submitted text.
func (h *Handlers) VerifyCitations(c *gin.Context) {
	text, ok := h.bindText(c)
	if !ok {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	results, err := h.Pipeline.VerifyCitations(ctx, text)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		log.Error().Err(err).Str("request_id", RequestIDFrom(c)).Msg("verify-citations failed")
		c.JSON(status, errorResponse{Detail: "Citation verification failed"})
		return
	}
	c.JSON(http.StatusOK, verifyCitationsResponse{Results: results})
}

package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/yt-summarizer/internal/domain/summarizer"
	"github.com/yanqian/yt-summarizer/internal/infra/render"
)

const formatHTML = "html"

// SummaryHandler wires the HTTP transport to the summarizer service.
type SummaryHandler struct {
	svc      summarizer.Service
	renderer *render.Markdown
	logger   *slog.Logger
}

// NewSummaryHandler constructs the summary HTTP handler.
func NewSummaryHandler(svc summarizer.Service, renderer *render.Markdown, logger *slog.Logger) *SummaryHandler {
	return &SummaryHandler{
		svc:      svc,
		renderer: renderer,
		logger:   logger.With("component", "http.handler"),
	}
}

type summarizeRequest struct {
	summarizer.Request
	Format string `json:"format,omitempty"`
}

type summarizeResponse struct {
	summarizer.Response
	HTML string `json:"html,omitempty"`
}

type tokensRequest struct {
	Text string `json:"text"`
}

// Summarize handles the synchronous summarization endpoint.
func (h *SummaryHandler) Summarize(c *gin.Context) {
	var req summarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	req.Request = sanitizeRequest(req.Request)

	resp, err := h.svc.Summarize(c.Request.Context(), req.Request)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}

	out := summarizeResponse{Response: resp}
	if strings.EqualFold(strings.TrimSpace(req.Format), formatHTML) {
		html, err := h.renderer.HTML(resp.Text)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusInternalServerError, "render_failed", "could not render summary", err))
			return
		}
		out.HTML = html
	}
	c.JSON(http.StatusOK, out)
}

// Tokens estimates the token and chunk count of a text.
func (h *SummaryHandler) Tokens(c *gin.Context) {
	var req tokensRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	est, err := h.svc.Estimate(c.Request.Context(), req.Text)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, est)
}

// ReloadTemplate re-reads the prompt template from disk.
func (h *SummaryHandler) ReloadTemplate(c *gin.Context) {
	if err := h.svc.ReloadTemplate(); err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	h.logger.Info("prompt template reloaded")
	c.JSON(http.StatusOK, gin.H{"status": "reloaded"})
}

// Health reports liveness.
func (h *SummaryHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

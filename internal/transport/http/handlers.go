package http

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/joshdurbin/shortlinks/internal/domain"
	"github.com/joshdurbin/shortlinks/internal/metrics"
	"github.com/joshdurbin/shortlinks/internal/ratelimit"
	"github.com/joshdurbin/shortlinks/internal/service"
)

// Handler holds the HTTP handlers for the link service
type Handler struct {
	links   service.LinkService
	limiter *ratelimit.Limiter
	baseURL string
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(links service.LinkService, limiter *ratelimit.Limiter, baseURL string, logger *zap.Logger) *Handler {
	return &Handler{
		links:   links,
		limiter: limiter,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// CreateLink handles POST /api/urls
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	clientIP := clientIP(r)

	// Creation is the only rate-limited operation.
	result := h.limiter.Allow(clientIP)
	if !result.Allowed {
		metrics.RateLimitRejections.Inc()
		w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfterSeconds))
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	var req domain.CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.ClientIP = clientIP

	link, err := h.links.Create(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response := domain.CreateLinkResponse{
		ID:          link.ID,
		ShortCode:   link.ShortCode,
		ShortURL:    h.baseURL + "/r/" + link.ShortCode,
		OriginalURL: link.OriginalURL,
		CreatedAt:   link.CreatedAt,
		ExpiresAt:   link.ExpiresAt,
	}

	writeJSON(w, http.StatusCreated, response)
}

// GetLink handles GET /api/urls/{shortCode}
func (h *Handler) GetLink(w http.ResponseWriter, r *http.Request, shortCode string) {
	link, err := h.links.Get(r.Context(), shortCode)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, link)
}

// UpdateStatus handles PATCH /api/urls/{shortCode}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request, shortCode string) {
	var req domain.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	link, err := h.links.SetActive(r.Context(), shortCode, req.IsActive)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, link)
}

// DeleteLink handles DELETE /api/urls/{shortCode}
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request, shortCode string) {
	deleted, err := h.links.Delete(r.Context(), shortCode)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "short code not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetStats handles GET /api/urls/{shortCode}/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request, shortCode string) {
	from, err := parseTimeParam(r, "from_utc")
	if err != nil {
		writeError(w, http.StatusBadRequest, "from_utc must be RFC 3339")
		return
	}
	to, err := parseTimeParam(r, "to_utc")
	if err != nil {
		writeError(w, http.StatusBadRequest, "to_utc must be RFC 3339")
		return
	}

	stats, err := h.links.Stats(r.Context(), shortCode, from, to)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Redirect handles GET /r/{shortCode}
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	shortCode := strings.TrimPrefix(r.URL.Path, "/r/")
	if shortCode == "" || strings.Contains(shortCode, "/") {
		writeError(w, http.StatusNotFound, "short code not found")
		return
	}

	access := domain.AccessInfo{
		ClientIP:  clientIP(r),
		UserAgent: r.UserAgent(),
		Referer:   r.Referer(),
	}

	originalURL, err := h.links.ResolveRedirect(r.Context(), shortCode, access)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, originalURL, http.StatusFound)
}

// LinksDetailHandler dispatches /api/urls/{shortCode}[/status|/stats]
func (h *Handler) LinksDetailHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/urls/")
	parts := strings.Split(rest, "/")
	shortCode := parts[0]
	if shortCode == "" {
		writeError(w, http.StatusBadRequest, "short code is required")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.GetLink(w, r, shortCode)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.DeleteLink(w, r, shortCode)
	case len(parts) == 2 && parts[1] == "status" && (r.Method == http.MethodPatch || r.Method == http.MethodPut):
		h.UpdateStatus(w, r, shortCode)
	case len(parts) == 2 && parts[1] == "stats" && r.Method == http.MethodGet:
		h.GetStats(w, r, shortCode)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// writeServiceError maps service errors to status codes and logs the rest.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *domain.ValidationError

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error: validationErr.Message,
			Field: validationErr.Field,
		})
	case errors.Is(err, domain.ErrAliasConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrExpired):
		writeError(w, http.StatusGone, err.Error())
	case errors.Is(err, domain.ErrCodeGenerationExhausted):
		h.logger.Error("short code generation exhausted", zap.String("path", r.URL.Path))
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, domain.ErrorResponse{Error: message})
}

// clientIP resolves the client address, honoring X-Forwarded-For when present.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func parseTimeParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	utc := t.UTC()
	return &utc, nil
}

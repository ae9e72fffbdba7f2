package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"invitegate/internal/invite/models"
	dErrors "invitegate/pkg/domain-errors"
	"invitegate/pkg/platform/httputil"
	"invitegate/pkg/platform/middleware/admin"
	"invitegate/pkg/requestcontext"
)

// Service defines the invite operations exposed over HTTP.
type Service interface {
	IssueNonce(ctx context.Context) (string, error)
	RequestInvite(ctx context.Context, req models.Request) (*models.Result, error)
	Stats(ctx context.Context) (*models.Stats, error)
	OwnedDomains(ctx context.Context, address, chainID string) (*models.OwnedDomains, error)
}

// Sessions binds nonces to callers.
type Sessions interface {
	Issue(w http.ResponseWriter, nonce string) error
	Nonce(r *http.Request) (string, error)
}

// Handler serves the invite endpoints.
type Handler struct {
	service  Service
	sessions Sessions
	logger   *slog.Logger
	adminKey string
	limiter  func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithInviteLimiter guards the get-invite endpoint.
func WithInviteLimiter(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.limiter = mw
	}
}

// New creates a new invite Handler. An empty adminKey locks /api/stats.
func New(service Service, sessions Sessions, logger *slog.Logger, adminKey string, opts ...Option) *Handler {
	h := &Handler{
		service:  service,
		sessions: sessions,
		logger:   logger,
		adminKey: adminKey,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the invite routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/ens/nonce", h.handleNonce)
	r.Get("/api/ens/domains", h.handleDomains)
	r.Group(func(r chi.Router) {
		if h.limiter != nil {
			r.Use(h.limiter)
		}
		r.Post("/api/ens/get-invite", h.handleGetInvite)
	})
	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminKey(h.adminKey, h.logger))
		r.Get("/api/stats", h.handleStats)
	})
}

func (h *Handler) handleNonce(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	nonce, err := h.service.IssueNonce(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.sessions.Issue(w, nonce); err != nil {
		h.logger.ErrorContext(ctx, "failed to write session cookie",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "session error"))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(nonce))
}

func (h *Handler) handleGetInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[GetInviteRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	// A missing or stale session leaves the expected nonce empty; the
	// verifier then reports nonce_mismatch.
	expected, _ := h.sessions.Nonce(r)

	res, err := h.service.RequestInvite(ctx, req.toModel(expected))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toInviteResponse(res))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toStatsResponse(stats))
}

func (h *Handler) handleDomains(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	owned, err := h.service.OwnedDomains(r.Context(), q.Get("address"), q.Get("chainId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDomainsResponse(owned))
}

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"impactledger/internal/registry/models"
	id "impactledger/pkg/domain"
	dErrors "impactledger/pkg/domain-errors"
	"impactledger/pkg/platform/httputil"
	authmw "impactledger/pkg/platform/middleware/auth"
	"impactledger/pkg/requestcontext"
)

// maxBatchIDs bounds GET /impact?ids=...
const maxBatchIDs = 100

// Service defines the registry and ledger operations exposed over HTTP.
type Service interface {
	RegisterDelegate(ctx context.Context, caller id.AccountID, name, specialization string) (id.DelegateID, error)
	IssueCredential(ctx context.Context, caller id.AccountID, delegateID id.DelegateID, title, description string, impactScore uint64) (id.CredentialID, error)
	GetTotalImpact(ctx context.Context, delegateID id.DelegateID) (uint64, error)
	TotalImpacts(ctx context.Context, delegateIDs []id.DelegateID) (map[id.DelegateID]uint64, error)
	GetDelegate(ctx context.Context, delegateID id.DelegateID) (*models.Delegate, error)
	ListDelegates(ctx context.Context) ([]*models.Delegate, error)
	GetCredential(ctx context.Context, credentialID id.CredentialID) (*models.Credential, error)
	ListCredentials(ctx context.Context, delegateID id.DelegateID) ([]*models.Credential, error)
}

// Handler serves the delegate and credential endpoints.
type Handler struct {
	service      Service
	logger       *slog.Logger
	jwtValidator authmw.JWTValidator
}

func New(service Service, logger *slog.Logger, jwtValidator authmw.JWTValidator) *Handler {
	return &Handler{
		service:      service,
		logger:       logger,
		jwtValidator: jwtValidator,
	}
}

// Register mounts the routes. Reads are public; writes need a bearer token
// whose subject becomes the caller.
func (h *Handler) Register(r chi.Router) {
	r.Get("/delegates", h.handleListDelegates)
	r.Get("/delegates/{id}", h.handleGetDelegate)
	r.Get("/delegates/{id}/impact", h.handleGetTotalImpact)
	r.Get("/delegates/{id}/credentials", h.handleListCredentials)
	r.Get("/impact", h.handleTotalImpacts)
	r.Get("/credentials/{id}", h.handleGetCredential)

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireCaller(h.jwtValidator, h.logger))
		r.Post("/delegates", h.handleRegisterDelegate)
		r.Post("/credentials", h.handleIssueCredential)
	})
}

func (h *Handler) handleRegisterDelegate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req RegisterDelegateRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		h.reject(ctx, w, "register delegate", err)
		return
	}

	delegateID, err := h.service.RegisterDelegate(ctx, requestcontext.Caller(ctx), req.Name, req.Specialization)
	if err != nil {
		h.reject(ctx, w, "register delegate", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, RegisterDelegateResponse{DelegateID: delegateID})
}

func (h *Handler) handleIssueCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req IssueCredentialRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		h.reject(ctx, w, "issue credential", err)
		return
	}
	if req.ImpactScore == nil {
		h.reject(ctx, w, "issue credential", dErrors.New(dErrors.CodeValidation, "impact_score is required"))
		return
	}

	credentialID, err := h.service.IssueCredential(ctx, requestcontext.Caller(ctx),
		req.DelegateID, req.Title, req.Description, *req.ImpactScore)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			// The caller is authenticated here; only the privilege is missing.
			err = dErrors.Wrap(err, dErrors.CodeForbidden, dErrors.MessageOf(err))
		}
		h.reject(ctx, w, "issue credential", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, IssueCredentialResponse{CredentialID: credentialID})
}

func (h *Handler) handleGetDelegate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	delegateID, err := id.ParseDelegateID(chi.URLParam(r, "id"))
	if err != nil {
		h.reject(ctx, w, "get delegate", err)
		return
	}
	delegate, err := h.service.GetDelegate(ctx, delegateID)
	if err != nil {
		h.reject(ctx, w, "get delegate", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, delegate)
}

func (h *Handler) handleListDelegates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	delegates, err := h.service.ListDelegates(ctx)
	if err != nil {
		h.reject(ctx, w, "list delegates", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, DelegateListResponse{Delegates: delegates})
}

func (h *Handler) handleGetTotalImpact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	delegateID, err := id.ParseDelegateID(chi.URLParam(r, "id"))
	if err != nil {
		h.reject(ctx, w, "get total impact", err)
		return
	}
	total, err := h.service.GetTotalImpact(ctx, delegateID)
	if err != nil {
		h.reject(ctx, w, "get total impact", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, TotalImpactResponse{DelegateID: delegateID, TotalImpact: total})
}

func (h *Handler) handleTotalImpacts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	delegateIDs, err := parseIDList(r.URL.Query().Get("ids"))
	if err != nil {
		h.reject(ctx, w, "total impacts", err)
		return
	}
	totals, err := h.service.TotalImpacts(ctx, delegateIDs)
	if err != nil {
		h.reject(ctx, w, "total impacts", err)
		return
	}

	resp := TotalImpactsResponse{Totals: make([]TotalImpactResponse, 0, len(totals))}
	for _, delegateID := range delegateIDs {
		if total, ok := totals[delegateID]; ok {
			resp.Totals = append(resp.Totals, TotalImpactResponse{DelegateID: delegateID, TotalImpact: total})
		}
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleListCredentials(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	delegateID, err := id.ParseDelegateID(chi.URLParam(r, "id"))
	if err != nil {
		h.reject(ctx, w, "list credentials", err)
		return
	}
	credentials, err := h.service.ListCredentials(ctx, delegateID)
	if err != nil {
		h.reject(ctx, w, "list credentials", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CredentialListResponse{Credentials: credentials})
}

func (h *Handler) handleGetCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	credentialID, err := id.ParseCredentialID(chi.URLParam(r, "id"))
	if err != nil {
		h.reject(ctx, w, "get credential", err)
		return
	}
	credential, err := h.service.GetCredential(ctx, credentialID)
	if err != nil {
		h.reject(ctx, w, "get credential", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, credential)
}

// reject logs at a level matching the failure and writes the error envelope.
func (h *Handler) reject(ctx context.Context, w http.ResponseWriter, action string, err error) {
	requestID := requestcontext.RequestID(ctx)
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "failed to "+action,
			"request_id", requestID,
			"error", err.Error(),
		)
	} else {
		h.logger.WarnContext(ctx, "rejected "+action,
			"request_id", requestID,
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}

// parseIDList parses a comma-separated list of delegate IDs, dropping duplicates.
func parseIDList(raw string) ([]id.DelegateID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "ids query parameter is required")
	}
	parts := strings.Split(raw, ",")
	if len(parts) > maxBatchIDs {
		return nil, dErrors.New(dErrors.CodeBadRequest, "too many ids")
	}
	seen := make(map[id.DelegateID]struct{}, len(parts))
	out := make([]id.DelegateID, 0, len(parts))
	for _, part := range parts {
		delegateID, err := id.ParseDelegateID(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		if _, dup := seen[delegateID]; dup {
			continue
		}
		seen[delegateID] = struct{}{}
		out = append(out, delegateID)
	}
	return out, nil
}

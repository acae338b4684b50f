package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	moderationservice "homeboard/contexts/marketplace/moderation-service"
	domainerrors "homeboard/contexts/marketplace/moderation-service/domain/errors"
	"homeboard/contexts/marketplace/moderation-service/ports"
	moderationhttp "homeboard/contexts/marketplace/moderation-service/transport/http"
	"homeboard/internal/platform/session"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "homeboard/internal/platform/httpserver/docs"
)

// maxImageBytes bounds a single attach-image upload.
const maxImageBytes = 10 << 20

type Server struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	addr       string
	moderation moderationservice.Module
	sessions   *session.Verifier
}

func New(
	moderation moderationservice.Module,
	sessions *session.Verifier,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		addr:       addr,
		moderation: moderation,
		sessions:   sessions,
	}
	s.registerRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /submissions", s.handleCreateSubmission)
	s.mux.HandleFunc("POST /submissions/{submission_id}/images", s.handleAttachImage)
	s.mux.HandleFunc("GET /submissions/{submission_id}", s.handleGetSubmission)
	s.mux.HandleFunc("GET /submissions", s.handleListOwnSubmissions)
	s.mux.HandleFunc("GET /submissions/summary", s.handleOwnSummary)

	s.mux.HandleFunc("GET /admin/submissions", s.handleListAllSubmissions)
	s.mux.HandleFunc("GET /admin/submissions/summary", s.handleAdminSummary)
	s.mux.HandleFunc("GET /admin/submissions/{submission_id}/audit", s.handleListAudits)
	s.mux.HandleFunc("POST /admin/submissions/{submission_id}/approve", s.handleApprove)
	s.mux.HandleFunc("POST /admin/submissions/{submission_id}/reject", s.handleReject)
	s.mux.HandleFunc("POST /admin/submissions/{submission_id}/cancel-approval", s.handleCancelApproval)
	s.mux.HandleFunc("POST /admin/conversions", s.handleConvertApproved)

	s.mux.HandleFunc("GET /listings", s.handleListListings)
	s.mux.HandleFunc("GET /listings/{listing_id}", s.handleGetListing)
	s.mux.HandleFunc("GET /assets/{asset_ref}", s.handleGetAsset)
}

// resolveCaller is the single place callers are identified: a bearer
// token from the session collaborator, or X-User-Id/X-User-Role headers
// for service-to-service calls.
func (s *Server) resolveCaller(r *http.Request) (session.Identity, bool) {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		if s.sessions == nil {
			return session.Identity{}, false
		}
		identity, err := s.sessions.Verify(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			return session.Identity{}, false
		}
		return identity, true
	}
	if userID := strings.TrimSpace(r.Header.Get("X-User-Id")); userID != "" {
		return session.Identity{
			UserID: userID,
			Admin:  strings.EqualFold(strings.TrimSpace(r.Header.Get("X-User-Role")), session.AdminRole),
		}, true
	}
	return session.Identity{}, false
}

func (s *Server) requireCaller(w http.ResponseWriter, r *http.Request) (session.Identity, bool) {
	identity, ok := s.resolveCaller(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_caller", "a valid session token or X-User-Id header is required")
		return session.Identity{}, false
	}
	return identity, true
}

func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) (session.Identity, bool) {
	identity, ok := s.requireCaller(w, r)
	if !ok {
		return session.Identity{}, false
	}
	if !identity.Admin {
		writeError(w, http.StatusForbidden, "admin_required", "this operation requires the admin role")
		return session.Identity{}, false
	}
	return identity, true
}

func (s *Server) handleCreateSubmission(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireCaller(w, r)
	if !ok {
		return
	}

	var req moderationhttp.CreateSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.moderation.Handler.CreateSubmissionHandler(r.Context(), identity.UserID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleAttachImage(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireCaller(w, r)
	if !ok {
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImageBytes))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "image_too_large", "image exceeds the upload limit")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_body", "reading the request body failed")
		return
	}

	resp, err := s.moderation.Handler.AttachImageHandler(
		r.Context(),
		ports.Actor{ID: identity.UserID, Admin: identity.Admin},
		r.PathValue("submission_id"),
		data,
	)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireCaller(w, r)
	if !ok {
		return
	}

	resp, err := s.moderation.Handler.GetSubmissionHandler(
		r.Context(),
		ports.Actor{ID: identity.UserID, Admin: identity.Admin},
		r.PathValue("submission_id"),
	)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListOwnSubmissions(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireCaller(w, r)
	if !ok {
		return
	}

	resp, err := s.moderation.Handler.ListOwnSubmissionsHandler(r.Context(), identity.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOwnSummary(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireCaller(w, r)
	if !ok {
		return
	}

	resp, err := s.moderation.Handler.SummaryHandler(r.Context(), identity.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListAllSubmissions(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}

	resp, err := s.moderation.Handler.ListAllSubmissionsHandler(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdminSummary(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}

	resp, err := s.moderation.Handler.SummaryHandler(r.Context(), "")
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListAudits(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}

	resp, err := s.moderation.Handler.ListAuditsHandler(r.Context(), r.PathValue("submission_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}

	req, ok := decodeReview(w, r)
	if !ok {
		return
	}
	resp, err := s.moderation.Handler.ApproveSubmissionHandler(r.Context(), identity.UserID, r.PathValue("submission_id"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}

	req, ok := decodeReview(w, r)
	if !ok {
		return
	}
	resp, err := s.moderation.Handler.RejectSubmissionHandler(r.Context(), identity.UserID, r.PathValue("submission_id"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelApproval(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}

	req, ok := decodeReview(w, r)
	if !ok {
		return
	}
	resp, err := s.moderation.Handler.CancelApprovalHandler(r.Context(), identity.UserID, r.PathValue("submission_id"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleConvertApproved(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}

	resp, err := s.moderation.Handler.ConvertApprovedHandler(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListListings(w http.ResponseWriter, r *http.Request) {
	resp, err := s.moderation.Handler.ListListingsHandler(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	resp, err := s.moderation.Handler.GetListingHandler(r.Context(), r.PathValue("listing_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	data, mime, err := s.moderation.Assets.Open(r.Context(), r.PathValue("asset_ref"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func decodeReview(w http.ResponseWriter, r *http.Request) (moderationhttp.ReviewRequest, bool) {
	var req moderationhttp.ReviewRequest
	if r.Body == nil || r.ContentLength == 0 {
		return req, true
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return req, false
	}
	return req, true
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainerrors.ErrInvalidSubmissionInput):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidStatusFilter):
		writeError(w, http.StatusBadRequest, "invalid_status_filter", err.Error())
	case errors.Is(err, domainerrors.ErrSubmissionNotFound):
		writeError(w, http.StatusNotFound, "submission_not_found", err.Error())
	case errors.Is(err, domainerrors.ErrListingNotFound):
		writeError(w, http.StatusNotFound, "listing_not_found", err.Error())
	case errors.Is(err, domainerrors.ErrAssetNotFound):
		writeError(w, http.StatusNotFound, "asset_not_found", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, domainerrors.ErrUnauthorizedActor):
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, domainerrors.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domainerrors.ErrAssetRejected):
		writeError(w, http.StatusUnprocessableEntity, "asset_rejected", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, moderationhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

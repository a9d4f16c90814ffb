package orgs

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"orgsvc/internal/credentials"
	"orgsvc/internal/registry"
	"orgsvc/pkg/metrics"
	"orgsvc/pkg/problems"
)

const minNameLength = 3

type createBody struct {
	Name          string `json:"name"`
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (a *App) createOrg(w http.ResponseWriter, r *http.Request) {
	var b createBody
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		problems.Write(w, http.StatusBadRequest, "bad-request", "Bad Request", "invalid JSON body")
		return
	}
	b.Name = strings.TrimSpace(b.Name)
	b.AdminEmail = strings.TrimSpace(b.AdminEmail)
	switch {
	case len(b.Name) < minNameLength:
		problems.Write(w, http.StatusBadRequest, "validation", "Validation Failed", "organization name must be at least 3 characters")
		return
	case !strings.Contains(b.AdminEmail, "@"):
		problems.Write(w, http.StatusBadRequest, "validation", "Validation Failed", "admin email is not a valid address")
		return
	case len(b.AdminPassword) < credentials.MinPasswordLength:
		problems.Write(w, http.StatusBadRequest, "validation", "Validation Failed", "password must be at least 8 characters")
		return
	}

	t, err := a.svc.Create(r.Context(), b.Name, b.AdminEmail, b.AdminPassword)
	if err != nil {
		metrics.LifecycleOps.WithLabelValues("create", "error").Inc()
		a.writeError(w, err)
		return
	}
	metrics.LifecycleOps.WithLabelValues("create", "ok").Inc()
	writeJSON(w, t, http.StatusCreated)
}

func (a *App) getOrg(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		problems.Write(w, http.StatusBadRequest, "validation", "Validation Failed", "name query parameter is required")
		return
	}
	t, err := a.svc.Get(r.Context(), name)
	if err != nil {
		metrics.LifecycleOps.WithLabelValues("get", "error").Inc()
		a.writeError(w, err)
		return
	}
	metrics.LifecycleOps.WithLabelValues("get", "ok").Inc()
	writeJSON(w, t, http.StatusOK)
}

func (a *App) adminLogin(w http.ResponseWriter, r *http.Request) {
	var b loginBody
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		problems.Write(w, http.StatusBadRequest, "bad-request", "Bad Request", "invalid JSON body")
		return
	}
	tok, err := a.svc.Authenticate(r.Context(), b.Email, b.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("denied").Inc()
		a.writeError(w, err)
		return
	}
	metrics.AuthAttempts.WithLabelValues("ok").Inc()
	writeJSON(w, tokenResponse{AccessToken: tok, TokenType: "bearer"}, http.StatusOK)
}

func (a *App) deleteOrg(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r.Context())
	if !ok {
		problems.Write(w, http.StatusUnauthorized, "unauthorized", "Unauthorized", genericAuthDetail)
		return
	}
	name := chi.URLParam(r, "name")
	if err := a.svc.Delete(r.Context(), name, claims.TenantID); err != nil {
		metrics.LifecycleOps.WithLabelValues("delete", "error").Inc()
		a.writeError(w, err)
		return
	}
	metrics.LifecycleOps.WithLabelValues("delete", "ok").Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) updateOrg(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r.Context())
	if !ok {
		problems.Write(w, http.StatusUnauthorized, "unauthorized", "Unauthorized", genericAuthDetail)
		return
	}
	name := r.URL.Query().Get("name")
	newName := strings.TrimSpace(r.URL.Query().Get("new_name"))
	if name == "" {
		problems.Write(w, http.StatusBadRequest, "validation", "Validation Failed", "name query parameter is required")
		return
	}
	if newName != "" && len(newName) < minNameLength {
		problems.Write(w, http.StatusBadRequest, "validation", "Validation Failed", "organization name must be at least 3 characters")
		return
	}
	t, err := a.svc.Rename(r.Context(), name, newName, claims.TenantID)
	if err != nil {
		metrics.LifecycleOps.WithLabelValues("rename", "error").Inc()
		a.writeError(w, err)
		return
	}
	metrics.LifecycleOps.WithLabelValues("rename", "ok").Inc()
	writeJSON(w, t, http.StatusOK)
}

// writeError maps the domain taxonomy onto fixed status codes. 503 marks
// the transient class so callers know a retry may help.
func (a *App) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrNameConflict):
		problems.Write(w, http.StatusBadRequest, "conflict", "Conflict", "organization name already exists")
	case errors.Is(err, registry.ErrEmailConflict):
		problems.Write(w, http.StatusBadRequest, "conflict", "Conflict", "admin email already registered for another organization")
	case errors.Is(err, ErrNotFound):
		problems.Write(w, http.StatusNotFound, "not-found", "Not Found", "organization not found")
	case errors.Is(err, ErrUnauthorized):
		problems.Write(w, http.StatusUnauthorized, "unauthorized", "Unauthorized", "incorrect email or password")
	case errors.Is(err, ErrForbidden):
		problems.Write(w, http.StatusForbidden, "forbidden", "Forbidden", "not authorized for this organization")
	case errors.Is(err, ErrUnavailable):
		problems.Write(w, http.StatusServiceUnavailable, "store-unavailable", "Store Unavailable", "storage temporarily unavailable, retry the operation")
	case errors.Is(err, ErrInconsistent):
		a.log.Errorw("inconsistent state surfaced", "err", err)
		problems.Write(w, http.StatusInternalServerError, "inconsistent", "Internal Error", "")
	default:
		a.log.Errorw("unhandled error", "err", err)
		problems.Write(w, http.StatusInternalServerError, "internal", "Internal Error", "")
	}
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package orgs

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"orgsvc/pkg/middleware"
)

// Handler builds the HTTP handler with routes and middleware.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recover(a.log))
	r.Use(middleware.Tracing())

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"message": "Organization Management Service API is running."}, http.StatusOK)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1/org", func(or chi.Router) {
		or.Post("/create", a.createOrg)
		or.Get("/get", a.getOrg)
		or.Post("/admin/login", a.adminLogin)

		// Mutating lifecycle ops require a tenant-scoped bearer token.
		or.Group(func(pr chi.Router) {
			pr.Use(a.bearerAuth)
			pr.Delete("/delete/{name}", a.deleteOrg)
			pr.Put("/update", a.updateOrg)
		})
	})

	return r
}

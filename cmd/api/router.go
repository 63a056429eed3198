package main

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/crucial707/hci-itam/internal/config"
	"github.com/crucial707/hci-itam/internal/handlers"
	"github.com/crucial707/hci-itam/internal/middleware"
	"github.com/crucial707/hci-itam/internal/repo"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newRouter wires repos, handlers and middleware onto a chi router.
func newRouter(db *sql.DB, cfg config.Config) http.Handler {
	assetRepo := repo.NewAssetRepo(db)
	auditRepo := repo.NewAuditRepo(db)

	assetHandler := &handlers.AssetHandler{Repo: assetRepo, AuditRepo: auditRepo, MaxImportBytes: cfg.MaxImportBytes}
	authHandler := &handlers.AuthHandler{
		UserRepo: repo.NewUserRepo(db),
		Secret:   []byte(cfg.JWTSecret),
		TokenTTL: time.Duration(cfg.JWTExpireHours) * time.Hour,
	}
	auditHandler := &handlers.AuditHandler{Repo: auditRepo}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			handlers.JSONError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ready"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	authLimiter := middleware.AuthRateLimiter(cfg.AuthRatePerMinute)
	r.Route("/auth", func(r chi.Router) {
		r.Use(authLimiter.Middleware)
		r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTMiddleware([]byte(cfg.JWTSecret)))

		r.Get("/assets", assetHandler.ListAssets)
		r.Get("/assets/template", assetHandler.Template)
		r.Get("/assets/summary", assetHandler.Summary)
		r.Get("/assets/{id}", assetHandler.GetAsset)
		r.Get("/audit", auditHandler.ListAudit)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			// The import handler enforces its own, larger body limit.
			r.Post("/assets/import", assetHandler.ImportAssets)

			r.Group(func(r chi.Router) {
				r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))
				r.Post("/assets", assetHandler.CreateAsset)
				r.Put("/assets/{id}", assetHandler.UpdateAsset)
				r.Delete("/assets/{id}", assetHandler.DeleteAsset)
				r.Delete("/assets", assetHandler.BulkDeleteAssets)
			})
		})
	})

	return r
}

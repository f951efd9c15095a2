package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"insight-server/internal/config"
	"insight-server/internal/handler"
	"insight-server/internal/middleware"
	"insight-server/internal/model"
)

type Handlers struct {
	Auth          *handler.AuthHandler
	User          *handler.UserHandler
	Upload        *handler.UploadHandler
	Email         *handler.EmailHandler
	Schema        *handler.SchemaHandler
	Visualization *handler.VisualizationHandler
	Metrics       *handler.MetricsHandler
}

// New assembles the route table. The Authenticate filter runs on every /api
// route and only populates context; the exempt routes are the ones without
// RequireAuth. Everything else needs a valid bearer token, and the admin
// mutations additionally need the ADMIN role.
func New(
	cfg *config.Config,
	registry *prometheus.Registry,
	httpMetrics *middleware.Metrics,
	authMiddleware *middleware.AuthMiddleware,
	h Handlers,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(httpMetrics.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Handle("/uploads/profile-photos/*",
		http.StripPrefix("/uploads/profile-photos/", http.FileServer(http.Dir(cfg.UploadRoot))))
	r.Handle("/uploads/thumbnails/*",
		http.StripPrefix("/uploads/thumbnails/", http.FileServer(http.Dir(cfg.ThumbnailRoot))))

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))
		api.Use(authMiddleware.Authenticate)

		api.Route("/users", func(users chi.Router) {
			users.Post("/authenticate", h.Auth.Authenticate)
			users.Post("/register", h.Auth.Register)
			users.Get("/findByEmail/{email}", h.Auth.FindByEmail)

			users.With(middleware.RequireAuth).Get("/me", h.Auth.Me)
			users.With(middleware.RequireAuth).Put("/me/password", h.Auth.ChangeOwnPassword)

			admin := users.With(middleware.RequireAuth, authMiddleware.RequireRoles(model.RoleAdmin))
			admin.Get("/getAll", h.User.List)
			admin.Put("/{id}/password", h.User.UpdatePassword)
			admin.Put("/{id}/role", h.User.UpdateRole)
			admin.Put("/{id}/profile", h.User.UpdateProfile)
			admin.Delete("/{id}", h.User.Delete)
		})

		api.Route("/upload", func(upload chi.Router) {
			upload.Use(middleware.RequireAuth)
			upload.Post("/profile-photo/{id}", h.Upload.UploadProfilePhoto)
			upload.Delete("/profile-photo/{id}", h.Upload.DeleteProfilePhoto)
		})

		api.Route("/email", func(email chi.Router) {
			email.Use(middleware.RequireAuth)
			email.Post("/share-dashboard", h.Email.ShareDashboard)
			email.Post("/reset-password", h.Email.ResetPassword)
		})

		api.With(middleware.RequireAuth).Get("/schema/tables", h.Schema.Tables)
		api.With(middleware.RequireAuth).Post("/visualizations/generate", h.Visualization.Generate)

		api.Route("/metrics", func(metrics chi.Router) {
			metrics.Use(middleware.RequireAuth)
			metrics.Get("/dashboard", h.Metrics.Dashboard)
			metrics.Get("/quick-metrics", h.Metrics.Quick)
		})
	})

	return r
}

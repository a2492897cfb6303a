package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/isdelr/quill-be/internal/api/handlers"
	"github.com/isdelr/quill-be/internal/auth"
	"github.com/isdelr/quill-be/internal/metrics"
	"github.com/isdelr/quill-be/internal/services"
	"github.com/isdelr/quill-be/internal/websocket"
	"golang.org/x/time/rate"
)

// Deps is everything the router dispatches to.
type Deps struct {
	Users    services.UserServiceProvider
	Articles services.ArticleServiceProvider
	Events   services.EventServiceProvider
	Guard    *auth.Guard
	Hub      *websocket.Hub
	Metrics  *metrics.Collector

	AllowedOrigins    []string
	AuthRatePerMinute int
}

// NewRouter creates and configures a new Chi router.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if d.Metrics != nil {
		r.Use(instrument(d.Metrics))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(d.Users, d.Guard)
	profileHandler := handlers.NewProfileHandler(d.Users, d.Guard)
	articleHandler := handlers.NewArticleHandler(d.Articles, d.Guard)
	eventHandler := handlers.NewEventHandler(d.Events)
	wsHandler := handlers.NewWebSocketHandler(d.Hub, d.AllowedOrigins)

	perMinute := d.AuthRatePerMinute
	if perMinute <= 0 {
		perMinute = 20
	}
	authLimit := newIPRateLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}
	r.Get("/ws", wsHandler.Serve)

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Use(authLimit.Middleware)
			r.Post("/", userHandler.Register)
			r.Post("/login", userHandler.Login)
		})

		r.Get("/user", userHandler.GetCurrent)
		r.Put("/user", userHandler.Update)

		r.Route("/profiles/{username}", func(r chi.Router) {
			r.Get("/", profileHandler.Get)
			r.Post("/follow", profileHandler.Follow)
			r.Delete("/follow", profileHandler.Unfollow)
		})

		r.Route("/articles", func(r chi.Router) {
			r.Post("/", articleHandler.Create)
			r.Route("/{slug}", func(r chi.Router) {
				r.Get("/", articleHandler.Get)
				r.Put("/", articleHandler.Update)
				r.Post("/favorite", articleHandler.Favorite)
				r.Delete("/favorite", articleHandler.Unfavorite)
				r.Get("/comments", articleHandler.Comments)
				r.Post("/comments", articleHandler.AddComment)
			})
		})

		r.Get("/tags", articleHandler.Tags)
		r.Get("/events", eventHandler.GetRecent)
	})

	return r
}

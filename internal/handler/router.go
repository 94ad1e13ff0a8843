package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/moodsync/moodsync-api/internal/config"
	"github.com/moodsync/moodsync-api/internal/middleware"
	"github.com/moodsync/moodsync-api/internal/model"
	"github.com/moodsync/moodsync-api/shared/auth"
)

// maxBodyBytes limits request bodies to 10 KB; the auth surface has no
// legitimate use for anything larger.
const maxBodyBytes = 10 << 10

// NewRouter assembles the full HTTP surface: /api/auth routes, /health, and
// a JSON 404 for everything else.
func NewRouter(
	h *AuthHandler,
	jwtAuth *auth.JWTAuthenticator,
	cfg *config.Config,
	logger *zerolog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(corsHeaders(cfg.ClientURL))
	r.Use(limitBody)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{
			"status":      "success",
			"message":     "Server is running",
			"environment": cfg.Env,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password", h.ResetPassword)
		r.Get("/verify-email/{token}", h.VerifyEmail)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtAuth))
			r.Get("/me", h.GetCurrentUser)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authorize(model.RoleAdmin))
				r.Get("/users", h.ListUsers)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, http.StatusNotFound, "Route not found: "+req.URL.Path)
	})

	return r
}

// requestLogger logs one line per request after it completes.
func requestLogger(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", chimiddleware.GetReqID(r.Context())).
				Msg("request completed")
		})
	}
}

func corsHeaders(clientURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", clientURL)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Credentials", "true")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		next.ServeHTTP(w, r)
	})
}

package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"slidegen-backend/internal/handlers"
	"slidegen-backend/internal/middleware"
	"slidegen-backend/internal/storage"
)

type Options struct {
	JWTAuth             *middleware.JWTAuth
	AuthHandler         *handlers.AuthHandler
	PresentationHandler *handlers.PresentationHandler
	WebSocket           http.HandlerFunc
	FrontendURL         string
	// FilesDir is served under /files/ when decks are stored on local disk.
	FilesDir string
	// AuthLimiter defaults to 10 requests per minute per IP.
	AuthLimiter *middleware.RateLimiter
}

func New(opts Options) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(opts.FrontendURL))

	authLimiter := opts.AuthLimiter
	if authLimiter == nil {
		authLimiter = middleware.NewRateLimiter(10, time.Minute)
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"AI Slide Generator API is running"}`))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// ──── Auth Routes ────
	r.Route("/auth", func(r chi.Router) {
		r.Use(authLimiter.Middleware)
		r.Post("/signup", opts.AuthHandler.SignUp)
		r.Post("/signin", opts.AuthHandler.SignIn)
		r.Post("/refresh", opts.AuthHandler.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(opts.JWTAuth.Middleware)
			r.Post("/signout", opts.AuthHandler.SignOut)
			r.Get("/me", opts.AuthHandler.Me)
		})
	})

	// ──── Presentation Routes ────
	r.Route("/ppt", func(r chi.Router) {
		r.Use(opts.JWTAuth.Middleware)
		r.Post("/generate-ppt", opts.PresentationHandler.GeneratePPT)
		r.Post("/jobs", opts.PresentationHandler.CreateJob)
		r.Get("/jobs/{id}", opts.PresentationHandler.GetJob)
		r.Get("/presentations", opts.PresentationHandler.List)
		r.Get("/presentations/{id}", opts.PresentationHandler.Get)
		r.Delete("/presentations/{id}", opts.PresentationHandler.Delete)
	})

	// ──── WebSocket ────
	if opts.WebSocket != nil {
		r.Get("/ws", opts.WebSocket)
	}

	if opts.FilesDir != "" {
		fs := http.StripPrefix(storage.LocalFilesPrefix, http.FileServer(http.Dir(opts.FilesDir)))
		r.Handle(storage.LocalFilesPrefix+"*", fs)
	}

	return r
}

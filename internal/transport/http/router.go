package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/notes-api-nosql/internal/application/account"
	"github.com/notes-api-nosql/internal/application/auth"
	"github.com/notes-api-nosql/internal/application/note"
	"github.com/notes-api-nosql/internal/application/otp"
	"github.com/notes-api-nosql/internal/config"
	"github.com/notes-api-nosql/internal/metrics"
	"github.com/notes-api-nosql/internal/transport/http/handler"
	appmiddleware "github.com/notes-api-nosql/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router. The returned stop
// function releases the rate limiter's background goroutine.
func NewRouter(cfg *config.Config, deps *Deps) (http.Handler, func()) {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authRL := appmiddleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	otpSvc := otp.NewService(otp.ServiceDeps{
		Users:  deps.UserRepo,
		Sender: deps.OTPSender,
		TTL:    deps.OTPTTL,
	})
	authSvc := auth.NewService(auth.ServiceDeps{
		OTP:      otpSvc,
		Google:   deps.Google,
		Accounts: account.NewLinker(deps.UserRepo),
		Tokens:   deps.JWTProvider,
	})
	noteSvc := note.NewService(deps.NoteRepo)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	noteH := handler.NewNoteHandler(noteSvc)

	r.Get("/health", healthH.Check)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(authRL.Limit)
			r.Post("/send-otp", authH.SendOTP)
			r.Post("/verify-otp", authH.VerifyOTP)
			r.Post("/google", authH.Google)
		})

		r.Route("/notes", func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))
			r.Get("/", noteH.List)
			r.Post("/", noteH.Create)
			r.Put("/{id}", noteH.Update)
			r.Delete("/{id}", noteH.Delete)
		})
	})

	return r, authRL.Stop
}

package routes

import (
	"net/http"

	"github.com/storebox/storebox/internal/app"
	"github.com/storebox/storebox/internal/handler"
	"github.com/storebox/storebox/internal/middleware"
)

func SetupRoutes(a *app.App) http.Handler {
	auth := handler.NewAuthHandler(a.AuthService)
	file := handler.NewFileHandler(a.FileService)

	mux := http.NewServeMux()

	// Auth flow (rate limited: these issue emails)
	rateLimiter := middleware.RateLimitAuth()

	mux.HandleFunc("POST /auth/sign-up", rateLimiter(middleware.RequireGuest(auth.SignUp)))
	mux.HandleFunc("POST /auth/sign-in", rateLimiter(middleware.RequireGuest(auth.SignIn)))
	mux.HandleFunc("POST /auth/otp/resend", rateLimiter(auth.ResendOTP))
	mux.HandleFunc("POST /auth/verify", auth.Verify)
	mux.HandleFunc("POST /auth/sign-out", auth.SignOut)

	// Files and usage
	mux.HandleFunc("GET /api/me", middleware.RequireAuth(auth.Me))
	mux.HandleFunc("POST /api/files", middleware.RequireAuth(file.Upload))
	mux.HandleFunc("GET /api/files", middleware.RequireAuth(file.List))
	mux.HandleFunc("PATCH /api/files/{id}/name", middleware.RequireAuth(file.Rename))
	mux.HandleFunc("PUT /api/files/{id}/users", middleware.RequireAuth(file.Share))
	mux.HandleFunc("DELETE /api/files/{id}", middleware.RequireAuth(file.Delete))
	mux.HandleFunc("GET /api/files/{id}/download", middleware.RequireAuth(file.Download))
	mux.HandleFunc("GET /api/usage", middleware.RequireAuth(file.Usage))

	// Global middleware, executed top to bottom
	return middleware.Chain(
		mux,
		middleware.Config(a.Cfg),
		middleware.RequestLogging,
		middleware.Auth(a.AuthService),
	)
}

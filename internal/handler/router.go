/*
Package handler provides the HTTP handlers and routing setup for the LANShare server.

This file defines the main Router, applying middleware like logging, CORS, and
IP-based rate limiting before delegating requests to specific handlers (REST
API and WebSocket).
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"lanshare/internal/pkg/auth/jwt"
	"lanshare/internal/pkg/limiter"
	"lanshare/internal/pkg/logx"
	"lanshare/internal/pkg/resp"
)

const (
	// CredentialRate limits login/register attempts per IP. The realtime
	// handshake is deliberately left uncapped.
	CredentialRate  = 0.5
	CredentialBurst = 5
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
func Router(deps *AppDeps) http.Handler {
	credentialLimiter := limiter.NewIPRateLimiter(rate.Limit(CredentialRate), CredentialBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp.RespondFields(w, r, resp.Fields{
			"status":  "ok",
			"service": "LANShare Server",
			"store":   deps.Store.Kind(),
		})
	})

	// Uploaded files are served publicly; image and file messages reference
	// these URLs directly.
	r.Get("/uploads/{filename}", HandleServeUpload(deps))

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(auth chi.Router) {
			auth.With(credentialLimiter.Middleware).Post("/register", HandleRegister(deps))
			auth.With(credentialLimiter.Middleware).Post("/login", HandleLogin(deps))

			auth.Group(func(private chi.Router) {
				private.Use(jwt.Authenticator(deps.Config.JWTSecret, false))
				private.Use(RequireUser(deps))

				private.Get("/verify", HandleVerify(deps))
				private.Get("/profile", HandleGetProfile(deps))
				private.Put("/profile", HandleUpdateProfile(deps))
				private.Put("/password", HandleChangePassword(deps))
			})
		})

		api.Group(func(private chi.Router) {
			private.Use(jwt.Authenticator(deps.Config.JWTSecret, false))
			private.Use(RequireUser(deps))

			private.Post("/upload/image", HandleUploadImage(deps))
			private.Post("/upload/file", HandleUploadFile(deps))
			private.Get("/files", HandleListFiles(deps))
			private.Delete("/files/{filename}", HandleDeleteFile(deps))
		})

		// Download-style routes accept the token as a query parameter because
		// plain download links cannot set headers.
		api.Group(func(download chi.Router) {
			download.Use(jwt.Authenticator(deps.Config.JWTSecret, true))
			download.Use(RequireUser(deps))

			download.Get("/download/{filename}", HandleDownloadUpload(deps))

			download.Route("/filesystem", func(fs chi.Router) {
				fs.Get("/list", HandleFsList(deps))
				fs.Get("/root", HandleFsRoot(deps))
				fs.Get("/disks", HandleFsDisks(deps))
				fs.Get("/download", HandleFsDownload(deps))
				fs.Get("/download-folder", HandleFsDownloadFolder(deps))
			})
		})
	})

	r.Get("/ws", HandleWebSocket(wsUpgrader, deps))

	return r
}

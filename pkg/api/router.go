package api

import (
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
	"github.com/keydeck/keydeck/pkg/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/go-chi/chi/v5"
)

func CreateMux(c config.KeydeckConfig, apiFunctions *KeydeckAPIStruct) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(PrometheusMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "PUT", "POST", "DELETE", "HEAD", "OPTION"},
		AllowedHeaders:   []string{"User-Agent", "Content-Type", "Accept", "Accept-Encoding", "Accept-Language", "Cache-Control", "Connection", "DNT", "Host", "Origin", "Pragma", "Referer"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Get("/healthcheck", apiFunctions.Healthcheck)
	r.Get("/login", apiFunctions.Login)
	r.Get("/logout", apiFunctions.Logout)
	r.Get("/oauth/callback", apiFunctions.OAuthCallback)

	if c.Prometheus.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	api := chi.NewRouter()
	api.Use(jwtauth.Verifier(apiFunctions.tokenAuth))
	api.Use(apiFunctions.Authenticator)

	api.Get("/keys", apiFunctions.ListKeys)
	api.Post("/keys", apiFunctions.CreateKey)
	api.Put("/keys/{id}", apiFunctions.EditKey)
	api.Delete("/keys/{id}", apiFunctions.DeleteKey)
	api.Get("/keys/last-validated", apiFunctions.LastValidatedKey)

	api.Get("/usage", apiFunctions.GetUsage)
	api.Post("/playground/validate", apiFunctions.ValidateKey)

	r.Mount("/api", api)

	return r
}

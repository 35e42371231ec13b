package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/keydeck/keydeck/pkg/config"
	"github.com/keydeck/keydeck/pkg/keys"
	"github.com/keydeck/keydeck/pkg/storage/database"
	"github.com/keydeck/keydeck/pkg/usage"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

type KeydeckAPIStruct struct {
	config    config.KeydeckConfig
	service   *keys.Service
	gate      keys.Gate
	snapshots *usage.Store
	db        database.Database

	tokenAuth *jwtauth.JWTAuth
	oauth     *oauth2.Config
}

func NewKeydeckAPI(c config.KeydeckConfig, service *keys.Service, gate keys.Gate, snapshots *usage.Store, db database.Database) *KeydeckAPIStruct {
	return &KeydeckAPIStruct{
		config:    c,
		service:   service,
		gate:      gate,
		snapshots: snapshots,
		db:        db,
		tokenAuth: jwtauth.New("HS256", []byte(c.OAuth.JWTSecret), nil),
		oauth: &oauth2.Config{
			ClientID:     c.OAuth.ClientID,
			ClientSecret: c.OAuth.ClientSecret,
			RedirectURL:  c.OAuth.RedirectURL,
			Scopes:       []string{"email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  c.OAuth.AuthURL,
				TokenURL: c.OAuth.TokenURL,
			},
		},
	}
}

func RunAPI(ctx context.Context, conf config.API, mux *chi.Mux) {
	log.Debug().Int("port", conf.Port).Msg("Starting API")

	server := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", conf.Port),
		Handler: mux,
	}

	serverCtx, serverStopCtx := context.WithCancel(context.Background())

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Err(err).Msg("Error serving API")
			serverStopCtx()
		}
	}()

	go func() {
		<-ctx.Done()

		log.Debug().Msg("Stopping API")

		shutdownCtx, cancel := context.WithTimeout(serverCtx, 30*time.Second)
		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Error().Err(err).Msg("Error shutting down API")
		}

		cancel()
		serverStopCtx()
	}()

	log.Debug().Msg("Waiting for graceful shutdown")
	<-serverCtx.Done()

	log.Debug().Msg("API server stopped")
}

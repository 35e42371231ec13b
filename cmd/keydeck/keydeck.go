package keydeck

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/keydeck/keydeck/pkg/api"
	"github.com/keydeck/keydeck/pkg/config"
	"github.com/keydeck/keydeck/pkg/keys"
	"github.com/keydeck/keydeck/pkg/storage/database"
	"github.com/keydeck/keydeck/pkg/usage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func setupLogs(logConfig config.Logging) {
	// Equivalent of Lshortfile
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		short := file
		for i := len(file) - 1; i > 0; i-- {
			if file[i] == '/' {
				short = file[i+1:]
				break
			}
		}
		file = short
		return file + ":" + strconv.Itoa(line)
	}

	logLevel := zerolog.InfoLevel
	switch logConfig.Level {
	case "panic":
		logLevel = zerolog.PanicLevel
	case "fatal":
		logLevel = zerolog.FatalLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "debug":
		logLevel = zerolog.DebugLevel
	case "trace":
		logLevel = zerolog.TraceLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	if logConfig.JSONFormat {
		log.Logger = log.With().Caller().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Caller().Logger()
	}
}

func Run(configPath string) {
	conf, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", configPath).Msg("Unable to load config")
	}

	setupLogs(conf.Logging)

	db, err := database.NewConnection(conf.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to connect to the key store")
	}

	snapshots := usage.NewStore()
	gate := keys.NewGate(conf.Usage.AggregateLimit)
	repo := keys.NewRepository(db)
	service := keys.NewService(repo, gate, snapshots)

	apiFunctions := api.NewKeydeckAPI(conf, service, gate, snapshots, db)
	mux := api.CreateMux(conf, apiFunctions)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api.RunAPI(ctx, conf.API, mux)
}

// Command paldesigner-server runs the HTTP import API: accepts a
// world-save zip upload, normalizes its Level.sav, and persists the
// resulting planner rows to sqlite.
package main

import (
	"net/http"
	"os"

	"github.com/discjenny/paldesigner/internal/config"
	"github.com/discjenny/paldesigner/internal/hints"
	"github.com/discjenny/paldesigner/internal/httpapi"
	"github.com/discjenny/paldesigner/internal/normalize"
	"github.com/discjenny/paldesigner/internal/store/sqlitestore"
)

func main() {
	cfg, err := config.Load(false)
	if err != nil {
		os.Stderr.WriteString("paldesigner-server: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := config.NewLogger(cfg)

	if err := os.MkdirAll("storage", 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create artifact storage root")
	}

	store, err := sqlitestore.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer store.Close()

	hintRegistry := hints.NewRegistry(cfg.HintDiscoveryFile)
	driver := normalize.NewDriver(hintRegistry, log)

	srv := &httpapi.Server{
		Store:             store,
		Driver:            driver,
		Log:               log,
		MaxImportZipBytes: cfg.MaxImportZipBytes,
		ArtifactRoot:      ".",
	}

	log.Info().Str("addr", cfg.Addr()).Msg("server listening")
	if err := http.ListenAndServe(cfg.Addr(), srv.Router()); err != nil {
		log.Fatal().Err(err).Msg("server crashed")
	}
}

package main

import (
	"net/http"
	"os"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/semihsari152/coregame/handlers"
	"github.com/semihsari152/coregame/lib/catalog"
	"github.com/semihsari152/coregame/lib/db"
	"github.com/semihsari152/coregame/lib/health"
	"github.com/semihsari152/coregame/lib/importer"
	"github.com/semihsari152/coregame/lib/playtime"
	"github.com/semihsari152/coregame/lib/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "coregame.db"
	}

	gdb, err := db.Open(dbPath, logger)
	if err != nil {
		logger.Error("Failed to open database", slog.Any("error", err))
		os.Exit(1)
	}

	tokens := catalog.NewTokenProvider(
		os.Getenv("CATALOG_AUTH_URL"),
		os.Getenv("CATALOG_CLIENT_ID"),
		os.Getenv("CATALOG_CLIENT_SECRET"),
		logger,
	)
	catalogClient := catalog.NewClient(os.Getenv("CATALOG_API_URL"), os.Getenv("CATALOG_CLIENT_ID"), tokens, logger)
	playtimeClient := playtime.NewClient(os.Getenv("PLAYTIME_API_URL"), logger)

	s := store.New(gdb, logger)
	imp := importer.New(s, catalogClient, playtimeClient, logger)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", health.Check(gdb))
	r.Post("/import/{externalID}", handlers.HandleImport(imp))
	r.Get("/games", handlers.HandleGames(s))
	r.Get("/games/{slug}", handlers.HandleGame(s))
	r.Get("/search", handlers.HandleSearch(catalogClient))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("Starting server", slog.String("port", port))
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.Error("Server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

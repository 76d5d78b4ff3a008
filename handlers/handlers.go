package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/semihsari152/coregame/lib/catalog"
	"github.com/semihsari152/coregame/lib/importer"
	"github.com/semihsari152/coregame/lib/store"
	"github.com/semihsari152/coregame/lib/validation"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", slog.Any("error", err))
	}
}

// HandleImport triggers an import of one external catalog id. The four
// pipeline error kinds map onto distinct status codes; a degraded but
// successful import is a plain 200.
func HandleImport(imp *importer.Importer) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		externalID, err := validation.ParseExternalID(chi.URLParam(req, "externalID"))
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}

		game, err := imp.ImportByExternalID(req.Context(), externalID)
		if err != nil {
			var notFound *importer.NotFoundError
			var authErr *catalog.AuthError
			var catErr *catalog.CatalogError
			var persistErr *importer.PersistenceError
			switch {
			case errors.As(err, &notFound):
				validation.WriteError(w, err, http.StatusNotFound)
			case errors.As(err, &authErr), errors.As(err, &catErr):
				slog.Error("Catalog import failed", slog.Int64("external_id", externalID), slog.Any("error", err))
				validation.WriteError(w, fmt.Errorf("catalog fetch failed"), http.StatusBadGateway)
			case errors.As(err, &persistErr):
				slog.Error("Import commit failed", slog.Int64("external_id", externalID), slog.Any("error", err))
				validation.WriteError(w, fmt.Errorf("failed to persist import"), http.StatusInternalServerError)
			default:
				slog.Error("Import failed", slog.Int64("external_id", externalID), slog.Any("error", err))
				validation.WriteError(w, fmt.Errorf("import failed"), http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, game, http.StatusOK)
	}
}

// HandleGame serves one imported game, fully loaded, by slug.
func HandleGame(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		slug := chi.URLParam(req, "slug")
		if slug == "" {
			validation.WriteError(w, fmt.Errorf("missing slug"), http.StatusBadRequest)
			return
		}

		game, err := s.FindGameBySlug(req.Context(), slug)
		if err != nil {
			slog.Error("Failed to look up game", slog.String("slug", slug), slog.Any("error", err))
			validation.WriteError(w, fmt.Errorf("lookup failed"), http.StatusInternalServerError)
			return
		}
		if game == nil {
			validation.WriteError(w, fmt.Errorf("game not found"), http.StatusNotFound)
			return
		}

		full, err := s.LoadGame(req.Context(), game.ID)
		if err != nil {
			slog.Error("Failed to load game", slog.String("slug", slug), slog.Any("error", err))
			validation.WriteError(w, fmt.Errorf("load failed"), http.StatusInternalServerError)
			return
		}

		writeJSON(w, full, http.StatusOK)
	}
}

// HandleGames lists the most recently synced games.
func HandleGames(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		limit := 20
		if raw := req.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				validation.WriteError(w, fmt.Errorf("invalid limit: %q", raw), http.StatusBadRequest)
				return
			}
			limit = parsed
		}
		if err := validation.ValidateLimit(limit); err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}

		games, err := s.RecentGames(req.Context(), limit)
		if err != nil {
			slog.Error("Failed to list games", slog.Any("error", err))
			validation.WriteError(w, fmt.Errorf("listing failed"), http.StatusInternalServerError)
			return
		}

		writeJSON(w, games, http.StatusOK)
	}
}

// HandleSearch passes a title search through to the remote catalog
// without importing anything.
func HandleSearch(c *catalog.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		term := req.URL.Query().Get("q")
		if err := validation.ValidateSearchTerm(term); err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}

		records, err := c.SearchByTitle(req.Context(), term, 20)
		if err != nil {
			slog.Error("Catalog search failed", slog.String("term", term), slog.Any("error", err))
			validation.WriteError(w, fmt.Errorf("search failed"), http.StatusBadGateway)
			return
		}

		writeJSON(w, records, http.StatusOK)
	}
}

package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/semihsari152/coregame/lib/store"
	"github.com/semihsari152/coregame/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testStore(t *testing.T) (*gorm.DB, *store.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := gdb.AutoMigrate(
		&models.Genre{}, &models.Platform{}, &models.Company{},
		&models.Theme{}, &models.Keyword{}, &models.PlayerPerspective{},
		&models.GameMode{}, &models.Game{}, &models.GameCompany{},
		&models.Website{}, &models.MediaItem{},
		&models.RatingSnapshot{}, &models.PlaytimeSnapshot{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return gdb, store.New(gdb, logger)
}

func TestHandleGame(t *testing.T) {
	gdb, s := testStore(t)
	externalID := int64(1942)
	game := models.Game{
		Title:        "Hollow Knight",
		Slug:         "hollow-knight",
		ExternalID:   &externalID,
		LastSyncedAt: time.Now(),
	}
	if err := gdb.Create(&game).Error; err != nil {
		t.Fatalf("failed to seed game: %v", err)
	}

	r := chi.NewRouter()
	r.Get("/games/{slug}", HandleGame(s))

	t.Run("found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games/hollow-knight", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var got models.Game
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if got.Title != "Hollow Knight" {
			t.Errorf("title = %q", got.Title)
		}
	})

	t.Run("missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games/unknown", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestHandleImportRejectsBadID(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/import/{externalID}", HandleImport(nil))

	for _, raw := range []string{"abc", "0", "-5"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/import/"+raw, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("id %q: status = %d, want 400", raw, rec.Code)
		}
	}
}

func TestHandleGamesLimitValidation(t *testing.T) {
	_, s := testStore(t)

	r := chi.NewRouter()
	r.Get("/games", HandleGames(s))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games?limit=5000", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

// Package store is the persistence collaborator for the import
// pipeline. It wraps GORM behind the small contract the orchestrator
// consumes: per-kind lookup and create, game lookup by slug or
// external id, and a unit of work whose Commit is the only durable
// side effect of an import.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"log/slog"

	"github.com/semihsari152/coregame/models"
	"gorm.io/gorm"
)

type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

func New(db *gorm.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// FindGameByExternalID returns the game with the given external id, or
// nil when none exists.
func (s *Store) FindGameByExternalID(ctx context.Context, externalID int64) (*models.Game, error) {
	var game models.Game
	err := s.db.WithContext(ctx).Where("external_id = ?", externalID).First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up game by external id: %w", err)
	}
	return &game, nil
}

// FindGameBySlug returns the game with the given slug, or nil.
func (s *Store) FindGameBySlug(ctx context.Context, slug string) (*models.Game, error) {
	var game models.Game
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up game by slug: %w", err)
	}
	return &game, nil
}

// LoadGame returns a game with every association preloaded.
func (s *Store) LoadGame(ctx context.Context, id uint) (*models.Game, error) {
	var game models.Game
	err := s.db.WithContext(ctx).
		Preload("Genres").
		Preload("Platforms").
		Preload("Themes").
		Preload("Keywords").
		Preload("PlayerPerspectives").
		Preload("GameModes").
		Preload("Companies.Company").
		Preload("Websites").
		Preload("Media").
		Preload("Rating").
		Preload("Playtime").
		First(&game, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	return &game, nil
}

// RecentGames returns the most recently synced games.
func (s *Store) RecentGames(ctx context.Context, limit int) ([]models.Game, error) {
	var games []models.Game
	err := s.db.WithContext(ctx).Order("last_synced_at desc").Limit(limit).Find(&games).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent games: %w", err)
	}
	return games, nil
}

// Begin opens a unit of work. Everything staged through the returned
// Tx becomes durable only on Commit.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", tx.Error)
	}
	return &Tx{db: tx, logger: s.logger}, nil
}

// Tx is one import's unit of work.
type Tx struct {
	db     *gorm.DB
	logger *slog.Logger
}

func (t *Tx) Commit() error {
	if err := t.db.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback discards the unit of work. Safe to call after Commit.
func (t *Tx) Rollback() {
	err := t.db.Rollback().Error
	if err != nil && !errors.Is(err, gorm.ErrInvalidTransaction) && !errors.Is(err, sql.ErrTxDone) {
		t.logger.Error("Failed to roll back transaction", slog.Any("error", err))
	}
}

// FindGameBySlug looks up a game by slug inside the unit of work, so
// slug probing sees rows staged earlier in the same import.
func (t *Tx) FindGameBySlug(slug string) (*models.Game, error) {
	var game models.Game
	err := t.db.Where("slug = ?", slug).First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up game by slug: %w", err)
	}
	return &game, nil
}

// AddGame stages the fully assembled aggregate, including all linked
// taxonomy, media, and snapshot rows.
func (t *Tx) AddGame(game *models.Game) error {
	if err := t.db.Create(game).Error; err != nil {
		return fmt.Errorf("failed to add game: %w", err)
	}
	return nil
}

// SaveGame stages updates to an existing aggregate.
func (t *Tx) SaveGame(game *models.Game) error {
	if err := t.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(game).Error; err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}
	return nil
}

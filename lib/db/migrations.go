package db

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/semihsari152/coregame/models"
	"gorm.io/gorm"
)

// tablesToDrop lists tables left over from earlier schema generations
// that should be removed if they still exist.
var (
	tablesToDrop = []string{
		"game_genre_links",
		"game_import_logs",
		"game_tags",
		"import_queue",
		"legacy_games",
		"legacy_screenshots",
		"time_to_beats",
	}
	indexesToDrop = []string{
		"idx_games_title",
		"idx_legacy_games_title",
		"idx_media_items_game",
	}
)

// RunMigrations brings the schema up to date and applies SQLite
// tuning.
func RunMigrations(db *gorm.DB, logger *slog.Logger) error {
	ctx := context.Background()

	if err := enableSQLiteOptimizations(ctx, db, logger); err != nil {
		return fmt.Errorf("failed to enable SQLite optimizations: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Genre{},
		&models.Platform{},
		&models.Company{},
		&models.Theme{},
		&models.Keyword{},
		&models.PlayerPerspective{},
		&models.GameMode{},
		&models.Game{},
		&models.GameCompany{},
		&models.Website{},
		&models.MediaItem{},
		&models.RatingSnapshot{},
		&models.PlaytimeSnapshot{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	for _, table := range tablesToDrop {
		if err := dropTableIfExists(ctx, db, table, logger); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	if err := dropIndexes(ctx, db, logger); err != nil {
		return fmt.Errorf("failed to drop indexes: %w", err)
	}

	if err := createAdditionalIndexes(ctx, db, logger); err != nil {
		return fmt.Errorf("failed to create additional indexes: %w", err)
	}

	return nil
}

// dropIndexes drops the indexes if they exist
func dropIndexes(ctx context.Context, db *gorm.DB, logger *slog.Logger) error {
	for _, index := range indexesToDrop {
		if err := db.WithContext(ctx).Exec("DROP INDEX IF EXISTS " + index).Error; err != nil {
			return fmt.Errorf("failed to drop index %s: %w", index, err)
		} else {
			logger.InfoContext(ctx, "Dropped index", slog.String("index", index))
		}
	}
	return nil
}

// dropTableIfExists drops a table if it exists
func dropTableIfExists(ctx context.Context, db *gorm.DB, tableName string, logger *slog.Logger) error {
	if err := db.WithContext(ctx).Exec("DROP TABLE IF EXISTS " + tableName).Error; err != nil {
		return fmt.Errorf("failed to drop table: %w", err)
	} else {
		logger.Info("Successfully dropped table", slog.String("table", tableName))
	}

	return nil
}

// enableSQLiteOptimizations enables SQLite-specific optimizations
func enableSQLiteOptimizations(ctx context.Context, db *gorm.DB, logger *slog.Logger) error {
	optimizations := []string{
		"PRAGMA journal_mode=WAL",    // Enable WAL mode for better concurrency
		"PRAGMA synchronous=NORMAL",  // Faster writes while maintaining safety
		"PRAGMA cache_size=1000",     // Increase cache size
		"PRAGMA foreign_keys=ON",     // Enable foreign key constraints
		"PRAGMA temp_store=MEMORY",   // Store temporary tables in memory
		"PRAGMA mmap_size=134217728", // Enable memory-mapped I/O (128MB)
		"PRAGMA optimize",            // Enable query optimization
	}

	for _, pragma := range optimizations {
		if err := db.WithContext(ctx).Exec(pragma).Error; err != nil {
			logger.Warn("Failed to execute pragma", slog.String("pragma", pragma), slog.Any("error", err))
		} else {
			logger.Info("Successfully executed pragma", slog.String("pragma", pragma))
		}
	}

	return nil
}

// createAdditionalIndexes creates additional indexes for performance
func createAdditionalIndexes(ctx context.Context, db *gorm.DB, logger *slog.Logger) error {
	additionalIndexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_games_last_synced ON games(last_synced_at)",
		"CREATE INDEX IF NOT EXISTS idx_games_release_date ON games(release_date)",
		"CREATE INDEX IF NOT EXISTS idx_media_items_game_kind ON media_items(game_id, kind)",
		"CREATE INDEX IF NOT EXISTS idx_websites_game_category ON websites(game_id, category)",
		"CREATE INDEX IF NOT EXISTS idx_game_companies_roles ON game_companies(game_id, is_developer, is_publisher)",
	}

	for _, indexSQL := range additionalIndexes {
		if err := db.WithContext(ctx).Exec(indexSQL).Error; err != nil {
			logger.Warn("Failed to create index", slog.String("sql", indexSQL), slog.Any("error", err))
		} else {
			logger.Info("Successfully created index", slog.String("sql", indexSQL))
		}
	}

	return nil
}

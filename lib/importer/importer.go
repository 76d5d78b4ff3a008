// Package importer implements the game metadata import pipeline: it
// fetches a canonical record from the remote catalog, reconciles
// taxonomies and media against the local store, attaches best-effort
// rating and playtime snapshots, and commits the assembled aggregate
// in a single transaction.
package importer

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"log/slog"

	"github.com/semihsari152/coregame/lib/catalog"
	"github.com/semihsari152/coregame/lib/playtime"
	"github.com/semihsari152/coregame/lib/store"
	"github.com/semihsari152/coregame/models"
	"golang.org/x/sync/singleflight"
)

// CatalogAPI is the slice of the catalog client the importer consumes.
type CatalogAPI interface {
	GetByID(ctx context.Context, id int64) (*catalog.Record, error)
	GetPlaytimeStub(ctx context.Context, gameExternalID int64) *catalog.TimeToBeatStub
}

// PlaytimeAPI is the advisory completion-time lookup.
type PlaytimeAPI interface {
	Lookup(ctx context.Context, title string) *playtime.Record
}

// importState tracks where a single import is in its lifecycle.
type importState string

const (
	stateFetching    importState = "fetching"
	stateReconciling importState = "reconciling"
	statePersisting  importState = "persisting"
	stateDone        importState = "done"
	stateFailed      importState = "failed"
)

type Importer struct {
	store    *store.Store
	catalog  CatalogAPI
	playtime PlaytimeAPI
	logger   *slog.Logger

	// Collapses concurrent imports of the same external id into one
	// pipeline run; later callers receive the first run's result.
	group singleflight.Group
}

func New(s *store.Store, c CatalogAPI, p PlaytimeAPI, logger *slog.Logger) *Importer {
	return &Importer{
		store:    s,
		catalog:  c,
		playtime: p,
		logger:   logger,
	}
}

// ImportByExternalID imports the catalog record with the given
// external id into the local store and returns the committed
// aggregate. When a game with that external id already exists, the
// existing record is refreshed from the catalog rather than returned
// stale. Failures surface as *NotFoundError, *catalog.CatalogError,
// *catalog.AuthError, or *PersistenceError; degraded enrichment
// (missing playtime, skipped taxonomy entries) is not an error.
func (i *Importer) ImportByExternalID(ctx context.Context, externalID int64) (*models.Game, error) {
	v, err, shared := i.group.Do(strconv.FormatInt(externalID, 10), func() (interface{}, error) {
		return i.importOne(ctx, externalID)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		i.logger.Debug("Joined in-flight import", slog.Int64("external_id", externalID))
	}
	return v.(*models.Game), nil
}

func (i *Importer) importOne(ctx context.Context, externalID int64) (*models.Game, error) {
	logger := i.logger.With(slog.Int64("external_id", externalID))

	existing, err := i.store.FindGameByExternalID(ctx, externalID)
	if err != nil {
		return nil, &PersistenceError{Op: "existence check failed", Err: err}
	}
	if existing != nil {
		logger.Info("Game already imported, refreshing", slog.String("slug", existing.Slug))
		existing, err = i.store.LoadGame(ctx, existing.ID)
		if err != nil {
			return nil, &PersistenceError{Op: "failed to load existing game", Err: err}
		}
	}

	logger.Debug("Import state changed", slog.String("state", string(stateFetching)))
	record, err := i.catalog.GetByID(ctx, externalID)
	if err != nil {
		logger.Error("Catalog fetch failed", slog.Any("error", err))
		return nil, err
	}
	if record == nil {
		return nil, &NotFoundError{ExternalID: externalID}
	}

	logger.Debug("Import state changed", slog.String("state", string(stateReconciling)), slog.String("title", record.Name))

	tx, err := i.store.Begin(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "failed to open unit of work", Err: err}
	}
	defer tx.Rollback()

	game := existing
	if game == nil {
		game = &models.Game{}
	}

	run := pipelineRun{
		ctx:     ctx,
		tx:      tx,
		record:  record,
		game:    game,
		refresh: existing != nil,
		logger:  logger,
	}
	if err := run.execute(i.steps()); err != nil {
		logger.Debug("Import state changed", slog.String("state", string(stateFailed)))
		return nil, err
	}

	// Reconciliation is finished; the commit below is the only durable
	// side effect, so a cancelled context here still discards cleanly.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Debug("Import state changed", slog.String("state", string(statePersisting)))
	if run.refresh {
		err = tx.SaveGame(game)
	} else {
		err = tx.AddGame(game)
	}
	if err != nil {
		logger.Debug("Import state changed", slog.String("state", string(stateFailed)))
		return nil, &PersistenceError{Op: "failed to persist aggregate", Err: err}
	}
	if err := tx.Commit(); err != nil {
		logger.Debug("Import state changed", slog.String("state", string(stateFailed)))
		return nil, &PersistenceError{Op: "commit failed", Err: err}
	}

	logger.Info("Import finished",
		slog.String("state", string(stateDone)),
		slog.String("slug", game.Slug),
		slog.Int("media", len(game.Media)),
		slog.Bool("playtime", game.Playtime != nil))
	return game, nil
}

// steps is the import pipeline in order. Fatal steps abort the import;
// soft steps absorb their failures so one auxiliary source cannot sink
// an otherwise-successful import.
func (i *Importer) steps() []step {
	return []step{
		{name: "base mapping", policy: fatal, run: i.mapBase},
		{name: "company reconciliation", policy: soft, run: i.reconcileCompanies},
		{name: "platform reconciliation", policy: soft, run: i.reconcilePlatforms},
		{name: "genre reconciliation", policy: soft, run: i.reconcileGenres},
		{name: "player perspective reconciliation", policy: soft, run: i.reconcilePerspectives},
		{name: "game mode reconciliation", policy: soft, run: i.reconcileGameModes},
		{name: "theme reconciliation", policy: soft, run: i.reconcileThemes},
		{name: "keyword reconciliation", policy: soft, run: i.reconcileKeywords},
		{name: "website reconciliation", policy: soft, run: i.reconcileWebsites},
		{name: "media ingestion", policy: soft, run: i.ingestMedia},
		{name: "playtime snapshot", policy: soft, run: i.snapshotPlaytime},
		{name: "rating snapshot", policy: soft, run: i.snapshotRating},
	}
}

// mapBase populates the scalar fields and picks a unique slug. An
// existing game keeps its slug so its URL never changes on refresh.
func (i *Importer) mapBase(run *pipelineRun) error {
	record, game := run.record, run.game

	game.Title = record.Name
	game.Summary = record.Summary
	game.Storyline = record.Storyline
	game.ExternalID = &record.ID
	game.ExternalSlug = record.Slug
	game.ExternalURL = record.URL
	game.LastSyncedAt = time.Now()
	game.Complete = true

	if record.FirstReleaseDate > 0 {
		released := time.Unix(record.FirstReleaseDate, 0).UTC()
		game.ReleaseDate = &released
	}

	if record.Cover != nil {
		game.CoverURL = imageURL(record.Cover.URL, sizeCoverBig)
		game.CoverThumb = imageURL(record.Cover.URL, sizeThumb)
	}

	if !run.refresh {
		slug, err := i.uniqueSlug(run.tx, record.Name)
		if err != nil {
			return fmt.Errorf("failed to pick slug: %w", err)
		}
		game.Slug = slug
	}
	return nil
}

// uniqueSlug slugifies the title and probes the slug lookup, appending
// an incrementing numeric suffix until an unused slug is found.
func (i *Importer) uniqueSlug(tx *store.Tx, title string) (string, error) {
	base := slugify(title)
	candidate := base
	for n := 2; ; n++ {
		existing, err := tx.FindGameBySlug(candidate)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

func (i *Importer) snapshotRating(run *pipelineRun) error {
	record, game := run.record, run.game

	snapshot := game.Rating
	if snapshot == nil {
		snapshot = &models.RatingSnapshot{}
		game.Rating = snapshot
	}
	snapshot.UserRating = record.Rating
	snapshot.UserRatingCount = record.RatingCount
	snapshot.CriticRating = record.AggregatedRating
	snapshot.CriticRatingCount = record.AggregatedRatingCount
	snapshot.LastSyncedAt = time.Now()
	return nil
}

// snapshotPlaytime asks the playtime proxy for completion statistics,
// falling back to the catalog's own advisory time-to-beat resource on
// a miss. A miss on both just leaves the snapshot absent.
func (i *Importer) snapshotPlaytime(run *pipelineRun) error {
	record, game := run.record, run.game

	if found := i.playtime.Lookup(run.ctx, record.Name); found != nil {
		snapshot := game.Playtime
		if snapshot == nil {
			snapshot = &models.PlaytimeSnapshot{}
			game.Playtime = snapshot
		}
		snapshot.MainSeconds = found.MainSeconds
		snapshot.MainPolled = found.MainPolled
		snapshot.MainExtraSeconds = found.MainExtraSeconds
		snapshot.MainExtraPolled = found.MainExtraPolled
		snapshot.CompletionistSeconds = found.CompletionistSeconds
		snapshot.CompletionistPolled = found.CompletionistPolled
		snapshot.AllStylesSeconds = found.AllStylesSeconds
		snapshot.AllStylesPolled = found.AllStylesPolled
		snapshot.MatchedTitle = found.Title
		snapshot.MatchedExternalID = found.ID
		return nil
	}

	if stub := i.catalog.GetPlaytimeStub(run.ctx, record.ID); stub != nil {
		run.logger.Debug("Playtime proxy missed, using catalog stub")
		snapshot := game.Playtime
		if snapshot == nil {
			snapshot = &models.PlaytimeSnapshot{}
			game.Playtime = snapshot
		}
		snapshot.MainSeconds = stub.Hastily
		snapshot.MainExtraSeconds = stub.Normally
		snapshot.CompletionistSeconds = stub.Completely
		snapshot.AllStylesPolled = stub.Count
		snapshot.MatchedTitle = record.Name
		snapshot.MatchedExternalID = stub.ID
		return nil
	}

	run.logger.Info("No playtime data found", slog.String("title", record.Name))
	return nil
}

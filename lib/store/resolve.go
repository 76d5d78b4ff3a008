package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ResolvePolicy controls what Resolve does when neither lookup matches.
type ResolvePolicy int

const (
	// MatchOnly never creates: an unmatched entry resolves to nil.
	// Genres use this so unreviewed remote categories cannot grow the
	// local taxonomy canon.
	MatchOnly ResolvePolicy = iota
	// MatchThenCreate creates the entity when no lookup matches.
	MatchThenCreate
)

// TaxonomyKey identifies a remote taxonomy entry for resolution:
// external id first, display name second.
type TaxonomyKey struct {
	ExternalID int64
	Name       string
}

// FindByExternalID looks up a taxonomy entity by its external id.
// All taxonomy tables share the external_id column. Returns nil when
// absent.
func FindByExternalID[T any](t *Tx, externalID int64) (*T, error) {
	var entity T
	err := t.db.Where("external_id = ?", externalID).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up by external id: %w", err)
	}
	return &entity, nil
}

// FindByName looks up a taxonomy entity by display name. Returns nil
// when absent.
func FindByName[T any](t *Tx, name string) (*T, error) {
	var entity T
	err := t.db.Where("name = ?", name).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up by name: %w", err)
	}
	return &entity, nil
}

// Create stages a new taxonomy entity in the unit of work.
func Create[T any](t *Tx, entity *T) error {
	if err := t.db.Create(entity).Error; err != nil {
		return fmt.Errorf("failed to create entity: %w", err)
	}
	return nil
}

// Resolve finds or creates one taxonomy entity by the two-step lookup:
// external id first, then display name. Under MatchOnly an unmatched
// key resolves to (nil, nil); under MatchThenCreate the entity built by
// construct is staged and returned. A returned error always means the
// store itself failed, never a missing match.
func Resolve[T any](t *Tx, key TaxonomyKey, policy ResolvePolicy, construct func() *T) (*T, error) {
	if key.ExternalID != 0 {
		found, err := FindByExternalID[T](t, key.ExternalID)
		if err != nil {
			return nil, err
		}
		if found != nil {
			return found, nil
		}
	}

	if policy == MatchOnly {
		return nil, nil
	}

	if key.Name != "" {
		found, err := FindByName[T](t, key.Name)
		if err != nil {
			return nil, err
		}
		if found != nil {
			return found, nil
		}
	}

	entity := construct()
	if err := Create(t, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

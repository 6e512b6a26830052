package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/forkful/forkful-backend/internal/models"
)

// maxWriteRetries bounds optimistic-lock retries on a single aggregate
// before the write surfaces ErrConflict.
const maxWriteRetries = 3

// errStaleVersion signals that a version-checked update matched no row and
// the read-modify-write cycle must be retried.
var errStaleVersion = errors.New("stale aggregate version")

// mutateRecipe applies fn to the recipe aggregate under an optimistic
// version check. The whole aggregate is one row, so the rating list, the
// like-set, the comment list and the derived fields recomputed by fn land in
// a single atomic update; a reader never observes them out of step. Image
// normalization runs on every write.
func mutateRecipe(ctx context.Context, db *gorm.DB, id uuid.UUID, fn func(*models.Recipe) error) (*models.Recipe, error) {
	for attempt := 0; attempt < maxWriteRetries; attempt++ {
		var recipe models.Recipe
		if err := db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("recipe %s: %w", id, ErrNotFound)
			}
			return nil, err
		}

		if err := fn(&recipe); err != nil {
			return nil, err
		}
		recipe.NormalizeImages()

		err := writeVersioned(db.WithContext(ctx), &models.Recipe{}, recipe.ID, recipe.Version, &recipe)
		if errors.Is(err, errStaleVersion) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &recipe, nil
	}
	return nil, fmt.Errorf("recipe %s: concurrent writers exhausted retries: %w", id, ErrConflict)
}

// mutateUser is the user-aggregate counterpart of mutateRecipe.
func mutateUser(ctx context.Context, db *gorm.DB, id uuid.UUID, fn func(*models.User) error) (*models.User, error) {
	for attempt := 0; attempt < maxWriteRetries; attempt++ {
		var user models.User
		if err := db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
			}
			return nil, err
		}

		if err := fn(&user); err != nil {
			return nil, err
		}

		err := writeVersioned(db.WithContext(ctx), &models.User{}, user.ID, user.Version, &user)
		if errors.Is(err, errStaleVersion) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &user, nil
	}
	return nil, fmt.Errorf("user %s: concurrent writers exhausted retries: %w", id, ErrConflict)
}

// mutateUserPair applies fn to two distinct user aggregates inside one
// transaction, so a bidirectional edge is written to both sides or to
// neither. Rows are locked in ID order to keep concurrent pairs from
// deadlocking.
func mutateUserPair(ctx context.Context, db *gorm.DB, aID, bID uuid.UUID, fn func(a, b *models.User) error) error {
	for attempt := 0; attempt < maxWriteRetries; attempt++ {
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			first, second := aID, bID
			if second.String() < first.String() {
				first, second = second, first
			}

			users := make(map[uuid.UUID]*models.User, 2)
			for _, id := range []uuid.UUID{first, second} {
				var user models.User
				if err := tx.First(&user, "id = ?", id).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("user %s: %w", id, ErrNotFound)
					}
					return err
				}
				users[id] = &user
			}

			if err := fn(users[aID], users[bID]); err != nil {
				return err
			}

			for _, id := range []uuid.UUID{first, second} {
				user := users[id]
				if err := writeVersioned(tx, &models.User{}, user.ID, user.Version, user); err != nil {
					return err
				}
			}
			return nil
		})
		if errors.Is(err, errStaleVersion) {
			continue
		}
		return err
	}
	return fmt.Errorf("users %s/%s: concurrent writers exhausted retries: %w", aID, bID, ErrConflict)
}

// writeVersioned persists the full aggregate guarded by its previous
// version. A zero row count means another writer got there first.
func writeVersioned(db *gorm.DB, model interface{}, id uuid.UUID, prevVersion int, updated interface{}) error {
	switch v := updated.(type) {
	case *models.Recipe:
		v.Version = prevVersion + 1
	case *models.User:
		v.Version = prevVersion + 1
	}

	res := db.Model(model).
		Where("id = ? AND version = ?", id, prevVersion).
		Select("*").
		Omit("id", "created_at", "deleted_at").
		Updates(updated)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errStaleVersion
	}
	return nil
}

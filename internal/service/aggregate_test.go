package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/forkful/forkful-backend/internal/models"
)

func bumpRecipeVersion(t *testing.T, db *gorm.DB, id uuid.UUID) {
	t.Helper()
	require.NoError(t, db.Model(&models.Recipe{}).
		Where("id = ?", id).
		UpdateColumn("version", gorm.Expr("version + 1")).Error)
}

func TestMutateRecipeRetriesOnStaleVersion(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	recipe := createPublishedRecipe(t, db, nil, nil)

	calls := 0
	updated, err := mutateRecipe(ctx, db, recipe.ID, func(r *models.Recipe) error {
		calls++
		if calls == 1 {
			// A concurrent writer lands between our read and our write.
			bumpRecipeVersion(t, db, recipe.ID)
		}
		r.Title = "Rewritten Title"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "Rewritten Title", updated.Title)
}

func TestMutateRecipeGivesUpAfterRetries(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	recipe := createPublishedRecipe(t, db, nil, nil)

	calls := 0
	_, err := mutateRecipe(ctx, db, recipe.ID, func(r *models.Recipe) error {
		calls++
		bumpRecipeVersion(t, db, recipe.ID)
		return nil
	})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, maxWriteRetries, calls)
}

func TestMutateRecipeBumpsVersion(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	recipe := createPublishedRecipe(t, db, nil, nil)

	updated, err := mutateRecipe(ctx, db, recipe.ID, func(r *models.Recipe) error {
		r.Description = "Edited description."
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, recipe.Version+1, updated.Version)
}

func TestMutateRecipeNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := mutateRecipe(context.Background(), db, uuid.New(), func(r *models.Recipe) error {
		t.Fatal("fn must not run for a missing aggregate")
		return nil
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMutateUserPairAllOrNothing(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")

	// One side missing fails the whole pair write.
	err := mutateUserPair(ctx, db, alice.ID, uuid.New(), func(a, b *models.User) error {
		a.Following = a.Following.Add(b.ID)
		return nil
	})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.First(alice, "id = ?", alice.ID).Error)
	assert.Empty(t, alice.Following)
}

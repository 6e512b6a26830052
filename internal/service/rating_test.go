package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitRatingAveraging(t *testing.T) {
	db := setupTestDB(t)
	svc := newRatingService(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	recipe := createPublishedRecipe(t, db, &author.ID, nil)

	updated, err := svc.SubmitRating(ctx, recipe.ID, alice.ID, 5, "excellent")
	require.NoError(t, err)
	assert.Equal(t, 5.0, updated.AverageRating)
	assert.Equal(t, 1, updated.TotalRatings)

	updated, err = svc.SubmitRating(ctx, recipe.ID, bob.ID, 3, "")
	require.NoError(t, err)
	assert.Equal(t, 4.0, updated.AverageRating)
	assert.Equal(t, 2, updated.TotalRatings)
}

func TestSubmitRatingRoundsToOneDecimal(t *testing.T) {
	db := setupTestDB(t)
	svc := newRatingService(db)
	ctx := context.Background()

	recipe := createPublishedRecipe(t, db, nil, nil)

	for _, score := range []int{5, 4, 4} {
		_, err := svc.SubmitRating(ctx, recipe.ID, uuid.New(), score, "")
		require.NoError(t, err)
	}

	got, err := newRecipeService(db).GetRecipe(ctx, recipe.ID)
	require.NoError(t, err)
	// 13/3 = 4.333... rounds to 4.3.
	assert.Equal(t, 4.3, got.AverageRating)
	assert.Equal(t, 3, got.TotalRatings)
}

func TestSubmitRatingReplacesPriorEntry(t *testing.T) {
	db := setupTestDB(t)
	svc := newRatingService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	recipe := createPublishedRecipe(t, db, nil, nil)

	_, err := svc.SubmitRating(ctx, recipe.ID, alice.ID, 5, "first impression")
	require.NoError(t, err)
	_, err = svc.SubmitRating(ctx, recipe.ID, bob.ID, 2, "")
	require.NoError(t, err)

	updated, err := svc.SubmitRating(ctx, recipe.ID, alice.ID, 3, "changed my mind")
	require.NoError(t, err)

	assert.Equal(t, 2, updated.TotalRatings)
	assert.Equal(t, 2.5, updated.AverageRating)

	var aliceRatings int
	for _, r := range updated.Ratings {
		if r.UserID == alice.ID {
			aliceRatings++
			assert.Equal(t, 3, r.Score)
			assert.Equal(t, "changed my mind", r.Review)
		}
	}
	assert.Equal(t, 1, aliceRatings)
}

func TestSubmitRatingValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newRatingService(db)
	ctx := context.Background()

	recipe := createPublishedRecipe(t, db, nil, nil)

	_, err := svc.SubmitRating(ctx, recipe.ID, uuid.New(), 0, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.SubmitRating(ctx, recipe.ID, uuid.New(), 6, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.SubmitRating(ctx, recipe.ID, uuid.New(), 4, strings.Repeat("x", maxReviewLen+1))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.SubmitRating(ctx, uuid.New(), uuid.New(), 4, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkHelpfulIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := newRatingService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	reader := createTestUser(t, db, "reader")
	recipe := createPublishedRecipe(t, db, nil, nil)

	rated, err := svc.SubmitRating(ctx, recipe.ID, alice.ID, 4, "solid")
	require.NoError(t, err)
	ratingID := rated.Ratings[0].ID

	for i := 0; i < 2; i++ {
		updated, err := svc.MarkHelpful(ctx, recipe.ID, ratingID, reader.ID)
		require.NoError(t, err)
		rating := updated.FindRating(ratingID)
		require.NotNil(t, rating)
		assert.Len(t, rating.Helpful, 1)
	}
}

func TestMarkHelpfulUnknownRating(t *testing.T) {
	db := setupTestDB(t)
	svc := newRatingService(db)

	recipe := createPublishedRecipe(t, db, nil, nil)

	_, err := svc.MarkHelpful(context.Background(), recipe.ID, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRatingUpdatesAuthorStats(t *testing.T) {
	db := setupTestDB(t)
	svc := newRatingService(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	recipe := createPublishedRecipe(t, db, &author.ID, nil)

	_, err := svc.SubmitRating(ctx, recipe.ID, uuid.New(), 4, "")
	require.NoError(t, err)

	require.NoError(t, db.First(author, "id = ?", author.ID).Error)
	assert.Equal(t, 1, author.Stats.TotalRatings)
	assert.Equal(t, 4.0, author.Stats.AverageRating)
}

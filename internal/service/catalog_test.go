package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkful/forkful-backend/internal/models"
)

func TestSearchFiltersCompose(t *testing.T) {
	db := setupTestDB(t)
	svc := newCatalogService(db)
	ctx := context.Background()

	match := createPublishedRecipe(t, db, nil, func(r *models.Recipe) {
		r.Title = "Quick Pasta Primavera"
		r.Cuisine = "Italian"
		r.PrepTime = 10
		r.CookTime = 15
	})
	createPublishedRecipe(t, db, nil, func(r *models.Recipe) {
		r.Title = "Slow Pasta Ragu"
		r.Cuisine = "Italian"
		r.PrepTime = 30
		r.CookTime = 120
	})
	createPublishedRecipe(t, db, nil, func(r *models.Recipe) {
		r.Title = "Pad Thai"
		r.Cuisine = "Thai"
		r.PrepTime = 10
		r.CookTime = 10
	})

	results, err := svc.Search(ctx, "pasta", SearchFilters{Cuisine: "Italian", MaxTime: 30})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, match.ID, results[0].ID)
}

func TestSearchMatchesTags(t *testing.T) {
	db := setupTestDB(t)
	svc := newCatalogService(db)

	tagged := createPublishedRecipe(t, db, nil, func(r *models.Recipe) {
		r.Title = "Sunday Stew"
		r.Tags = models.JSONBStringArray{"comfort", "winter"}
	})
	createPublishedRecipe(t, db, nil, func(r *models.Recipe) {
		r.Title = "Summer Salad"
	})

	results, err := svc.Search(context.Background(), "winter", SearchFilters{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, tagged.ID, results[0].ID)
}

func TestSearchExcludesDraftsAndPrivate(t *testing.T) {
	db := setupTestDB(t)
	svc := newCatalogService(db)

	createPublishedRecipe(t, db, nil, func(r *models.Recipe) {
		r.Title = "Hidden Pasta"
		r.IsPublic = false
	})
	draft := testRecipe(nil)
	draft.Title = "Draft Pasta"
	require.NoError(t, db.Create(draft).Error)

	results, err := svc.Search(context.Background(), "pasta", SearchFilters{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchDietaryMatchesAnyLabel(t *testing.T) {
	db := setupTestDB(t)
	svc := newCatalogService(db)

	vegan := createPublishedRecipe(t, db, nil, func(r *models.Recipe) {
		r.Title = "Chickpea Curry"
		r.Dietary = models.JSONBStringArray{"vegan"}
	})
	keto := createPublishedRecipe(t, db, nil, func(r *models.Recipe) {
		r.Title = "Steak Salad"
		r.Dietary = models.JSONBStringArray{"keto"}
	})
	createPublishedRecipe(t, db, nil, func(r *models.Recipe) {
		r.Title = "Plain Toast"
	})

	results, err := svc.Search(context.Background(), "", SearchFilters{Dietary: []string{"vegan", "keto"}})
	require.NoError(t, err)
	require.Len(t, results, 2)
	ids := []interface{}{results[0].ID, results[1].ID}
	assert.Contains(t, ids, vegan.ID)
	assert.Contains(t, ids, keto.ID)
}

func TestSearchMinRating(t *testing.T) {
	db := setupTestDB(t)
	svc := newCatalogService(db)

	good := createPublishedRecipe(t, db, nil, func(r *models.Recipe) {
		r.Title = "Crowd Favorite"
		r.AverageRating = 4.5
		r.TotalRatings = 10
	})
	createPublishedRecipe(t, db, nil, func(r *models.Recipe) {
		r.Title = "Divisive Dish"
		r.AverageRating = 2.0
		r.TotalRatings = 4
	})

	results, err := svc.Search(context.Background(), "", SearchFilters{MinRating: 4})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, good.ID, results[0].ID)
}

func TestSearchRejectsMalformedFilters(t *testing.T) {
	db := setupTestDB(t)
	svc := newCatalogService(db)
	ctx := context.Background()

	_, err := svc.Search(ctx, "", SearchFilters{MinRating: 7})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.Search(ctx, "", SearchFilters{Cuisine: "Klingon"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.Search(ctx, "", SearchFilters{Dietary: []string{"radioactive"}})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGetPopularOrdersByViews(t *testing.T) {
	db := setupTestDB(t)
	svc := newCatalogService(db)

	second := createPublishedRecipe(t, db, nil, func(r *models.Recipe) {
		r.Title = "Runner Up"
		r.Views = 50
	})
	first := createPublishedRecipe(t, db, nil, func(r *models.Recipe) {
		r.Title = "Most Viewed"
		r.Views = 200
	})
	createPublishedRecipe(t, db, nil, func(r *models.Recipe) {
		r.Title = "Quiet One"
		r.Views = 1
	})

	results, err := svc.GetPopular(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, first.ID, results[0].ID)
	assert.Equal(t, second.ID, results[1].ID)
}

func TestGetTrendingHonorsWindow(t *testing.T) {
	db := setupTestDB(t)
	svc := newCatalogService(db)

	fresh := createPublishedRecipe(t, db, nil, func(r *models.Recipe) {
		r.Title = "This Week's Hit"
		r.Views = 10
	})
	old := createPublishedRecipe(t, db, nil, func(r *models.Recipe) {
		r.Title = "Last Month's Hit"
		r.Views = 1000
	})
	// Push the old recipe outside the trailing window.
	stale := time.Now().Add(-8 * 24 * time.Hour)
	require.NoError(t, db.Model(&models.Recipe{}).
		Where("id = ?", old.ID).
		UpdateColumn("created_at", stale).Error)

	results, err := svc.GetTrending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, fresh.ID, results[0].ID)
}

func TestGetTrendingOrdersByViewsThenLikes(t *testing.T) {
	db := setupTestDB(t)
	svc := newCatalogService(db)

	first := createPublishedRecipe(t, db, nil, func(r *models.Recipe) {
		r.Title = "Front Runner"
		r.Views = 50
	})
	second := createPublishedRecipe(t, db, nil, func(r *models.Recipe) {
		r.Title = "Well Liked"
		r.Views = 10
		r.LikeCount = 7
	})
	third := createPublishedRecipe(t, db, nil, func(r *models.Recipe) {
		r.Title = "Also Ran"
		r.Views = 10
		r.LikeCount = 1
	})
	// Most liked but least viewed; the cap pushes it off the shelf.
	createPublishedRecipe(t, db, nil, func(r *models.Recipe) {
		r.Title = "Cult Favorite"
		r.Views = 1
		r.LikeCount = 99
	})

	results, err := svc.GetTrending(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, first.ID, results[0].ID)
	assert.Equal(t, second.ID, results[1].ID)
	assert.Equal(t, third.ID, results[2].ID)
}

func TestGetPopularBreaksViewTiesByRating(t *testing.T) {
	db := setupTestDB(t)
	svc := newCatalogService(db)

	lower := createPublishedRecipe(t, db, nil, func(r *models.Recipe) {
		r.Title = "Crowd Pleaser"
		r.Views = 100
		r.AverageRating = 3.5
	})
	higher := createPublishedRecipe(t, db, nil, func(r *models.Recipe) {
		r.Title = "Critics' Choice"
		r.Views = 100
		r.AverageRating = 4.8
	})

	results, err := svc.GetPopular(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, higher.ID, results[0].ID)
	assert.Equal(t, lower.ID, results[1].ID)
}

func TestGetFeatured(t *testing.T) {
	db := setupTestDB(t)
	svc := newCatalogService(db)

	featured := createPublishedRecipe(t, db, nil, func(r *models.Recipe) {
		r.Title = "Editor's Pick"
		r.IsFeatured = true
	})
	createPublishedRecipe(t, db, nil, nil)

	results, err := svc.GetFeatured(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, featured.ID, results[0].ID)
}

func TestCatalogEmptyResultIsNotAnError(t *testing.T) {
	db := setupTestDB(t)
	svc := newCatalogService(db)
	ctx := context.Background()

	results, err := svc.Search(ctx, "nothing matches this", SearchFilters{})
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = svc.GetPopular(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

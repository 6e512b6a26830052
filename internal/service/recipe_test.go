package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkful/forkful-backend/internal/models"
)

func TestCreateRecipeStartsAsDraft(t *testing.T) {
	db := setupTestDB(t)
	svc := newRecipeService(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	recipe := testRecipe(&author.ID)
	// Client-supplied server-owned fields must be ignored.
	recipe.AverageRating = 5
	recipe.Views = 9000
	recipe.IsPublished = true

	created, err := svc.CreateRecipe(ctx, recipe)
	require.NoError(t, err)

	assert.False(t, created.IsPublished)
	assert.Zero(t, created.AverageRating)
	assert.Zero(t, created.Views)
	assert.Empty(t, created.Ratings)
	assert.NotEqual(t, uuid.Nil, created.ID)

	require.NoError(t, db.First(author, "id = ?", author.ID).Error)
	assert.Equal(t, 1, author.Stats.RecipesCreated)
}

func TestCreateRecipeValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newRecipeService(db)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*models.Recipe)
	}{
		{"missing title", func(r *models.Recipe) { r.Title = "" }},
		{"no ingredients", func(r *models.Recipe) { r.Ingredients = nil }},
		{"zero prep time", func(r *models.Recipe) { r.PrepTime = 0 }},
		{"zero servings", func(r *models.Recipe) { r.Servings = 0 }},
		{"unknown difficulty", func(r *models.Recipe) { r.Difficulty = "Impossible" }},
		{"unknown cuisine", func(r *models.Recipe) { r.Cuisine = "Martian" }},
		{"unknown unit", func(r *models.Recipe) { r.Ingredients[0].Unit = "hogshead" }},
		{"empty instruction", func(r *models.Recipe) { r.Instructions[0].Text = "" }},
		{"negative nutrition", func(r *models.Recipe) { r.Nutrition = &models.Nutrition{Calories: -1} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recipe := testRecipe(nil)
			tc.mutate(recipe)
			_, err := svc.CreateRecipe(ctx, recipe)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestCreateRecipeNormalizes(t *testing.T) {
	db := setupTestDB(t)
	svc := newRecipeService(db)

	recipe := testRecipe(nil)
	recipe.Tags = models.JSONBStringArray{" Pasta ", "pasta", "QUICK"}
	recipe.Instructions = models.InstructionList{
		{Step: 9, Text: "Boil."},
		{Step: 2, Text: "Serve."},
	}
	recipe.Images = models.ImageList{
		{URL: "https://img.example.com/a.jpg"},
		{URL: "https://img.example.com/b.jpg"},
	}

	created, err := svc.CreateRecipe(context.Background(), recipe)
	require.NoError(t, err)

	assert.Equal(t, models.JSONBStringArray{"pasta", "quick"}, created.Tags)
	assert.Equal(t, 1, created.Instructions[0].Step)
	assert.Equal(t, 2, created.Instructions[1].Step)

	primary := created.PrimaryImage()
	require.NotNil(t, primary)
	assert.Equal(t, "https://img.example.com/a.jpg", primary.URL)
}

func TestUpdateRecipeAuthorOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := newRecipeService(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	other := createTestUser(t, db, "other")
	recipe := createPublishedRecipe(t, db, &author.ID, nil)

	newTitle := "Renamed Pasta"
	_, err := svc.UpdateRecipe(ctx, recipe.ID, other.ID, &RecipeUpdate{Title: &newTitle})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.UpdateRecipe(ctx, recipe.ID, author.ID, &RecipeUpdate{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, newTitle, updated.Title)
	// Untouched fields survive a partial update.
	assert.Equal(t, recipe.Description, updated.Description)

	bad := ""
	_, err = svc.UpdateRecipe(ctx, recipe.ID, author.ID, &RecipeUpdate{Title: &bad})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPublishRecipeIsOneWay(t *testing.T) {
	db := setupTestDB(t)
	svc := newRecipeService(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	recipe := testRecipe(&author.ID)
	created, err := svc.CreateRecipe(ctx, recipe)
	require.NoError(t, err)

	published, err := svc.PublishRecipe(ctx, created.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, published.IsPublished)

	// Re-publishing is harmless.
	published, err = svc.PublishRecipe(ctx, created.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, published.IsPublished)

	other := createTestUser(t, db, "other")
	_, err = svc.PublishRecipe(ctx, created.ID, other.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteRecipePermissions(t *testing.T) {
	db := setupTestDB(t)
	svc := newRecipeService(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	other := createTestUser(t, db, "other")
	recipe := createPublishedRecipe(t, db, &author.ID, nil)

	err := svc.DeleteRecipe(ctx, recipe.ID, other.ID, false)
	assert.ErrorIs(t, err, ErrForbidden)

	// An admin may delete someone else's recipe.
	require.NoError(t, svc.DeleteRecipe(ctx, recipe.ID, other.ID, true))

	_, err = svc.GetRecipe(ctx, recipe.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIncrementViews(t *testing.T) {
	db := setupTestDB(t)
	svc := newRecipeService(db)
	ctx := context.Background()

	recipe := createPublishedRecipe(t, db, nil, nil)

	require.NoError(t, svc.IncrementViews(ctx, recipe.ID))
	require.NoError(t, svc.IncrementViews(ctx, recipe.ID))

	got, err := svc.GetRecipe(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Views)

	assert.ErrorIs(t, svc.IncrementViews(ctx, uuid.New()), ErrNotFound)
}

func TestReportRecipe(t *testing.T) {
	db := setupTestDB(t)
	svc := newRecipeService(db)
	ctx := context.Background()

	recipe := createPublishedRecipe(t, db, nil, nil)

	require.NoError(t, svc.ReportRecipe(ctx, recipe.ID, "spam"))
	require.NoError(t, svc.ReportRecipe(ctx, recipe.ID, "duplicate"))

	got, err := svc.GetRecipe(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ReportCount)
	assert.True(t, got.IsReported)

	assert.ErrorIs(t, svc.ReportRecipe(ctx, uuid.New(), "spam"), ErrNotFound)
}

func TestGetFavoriteRecipes(t *testing.T) {
	db := setupTestDB(t)
	recipeSvc := newRecipeService(db)
	socialSvc := newSocialService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	first := createPublishedRecipe(t, db, nil, nil)
	createPublishedRecipe(t, db, nil, nil)

	_, err := socialSvc.ToggleFavorite(ctx, alice.ID, first.ID)
	require.NoError(t, err)

	favorites, err := recipeSvc.GetFavoriteRecipes(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, first.ID, favorites[0].ID)
}

func TestAddAndRemoveImage(t *testing.T) {
	db := setupTestDB(t)
	svc := newRecipeService(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	recipe := createPublishedRecipe(t, db, &author.ID, nil)

	got, err := svc.AddImage(ctx, recipe.ID, author.ID, models.RecipeImage{
		URL:       "https://media.test/recipes/a/one.jpg",
		StorageID: "recipes/a/one.jpg",
	})
	require.NoError(t, err)
	require.Len(t, got.Images, 1)
	assert.True(t, got.Images[0].IsPrimary)

	got, err = svc.AddImage(ctx, recipe.ID, author.ID, models.RecipeImage{
		URL:       "https://media.test/recipes/a/two.jpg",
		StorageID: "recipes/a/two.jpg",
	})
	require.NoError(t, err)
	require.Len(t, got.Images, 2)
	assert.False(t, got.Images[1].IsPrimary)

	// Removing the primary promotes the remaining image.
	got, err = svc.RemoveImage(ctx, recipe.ID, author.ID, "recipes/a/one.jpg")
	require.NoError(t, err)
	require.Len(t, got.Images, 1)
	assert.Equal(t, "recipes/a/two.jpg", got.Images[0].StorageID)
	assert.True(t, got.Images[0].IsPrimary)
}

func TestImageMutationPolicy(t *testing.T) {
	db := setupTestDB(t)
	svc := newRecipeService(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	stranger := createTestUser(t, db, "stranger")
	recipe := createPublishedRecipe(t, db, &author.ID, nil)

	_, err := svc.AddImage(ctx, recipe.ID, stranger.ID, models.RecipeImage{
		URL:       "https://media.test/recipes/a/one.jpg",
		StorageID: "recipes/a/one.jpg",
	})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.AddImage(ctx, recipe.ID, author.ID, models.RecipeImage{})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.RemoveImage(ctx, recipe.ID, author.ID, "recipes/a/missing.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

package service

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/forkful/forkful-backend/internal/models"
	"github.com/forkful/forkful-backend/internal/testhelpers"
)

var userSeq int

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testhelpers.SetupTestDB(t)
}

func createTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	userSeq++
	user := &models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s-%d@example.com", name, userSeq),
		PasswordHash: "not-a-real-hash",
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func testRecipe(authorID *uuid.UUID) *models.Recipe {
	return &models.Recipe{
		Title:       "Weeknight Pasta",
		Description: "Quick tomato pasta for busy evenings.",
		Ingredients: models.IngredientList{
			{Name: "pasta", Quantity: "400", Unit: "g"},
			{Name: "tomatoes", Quantity: "3", Unit: "pieces"},
		},
		Instructions: models.InstructionList{
			{Step: 1, Text: "Boil the pasta."},
			{Step: 2, Text: "Simmer the sauce and combine."},
		},
		PrepTime:   10,
		CookTime:   15,
		Servings:   4,
		Difficulty: "Easy",
		Cuisine:    "Italian",
		Category:   "Dinner",
		AuthorID:   authorID,
		IsPublic:   true,
	}
}

// createPublishedRecipe inserts a recipe directly in published state,
// bypassing the draft workflow.
func createPublishedRecipe(t *testing.T, db *gorm.DB, authorID *uuid.UUID, mutate func(*models.Recipe)) *models.Recipe {
	t.Helper()
	recipe := testRecipe(authorID)
	recipe.IsPublished = true
	if mutate != nil {
		mutate(recipe)
	}
	require.NoError(t, db.Create(recipe).Error)
	return recipe
}

func newRecipeService(db *gorm.DB) *RecipeService {
	return NewRecipeService(db, NoopNotifier{}, zap.NewNop())
}

func newRatingService(db *gorm.DB) *RatingService {
	return NewRatingService(db, NoopNotifier{}, zap.NewNop())
}

func newSocialService(db *gorm.DB) *SocialService {
	return NewSocialService(db, NoopNotifier{}, zap.NewNop())
}

func newCommentService(db *gorm.DB) *CommentService {
	return NewCommentService(db, NoopNotifier{}, zap.NewNop())
}

func newCatalogService(db *gorm.DB) *CatalogService {
	return NewCatalogService(db, nil, zap.NewNop())
}

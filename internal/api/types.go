package api

import (
	"github.com/forkful/forkful-backend/internal/models"
)

// RegisterRequest is the payload for account registration.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest is the payload for credential login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// OAuthRequest carries an already-verified external identity; the OAuth
// handshake itself happens outside this backend.
type OAuthRequest struct {
	GoogleID string `json:"google_id" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
}

// AuthResponse returns the session token with the user it belongs to.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// CreateRecipeRequest is the payload for recipe creation.
type CreateRecipeRequest struct {
	Title        string                  `json:"title" binding:"required"`
	Description  string                  `json:"description" binding:"required"`
	Ingredients  models.IngredientList   `json:"ingredients" binding:"required"`
	Instructions models.InstructionList  `json:"instructions"`
	Images       models.ImageList        `json:"images"`
	PrepTime     int                     `json:"prep_time" binding:"required,min=1"`
	CookTime     int                     `json:"cook_time" binding:"required,min=1"`
	Servings     int                     `json:"servings" binding:"required,min=1"`
	Difficulty   string                  `json:"difficulty" binding:"required"`
	Cuisine      string                  `json:"cuisine" binding:"required"`
	Category     string                  `json:"category" binding:"required"`
	Tags         models.JSONBStringArray `json:"tags"`
	Dietary      models.JSONBStringArray `json:"dietary"`
	Nutrition    *models.Nutrition       `json:"nutrition"`
	IsPublic     *bool                   `json:"is_public"`
	Source       string                  `json:"source"`
}

// UpdateRecipeRequest carries partial content edits; absent fields are left
// unchanged.
type UpdateRecipeRequest struct {
	Title        *string                  `json:"title"`
	Description  *string                  `json:"description"`
	Ingredients  *models.IngredientList   `json:"ingredients"`
	Instructions *models.InstructionList  `json:"instructions"`
	Images       *models.ImageList        `json:"images"`
	PrepTime     *int                     `json:"prep_time"`
	CookTime     *int                     `json:"cook_time"`
	Servings     *int                     `json:"servings"`
	Difficulty   *string                  `json:"difficulty"`
	Cuisine      *string                  `json:"cuisine"`
	Category     *string                  `json:"category"`
	Tags         *models.JSONBStringArray `json:"tags"`
	Dietary      *models.JSONBStringArray `json:"dietary"`
	Nutrition    *models.Nutrition        `json:"nutrition"`
	IsPublic     *bool                    `json:"is_public"`
	Source       *string                  `json:"source"`
}

// RateRequest is the payload for rating submission.
type RateRequest struct {
	Score  int    `json:"score" binding:"required,min=1,max=5"`
	Review string `json:"review"`
}

// CommentRequest is the payload for comments and replies.
type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// ReportRequest is the payload for reporting a recipe.
type ReportRequest struct {
	Reason string `json:"reason"`
}

// UpdateProfileRequest carries partial profile edits.
type UpdateProfileRequest struct {
	Name        *string             `json:"name"`
	Bio         *string             `json:"bio"`
	Avatar      *string             `json:"avatar"`
	Preferences *models.Preferences `json:"preferences"`
}

// RecipeResponse decorates a recipe with its derived attributes.
type RecipeResponse struct {
	*models.Recipe
	TotalTime    int                 `json:"total_time"`
	CommentCount int                 `json:"comment_count"`
	PrimaryImage *models.RecipeImage `json:"primary_image,omitempty"`
}

// NewRecipeResponse builds the decorated view of a recipe.
func NewRecipeResponse(r *models.Recipe) RecipeResponse {
	return RecipeResponse{
		Recipe:       r,
		TotalTime:    r.TotalTime(),
		CommentCount: r.CommentCount(),
		PrimaryImage: r.PrimaryImage(),
	}
}

// NewRecipeListResponse decorates a result set.
func NewRecipeListResponse(recipes []*models.Recipe) []RecipeResponse {
	result := make([]RecipeResponse, len(recipes))
	for i, r := range recipes {
		result[i] = NewRecipeResponse(r)
	}
	return result
}

package api

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/forkful/forkful-backend/internal/middleware"
	"github.com/forkful/forkful-backend/internal/models"
	"github.com/forkful/forkful-backend/internal/service"
)

const maxImageBytes = 5 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

type RecipeHandler struct {
	recipeService  service.IRecipeService
	ratingService  service.IRatingService
	socialService  service.ISocialService
	commentService service.ICommentService
	mediaStore     service.MediaStore
}

// NewRecipeHandler wires the recipe endpoints. mediaStore may be nil, in
// which case image upload endpoints report the feature as unavailable.
func NewRecipeHandler(recipeService service.IRecipeService, ratingService service.IRatingService, socialService service.ISocialService, commentService service.ICommentService, mediaStore service.MediaStore) *RecipeHandler {
	return &RecipeHandler{
		recipeService:  recipeService,
		ratingService:  ratingService,
		socialService:  socialService,
		commentService: commentService,
		mediaStore:     mediaStore,
	}
}

// RegisterRoutes wires the recipe lifecycle endpoints. The caller decides
// which group carries authentication; everything here except GetRecipe
// expects an authenticated context.
func (h *RecipeHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/recipes/:id", h.GetRecipe)

	recipes := protected.Group("/recipes")
	{
		recipes.POST("", h.CreateRecipe)
		recipes.PUT("/:id", h.UpdateRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)
		recipes.POST("/:id/publish", h.PublishRecipe)
		recipes.POST("/:id/report", h.ReportRecipe)
		recipes.POST("/:id/featured", h.SetFeatured)
		recipes.POST("/:id/images", h.UploadImage)
		recipes.DELETE("/:id/images/*storageID", h.DeleteImage)
		recipes.POST("/:id/rate", h.RateRecipe)
		recipes.POST("/:id/ratings/:ratingID/helpful", h.MarkRatingHelpful)
		recipes.POST("/:id/like", h.ToggleLike)
		recipes.POST("/:id/favorite", h.ToggleFavorite)
		recipes.POST("/:id/comments", h.AddComment)
		recipes.POST("/:id/comments/:commentID/replies", h.AddReply)
		recipes.POST("/:id/comments/:commentID/like", h.ToggleCommentLike)
		recipes.DELETE("/:id/comments/:commentID", h.DeleteComment)
	}
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid recipe id"})
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), id)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	// Views are best effort; a failed bump never fails the read.
	_ = h.recipeService.IncrementViews(c.Request.Context(), id)

	c.JSON(http.StatusOK, NewRecipeResponse(recipe))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, middleware.ErrorResponse{Error: "authentication required"})
		return
	}

	var req CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: err.Error()})
		return
	}

	recipe := &models.Recipe{
		Title:        req.Title,
		Description:  req.Description,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
		Images:       req.Images,
		PrepTime:     req.PrepTime,
		CookTime:     req.CookTime,
		Servings:     req.Servings,
		Difficulty:   req.Difficulty,
		Cuisine:      req.Cuisine,
		Category:     req.Category,
		Tags:         req.Tags,
		Dietary:      req.Dietary,
		Nutrition:    req.Nutrition,
		AuthorID:     &userID,
		Source:       req.Source,
	}
	if req.IsPublic != nil {
		recipe.IsPublic = *req.IsPublic
	} else {
		recipe.IsPublic = true
	}

	created, err := h.recipeService.CreateRecipe(c.Request.Context(), recipe)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewRecipeResponse(created))
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, middleware.ErrorResponse{Error: "authentication required"})
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid recipe id"})
		return
	}

	var req UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: err.Error()})
		return
	}

	update := &service.RecipeUpdate{
		Title:        req.Title,
		Description:  req.Description,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
		Images:       req.Images,
		PrepTime:     req.PrepTime,
		CookTime:     req.CookTime,
		Servings:     req.Servings,
		Difficulty:   req.Difficulty,
		Cuisine:      req.Cuisine,
		Category:     req.Category,
		Tags:         req.Tags,
		Dietary:      req.Dietary,
		Nutrition:    req.Nutrition,
		IsPublic:     req.IsPublic,
		Source:       req.Source,
	}

	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), id, userID, update)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewRecipeResponse(recipe))
}

func (h *RecipeHandler) PublishRecipe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, middleware.ErrorResponse{Error: "authentication required"})
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid recipe id"})
		return
	}

	recipe, err := h.recipeService.PublishRecipe(c.Request.Context(), id, userID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewRecipeResponse(recipe))
}

func (h *RecipeHandler) SetFeatured(c *gin.Context) {
	if !isAdmin(c) {
		c.JSON(http.StatusForbidden, middleware.ErrorResponse{Error: "admin access required"})
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid recipe id"})
		return
	}

	var req struct {
		Featured bool `json:"featured"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: err.Error()})
		return
	}

	recipe, err := h.recipeService.SetFeatured(c.Request.Context(), id, req.Featured)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewRecipeResponse(recipe))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, middleware.ErrorResponse{Error: "authentication required"})
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid recipe id"})
		return
	}

	if err := h.recipeService.DeleteRecipe(c.Request.Context(), id, userID, isAdmin(c)); err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "recipe deleted"})
}

func (h *RecipeHandler) ReportRecipe(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid recipe id"})
		return
	}

	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.recipeService.ReportRecipe(c.Request.Context(), id, req.Reason); err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "report recorded"})
}

func (h *RecipeHandler) UploadImage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, middleware.ErrorResponse{Error: "authentication required"})
		return
	}
	if h.mediaStore == nil {
		c.JSON(http.StatusServiceUnavailable, middleware.ErrorResponse{Error: "image storage is not configured"})
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid recipe id"})
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "image file is required"})
		return
	}
	if header.Size > maxImageBytes {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "image exceeds the 5MB limit"})
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !allowedImageTypes[contentType] {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "unsupported image type"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "could not read image file"})
		return
	}
	defer file.Close()

	key := fmt.Sprintf("recipes/%s/%s%s", id, uuid.New(), filepath.Ext(header.Filename))
	url, err := h.mediaStore.Put(c.Request.Context(), key, file, contentType)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	recipe, err := h.recipeService.AddImage(c.Request.Context(), id, userID, models.RecipeImage{
		URL:       url,
		StorageID: key,
		Alt:       c.PostForm("alt"),
	})
	if err != nil {
		// The aggregate rejected the image; drop the orphaned object.
		_ = h.mediaStore.Delete(c.Request.Context(), key)
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewRecipeResponse(recipe))
}

func (h *RecipeHandler) DeleteImage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, middleware.ErrorResponse{Error: "authentication required"})
		return
	}
	if h.mediaStore == nil {
		c.JSON(http.StatusServiceUnavailable, middleware.ErrorResponse{Error: "image storage is not configured"})
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid recipe id"})
		return
	}
	storageID := strings.TrimPrefix(c.Param("storageID"), "/")

	recipe, err := h.recipeService.RemoveImage(c.Request.Context(), id, userID, storageID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	// The aggregate no longer references the object; deletion is best effort.
	_ = h.mediaStore.Delete(c.Request.Context(), storageID)

	c.JSON(http.StatusOK, NewRecipeResponse(recipe))
}

func (h *RecipeHandler) RateRecipe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, middleware.ErrorResponse{Error: "authentication required"})
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid recipe id"})
		return
	}

	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: err.Error()})
		return
	}

	recipe, err := h.ratingService.SubmitRating(c.Request.Context(), id, userID, req.Score, req.Review)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"average_rating": recipe.AverageRating,
		"total_ratings":  recipe.TotalRatings,
	})
}

func (h *RecipeHandler) MarkRatingHelpful(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, middleware.ErrorResponse{Error: "authentication required"})
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid recipe id"})
		return
	}
	ratingID, err := pathID(c, "ratingID")
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid rating id"})
		return
	}

	recipe, err := h.ratingService.MarkHelpful(c.Request.Context(), id, ratingID, userID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	rating := recipe.FindRating(ratingID)
	if rating == nil {
		c.JSON(http.StatusNotFound, middleware.ErrorResponse{Error: "rating not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"helpful_count": len(rating.Helpful)})
}

func (h *RecipeHandler) ToggleLike(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, middleware.ErrorResponse{Error: "authentication required"})
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid recipe id"})
		return
	}

	liked, likeCount, err := h.socialService.ToggleLike(c.Request.Context(), id, userID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked, "like_count": likeCount})
}

func (h *RecipeHandler) ToggleFavorite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, middleware.ErrorResponse{Error: "authentication required"})
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid recipe id"})
		return
	}

	favorited, err := h.socialService.ToggleFavorite(c.Request.Context(), userID, id)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorited": favorited})
}

func (h *RecipeHandler) AddComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, middleware.ErrorResponse{Error: "authentication required"})
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid recipe id"})
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: err.Error()})
		return
	}

	comment, err := h.commentService.AddComment(c.Request.Context(), id, userID, req.Text)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

func (h *RecipeHandler) AddReply(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, middleware.ErrorResponse{Error: "authentication required"})
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid recipe id"})
		return
	}
	commentID, err := pathID(c, "commentID")
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid comment id"})
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: err.Error()})
		return
	}

	reply, err := h.commentService.AddReply(c.Request.Context(), id, commentID, userID, req.Text)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reply)
}

func (h *RecipeHandler) ToggleCommentLike(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, middleware.ErrorResponse{Error: "authentication required"})
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid recipe id"})
		return
	}
	commentID, err := pathID(c, "commentID")
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid comment id"})
		return
	}

	liked, likeCount, err := h.commentService.ToggleCommentLike(c.Request.Context(), id, commentID, userID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked, "like_count": likeCount})
}

func (h *RecipeHandler) DeleteComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, middleware.ErrorResponse{Error: "authentication required"})
		return
	}

	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid recipe id"})
		return
	}
	commentID, err := pathID(c, "commentID")
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "invalid comment id"})
		return
	}

	if err := h.commentService.DeleteComment(c.Request.Context(), id, commentID, userID); err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}

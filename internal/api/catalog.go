package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/forkful/forkful-backend/internal/middleware"
	"github.com/forkful/forkful-backend/internal/service"
)

const defaultShelfLimit = 10

type CatalogHandler struct {
	catalogService service.ICatalogService
}

func NewCatalogHandler(catalogService service.ICatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.Search)
		recipes.GET("/popular", h.Popular)
		recipes.GET("/trending", h.Trending)
		recipes.GET("/featured", h.Featured)
	}
}

func (h *CatalogHandler) Search(c *gin.Context) {
	filters := service.SearchFilters{
		Category:   c.Query("category"),
		Cuisine:    c.Query("cuisine"),
		Difficulty: c.Query("difficulty"),
	}
	if dietary := c.Query("dietary"); dietary != "" {
		for _, d := range strings.Split(dietary, ",") {
			if d = strings.TrimSpace(d); d != "" {
				filters.Dietary = append(filters.Dietary, d)
			}
		}
	}
	if v := c.Query("max_time"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "max_time must be a number"})
			return
		}
		filters.MaxTime = n
	}
	if v := c.Query("min_rating"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "min_rating must be a number"})
			return
		}
		filters.MinRating = f
	}

	recipes, err := h.catalogService.Search(c.Request.Context(), c.Query("q"), filters)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": NewRecipeListResponse(recipes)})
}

func (h *CatalogHandler) Popular(c *gin.Context) {
	recipes, err := h.catalogService.GetPopular(c.Request.Context(), shelfLimit(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": NewRecipeListResponse(recipes)})
}

func (h *CatalogHandler) Trending(c *gin.Context) {
	recipes, err := h.catalogService.GetTrending(c.Request.Context(), shelfLimit(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": NewRecipeListResponse(recipes)})
}

func (h *CatalogHandler) Featured(c *gin.Context) {
	recipes, err := h.catalogService.GetFeatured(c.Request.Context(), shelfLimit(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": NewRecipeListResponse(recipes)})
}

func shelfLimit(c *gin.Context) int {
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultShelfLimit
}

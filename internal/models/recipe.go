package models

import (
	"database/sql/driver"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Closed vocabularies for recipe categorization.
var (
	Difficulties = []string{"Easy", "Medium", "Hard"}

	Cuisines = []string{
		"Italian", "Chinese", "Indian", "Mexican", "French", "Japanese",
		"Thai", "Mediterranean", "American", "Middle Eastern", "Other",
	}

	Categories = []string{
		"Breakfast", "Lunch", "Dinner", "Snack", "Dessert", "Appetizer",
		"Beverage", "Salad", "Soup", "Side Dish",
	}

	DietaryLabels = []string{
		"vegetarian", "vegan", "gluten-free", "dairy-free", "keto",
		"paleo", "low-carb", "high-protein", "low-sodium",
	}

	IngredientUnits = []string{
		"cups", "tbsp", "tsp", "oz", "lbs", "g", "kg", "ml", "l",
		"pieces", "cloves", "pinch", "dash", "",
	}
)

// Ingredient is one entry of a recipe's structured ingredient list.
type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit,omitempty"`
	Note     string `json:"note,omitempty"`
}

type IngredientList []Ingredient

func (l IngredientList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return jsonbValue(l)
}

func (l *IngredientList) Scan(value interface{}) error {
	if value == nil {
		*l = IngredientList{}
		return nil
	}
	return jsonbScan(l, value)
}

// Instruction is a numbered cooking step.
type Instruction struct {
	Step int    `json:"step"`
	Text string `json:"text"`
}

type InstructionList []Instruction

func (l InstructionList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return jsonbValue(l)
}

func (l *InstructionList) Scan(value interface{}) error {
	if value == nil {
		*l = InstructionList{}
		return nil
	}
	return jsonbScan(l, value)
}

// RecipeImage carries a resolved URL and an opaque storage reference; the
// backend never transforms media itself.
type RecipeImage struct {
	URL       string `json:"url"`
	StorageID string `json:"storage_id,omitempty"`
	Alt       string `json:"alt,omitempty"`
	IsPrimary bool   `json:"is_primary"`
}

type ImageList []RecipeImage

func (l ImageList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return jsonbValue(l)
}

func (l *ImageList) Scan(value interface{}) error {
	if value == nil {
		*l = ImageList{}
		return nil
	}
	return jsonbScan(l, value)
}

// Rating is a single user's score and optional review on a recipe. At most
// one rating per user is kept; resubmitting replaces the prior entry.
type Rating struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Score     int       `json:"score"`
	Review    string    `json:"review,omitempty"`
	Helpful   UUIDSet   `json:"helpful,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type RatingList []Rating

func (l RatingList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return jsonbValue(l)
}

func (l *RatingList) Scan(value interface{}) error {
	if value == nil {
		*l = RatingList{}
		return nil
	}
	return jsonbScan(l, value)
}

// Reply is a single-level response to a comment; replies cannot themselves
// be replied to.
type Reply struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is immutable once created except for its like-set and reply list.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Text      string    `json:"text"`
	Likes     UUIDSet   `json:"likes,omitempty"`
	Replies   []Reply   `json:"replies,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CommentList []Comment

func (l CommentList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return jsonbValue(l)
}

func (l *CommentList) Scan(value interface{}) error {
	if value == nil {
		*l = CommentList{}
		return nil
	}
	return jsonbScan(l, value)
}

// Nutrition is an optional per-serving summary; all fields are non-negative.
type Nutrition struct {
	Calories float64 `json:"calories,omitempty"`
	Protein  float64 `json:"protein,omitempty"`
	Carbs    float64 `json:"carbs,omitempty"`
	Fat      float64 `json:"fat,omitempty"`
	Fiber    float64 `json:"fiber,omitempty"`
	Sugar    float64 `json:"sugar,omitempty"`
	Sodium   float64 `json:"sodium,omitempty"`
}

func (n Nutrition) Value() (driver.Value, error) {
	return jsonbValue(n)
}

func (n *Nutrition) Scan(value interface{}) error {
	return jsonbScan(n, value)
}

// Recipe is one aggregate: the row plus its embedded ratings, comments,
// images and like-set form a single consistency boundary. All mutations go
// through an optimistic version check on Version.
type Recipe struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Title        string          `gorm:"size:100;not null" json:"title"`
	Description  string          `gorm:"type:text" json:"description"`
	Ingredients  IngredientList  `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Instructions InstructionList `gorm:"type:jsonb;not null;default:'[]'" json:"instructions"`
	Images       ImageList       `gorm:"type:jsonb;not null;default:'[]'" json:"images"`

	PrepTime   int    `gorm:"not null" json:"prep_time"`
	CookTime   int    `gorm:"not null" json:"cook_time"`
	Servings   int    `gorm:"not null" json:"servings"`
	Difficulty string `gorm:"size:20;not null" json:"difficulty"`

	Cuisine  string           `gorm:"size:50;not null;index:idx_recipes_category_cuisine,priority:2" json:"cuisine"`
	Category string           `gorm:"size:50;not null;index:idx_recipes_category_cuisine,priority:1" json:"category"`
	Tags     JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"tags"`
	Dietary  JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"dietary"`

	Nutrition *Nutrition `gorm:"type:jsonb" json:"nutrition,omitempty"`

	// AuthorID is nullable: anonymous authoring is a supported degraded mode.
	AuthorID *uuid.UUID `gorm:"type:uuid;index:idx_recipes_author_created,priority:1" json:"author_id,omitempty"`

	Ratings       RatingList `gorm:"type:jsonb;not null;default:'[]'" json:"ratings"`
	AverageRating float64    `gorm:"not null;default:0;index" json:"average_rating"`
	TotalRatings  int        `gorm:"not null;default:0" json:"total_ratings"`

	Likes UUIDSet `gorm:"type:jsonb;not null;default:'[]'" json:"likes"`
	// LikeCount is denormalized from Likes in the same write so trending can
	// order by it without computing set sizes at query time.
	LikeCount int         `gorm:"not null;default:0" json:"like_count"`
	Comments  CommentList `gorm:"type:jsonb;not null;default:'[]'" json:"comments"`

	IsPublic    bool `gorm:"not null;default:true" json:"is_public"`
	IsPublished bool `gorm:"not null;default:false" json:"is_published"`
	IsFeatured  bool `gorm:"not null;default:false" json:"is_featured"`

	Views       int64  `gorm:"not null;default:0;index" json:"views"`
	Saves       int64  `gorm:"not null;default:0" json:"saves"`
	Source      string `gorm:"size:255" json:"source,omitempty"`
	ReportCount int    `gorm:"not null;default:0" json:"report_count"`
	IsReported  bool   `gorm:"not null;default:false" json:"is_reported"`

	Version int `gorm:"not null;default:0" json:"-"`
}

// BeforeCreate assigns an ID so creation works on every dialector.
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TotalTime is prep plus cook time in minutes.
func (r *Recipe) TotalTime() int {
	return r.PrepTime + r.CookTime
}

// CommentCount counts top-level comments only.
func (r *Recipe) CommentCount() int {
	return len(r.Comments)
}

// PrimaryImage returns the image flagged primary, the first image when none
// is flagged, or nil for an empty image set.
func (r *Recipe) PrimaryImage() *RecipeImage {
	if len(r.Images) == 0 {
		return nil
	}
	for i := range r.Images {
		if r.Images[i].IsPrimary {
			return &r.Images[i]
		}
	}
	return &r.Images[0]
}

// NormalizeImages enforces the one-primary invariant: with a non-empty image
// set exactly one image ends up flagged, and the first flagged image wins
// when several are.
func (r *Recipe) NormalizeImages() {
	if len(r.Images) == 0 {
		return
	}
	primarySeen := false
	for i := range r.Images {
		if r.Images[i].IsPrimary {
			if primarySeen {
				r.Images[i].IsPrimary = false
			}
			primarySeen = true
		}
	}
	if !primarySeen {
		r.Images[0].IsPrimary = true
	}
}

// NormalizeTags lowercases and trims tags, dropping empties and duplicates.
func (r *Recipe) NormalizeTags() {
	cleaned := make(JSONBStringArray, 0, len(r.Tags))
	seen := make(map[string]bool, len(r.Tags))
	for _, tag := range r.Tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" && !seen[tag] {
			seen[tag] = true
			cleaned = append(cleaned, tag)
		}
	}
	r.Tags = cleaned
}

// RecalculateRating derives AverageRating and TotalRatings from the current
// rating list. It must run in the same write as any rating mutation.
func (r *Recipe) RecalculateRating() {
	if len(r.Ratings) == 0 {
		r.AverageRating = 0
		r.TotalRatings = 0
		return
	}
	sum := 0
	for _, rating := range r.Ratings {
		sum += rating.Score
	}
	mean := float64(sum) / float64(len(r.Ratings))
	r.AverageRating = math.Round(mean*10) / 10
	r.TotalRatings = len(r.Ratings)
}

// ApplyRating replaces any prior rating by the same user, appends the new
// one and recomputes the aggregate fields.
func (r *Recipe) ApplyRating(userID uuid.UUID, score int, review string) Rating {
	kept := r.Ratings[:0]
	for _, existing := range r.Ratings {
		if existing.UserID != userID {
			kept = append(kept, existing)
		}
	}
	rating := Rating{
		ID:        uuid.New(),
		UserID:    userID,
		Score:     score,
		Review:    review,
		CreatedAt: time.Now().UTC(),
	}
	r.Ratings = append(kept, rating)
	r.RecalculateRating()
	return rating
}

// FindRating returns the rating with the given ID, or nil.
func (r *Recipe) FindRating(ratingID uuid.UUID) *Rating {
	for i := range r.Ratings {
		if r.Ratings[i].ID == ratingID {
			return &r.Ratings[i]
		}
	}
	return nil
}

// FindComment returns the comment with the given ID, or nil.
func (r *Recipe) FindComment(commentID uuid.UUID) *Comment {
	for i := range r.Comments {
		if r.Comments[i].ID == commentID {
			return &r.Comments[i]
		}
	}
	return nil
}

// ToggleLike flips the user's membership in the like-set, keeps LikeCount in
// step, and reports the new membership state.
func (r *Recipe) ToggleLike(userID uuid.UUID) bool {
	liked := r.Likes.Toggle(userID)
	r.LikeCount = len(r.Likes)
	return liked
}

func validMember(set []string, v string) bool {
	for _, member := range set {
		if member == v {
			return true
		}
	}
	return false
}

// ValidDifficulty reports whether v is one of the closed difficulty values.
func ValidDifficulty(v string) bool { return validMember(Difficulties, v) }

// ValidCuisine reports whether v is one of the closed cuisine values.
func ValidCuisine(v string) bool { return validMember(Cuisines, v) }

// ValidCategory reports whether v is one of the closed category values.
func ValidCategory(v string) bool { return validMember(Categories, v) }

// ValidDietaryLabel reports whether v is a known dietary label.
func ValidDietaryLabel(v string) bool { return validMember(DietaryLabels, v) }

// ValidIngredientUnit reports whether v is a known measurement unit.
func ValidIngredientUnit(v string) bool { return validMember(IngredientUnits, v) }

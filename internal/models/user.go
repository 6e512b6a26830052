package models

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Preferences holds a user's browsing defaults.
type Preferences struct {
	Dietary    []string `json:"dietary,omitempty"`
	Cuisines   []string `json:"cuisines,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
}

func (p Preferences) Value() (driver.Value, error) {
	return jsonbValue(p)
}

func (p *Preferences) Scan(value interface{}) error {
	return jsonbScan(p, value)
}

// Stats aggregates activity counters for a user's authored recipes.
type Stats struct {
	RecipesCreated int     `json:"recipes_created"`
	TotalLikes     int     `json:"total_likes"`
	TotalRatings   int     `json:"total_ratings"`
	AverageRating  float64 `json:"average_rating"`
}

func (s Stats) Value() (driver.Value, error) {
	return jsonbValue(s)
}

func (s *Stats) Scan(value interface{}) error {
	return jsonbScan(s, value)
}

// User is one aggregate: the row plus its embedded social sets form a single
// consistency boundary. Followers and Following are two views of directed
// follow edges and are only ever written together inside one transaction.
type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name         string `gorm:"size:50;not null" json:"name"`
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255" json:"-"`
	GoogleID     string `gorm:"size:255;index" json:"-"`
	Avatar       string `gorm:"size:255" json:"avatar"`
	Bio          string `gorm:"size:200" json:"bio"`
	IsVerified   bool   `gorm:"not null;default:false" json:"is_verified"`

	Followers UUIDSet `gorm:"type:jsonb;not null;default:'[]'" json:"followers"`
	Following UUIDSet `gorm:"type:jsonb;not null;default:'[]'" json:"following"`
	Favorites UUIDSet `gorm:"type:jsonb;not null;default:'[]'" json:"favorites"`

	Preferences Preferences `gorm:"type:jsonb" json:"preferences"`
	Stats       Stats       `gorm:"type:jsonb" json:"stats"`

	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	IsAdmin     bool       `gorm:"not null;default:false" json:"-"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	Version int `gorm:"not null;default:0" json:"-"`
}

// BeforeCreate assigns an ID so creation works on every dialector.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// FollowerCount is the number of users following this user.
func (u *User) FollowerCount() int {
	return len(u.Followers)
}

// FollowingCount is the number of users this user follows.
func (u *User) FollowingCount() int {
	return len(u.Following)
}

// IsFollowing reports whether this user follows other.
func (u *User) IsFollowing(other uuid.UUID) bool {
	return u.Following.Contains(other)
}

// HasFavorited reports whether the recipe is bookmarked by this user.
func (u *User) HasFavorited(recipeID uuid.UUID) bool {
	return u.Favorites.Contains(recipeID)
}

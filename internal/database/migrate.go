package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/forkful/forkful-backend/internal/models"
)

// RunMigrations brings the schema up to date and creates the query indexes
// the catalog depends on.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Recipe{},
	); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}

	// Composite and expression indexes AutoMigrate does not cover.
	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_recipes_visibility ON recipes (is_public, is_published)`,
		`CREATE INDEX IF NOT EXISTS idx_recipes_total_time ON recipes ((prep_time + cook_time))`,
		`CREATE INDEX IF NOT EXISTS idx_recipes_search ON recipes USING gin (to_tsvector('english', title || ' ' || description || ' ' || tags::text))`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("index creation failed: %w", err)
		}
	}
	return nil
}

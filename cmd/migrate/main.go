package main

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	_ "github.com/lib/pq"

	"github.com/forkful/forkful-backend/config"
	"github.com/forkful/forkful-backend/internal/database"
)

// Creates the target database when it does not exist yet, then applies the
// schema migrations. Safe to run repeatedly.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if err := ensureDatabase(cfg); err != nil {
		log.Fatalf("failed to ensure database exists: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	fmt.Println("migrations applied successfully")
}

func ensureDatabase(cfg *config.Config) error {
	// Connect to the maintenance database; the target may not exist yet.
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=postgres sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBSSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	var exists bool
	err = db.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", cfg.DBName).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	// Identifiers cannot be parameterized; the name comes from our own
	// configuration but reject anything suspicious anyway.
	if strings.ContainsAny(cfg.DBName, `";'`) {
		return fmt.Errorf("invalid database name %q", cfg.DBName)
	}
	_, err = db.Exec(fmt.Sprintf(`CREATE DATABASE %q`, cfg.DBName))
	if err != nil {
		return err
	}

	fmt.Printf("created database %s\n", cfg.DBName)
	return nil
}

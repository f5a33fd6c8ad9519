package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a default
// admin account and the starter documentation categories. It is a no-op
// if any users already exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("umbra2026"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (email, name, password_hash, role, status)
		VALUES ($1, $2, $3, 'ADMIN', 'APPROVED')
	`, "admin@umbra.local", "Umbra Admin", string(hash))
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	categories := []struct {
		key, name, description string
		order                  int
	}{
		{"getting-started", "Getting Started", "Platform basics and first steps", 1},
		{"api", "API Reference", "API documentation", 2},
		{"cms-modules", "CMS Modules", "Integrations with CMS systems", 3},
		{"forms-buttons", "Forms & Buttons", "Building and configuring forms and buttons", 4},
	}
	for _, c := range categories {
		if _, err := db.Exec(`
			INSERT INTO categories (key, name, description, sort_order)
			VALUES ($1, $2, $3, $4)
		`, c.key, c.name, c.description, c.order); err != nil {
			return fmt.Errorf("seed insert category %q: %w", c.key, err)
		}
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@umbra.local",
		"password", "umbra2026",
	)

	return nil
}

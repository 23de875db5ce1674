package main

import (
	"log"
	"os"

	"github.com/fantasyarena/backend/internal/admin"
	"github.com/fantasyarena/backend/internal/config"
	"github.com/fantasyarena/backend/internal/database"
)

// Seeds (or updates) the platform admin account from environment variables.
// Run once after migrations: ADMIN_USERNAME, ADMIN_EMAIL and ADMIN_PASSWORD
// must all be set.
func main() {
	cfg := config.Load()

	username := os.Getenv("ADMIN_USERNAME")
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || email == "" || password == "" {
		log.Fatal("[SEED] ADMIN_USERNAME, ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[SEED] failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := admin.SeedAdminUser(db, username, email, password); err != nil {
		log.Fatalf("[SEED] failed to seed admin user: %v", err)
	}
	log.Printf("[SEED] admin user %s ready", username)
}

package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/linkfolio/linkfolio/config"
	"github.com/linkfolio/linkfolio/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	adminID := seedAccount(db, "admin", "admin@linkfolio.dev", hash, "Linkfolio Admin", "standard", true)
	demoID := seedAccount(db, "demo", "demo@linkfolio.dev", hash, "Demo Creator", "creator", true)
	privateID := seedAccount(db, "private-demo", "private@linkfolio.dev", hash, "Private Person", "standard", false)

	demoProfile := seedProfile(db, demoID, "Demo Creator", "demo-creator", true, true)
	seedProfile(db, demoID, "Music", "music", true, false)
	privProfile := seedProfile(db, privateID, "Private Person", "private-person", false, true)
	seedProfile(db, adminID, "Linkfolio Admin", "linkfolio-admin", true, true)

	seedLink(db, demoProfile, "instagram", "https://instagram.com/demo", 0)
	seedLink(db, demoProfile, "youtube", "https://youtube.com/@demo", 1)
	seedLink(db, privProfile, "x", "https://x.com/private", 0)

	// demo and private-demo are already friends so private pages have a
	// working example out of the box
	if _, err := db.Exec(`
		INSERT INTO friendships (requester_id, addressee_id, status)
		VALUES ($1, $2, 'accepted')
		ON CONFLICT DO NOTHING
	`, demoID, privateID); err != nil {
		log.Fatalf("failed to seed friendship: %v", err)
	}

	fmt.Printf("seeded accounts: admin=%s demo=%s private=%s (password %q)\n", adminID, demoID, privateID, password)
	fmt.Println("remember to add admin@linkfolio.dev to ADMIN_EMAILS")
}

func seedAccount(db *sql.DB, username, email, hash, displayName, userType string, isPublic bool) string {
	var id string
	err := db.QueryRow(`
		INSERT INTO accounts (username, email, password, display_name, is_public, onboarding_completed, user_type, email_confirmed_at)
		VALUES ($1, $2, $3, $4, $5, true, $6, now())
		ON CONFLICT ON CONSTRAINT accounts_email_key DO UPDATE SET display_name = EXCLUDED.display_name
		RETURNING id
	`, username, email, hash, displayName, isPublic, userType).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed account %s: %v", username, err)
	}
	return id
}

func seedProfile(db *sql.DB, accountID, name, slug string, isPublic, isDefault bool) string {
	var id string
	err := db.QueryRow(`
		INSERT INTO profiles (account_id, name, slug, is_public, is_default)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT ON CONSTRAINT profiles_account_slug_key DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, accountID, name, slug, isPublic, isDefault).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed profile %s: %v", slug, err)
	}
	return id
}

func seedLink(db *sql.DB, profileID, platform, url string, order int) {
	if _, err := db.Exec(`
		INSERT INTO social_links (profile_id, platform, url, is_visible, order_index)
		VALUES ($1, $2, $3, true, $4)
		ON CONFLICT DO NOTHING
	`, profileID, platform, url, order); err != nil {
		log.Fatalf("failed to seed link %s: %v", url, err)
	}
}

package database

import (
	"log"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

func SeedPlatforms(db *sqlx.DB) error {
	// Check if platforms already exist
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM platforms"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Platforms already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding platforms...")

	for _, code := range []string{"grubHub", "uberEats"} {
		if _, err := db.Exec(`INSERT INTO platforms (platform_code) VALUES ($1)`, code); err != nil {
			return err
		}
		log.Printf("  ✓ Created platform: %s", code)
	}

	log.Println("✓ Successfully seeded platforms")
	return nil
}

func SeedUsers(db *sqlx.DB) error {
	// Check if users already exist
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Users already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding test users...")

	courierPassword, err := bcrypt.GenerateFromPassword([]byte("courier123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []map[string]interface{}{
		{
			"id":       uuid.New().String(),
			"email":    "courier@earnroute.app",
			"password": string(courierPassword),
			"name":     "Courier",
			"role":     "courier",
		},
		{
			"id":       uuid.New().String(),
			"email":    "admin@earnroute.app",
			"password": string(adminPassword),
			"name":     "Admin User",
			"role":     "admin",
		},
	}

	for _, user := range users {
		query := `
			INSERT INTO users (id, email, password, name, role)
			VALUES (:id, :email, :password, :name, :role)
		`
		if _, err := db.NamedExec(query, user); err != nil {
			return err
		}
		log.Printf("  ✓ Created user: %s (%s)", user["email"], user["role"])
	}

	log.Println("✓ Successfully seeded test users")
	log.Println("  📧 Courier: courier@earnroute.app / courier123")
	log.Println("  📧 Admin:   admin@earnroute.app / admin123")
	return nil
}

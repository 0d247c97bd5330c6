package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"earnroute-backend/internal/database"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Get database URL
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	// Connect to database
	db, err := database.Connect(dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Connected to database successfully")

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	if err := database.SeedPlatforms(db); err != nil {
		log.Fatalf("Platform seeding failed: %v", err)
	}
	if err := database.SeedUsers(db); err != nil {
		log.Fatalf("User seeding failed: %v", err)
	}

	log.Println("Migration completed successfully!")

	// Query and display summary
	var result struct {
		Platforms  int `db:"platforms"`
		Users      int `db:"users"`
		Shifts     int `db:"shifts"`
		Deliveries int `db:"deliveries"`
	}

	query := `
		SELECT
			(SELECT COUNT(*) FROM platforms) AS platforms,
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM shifts) AS shifts,
			(SELECT COUNT(*) FROM deliveries) AS deliveries
	`

	if err := db.Get(&result, query); err != nil {
		log.Fatalf("Failed to query summary: %v", err)
	}

	// Display results
	fmt.Println("\n============================================================")
	fmt.Println("MIGRATION SUMMARY")
	fmt.Println("============================================================")
	fmt.Printf("Platforms:   %d\n", result.Platforms)
	fmt.Printf("Users:       %d\n", result.Users)
	fmt.Printf("Shifts:      %d\n", result.Shifts)
	fmt.Printf("Deliveries:  %d\n", result.Deliveries)
	fmt.Println("============================================================")
}

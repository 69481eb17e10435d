// Command main runs the database seeder for Quorum.
package main

import (
	"flag"
	"log"

	"quorum/internal/config"
	"quorum/internal/database"
	"quorum/internal/seed"
)

func main() {
	// Parse command line flags
	numUsers := flag.Int("users", 10, "Number of users to create")
	numPosts := flag.Int("posts", 40, "Number of posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	dryRun := flag.Bool("dry-run", false, "Log what would be created without writing")
	skipBcrypt := flag.Bool("skip-bcrypt", false, "Store plain passwords (dev only, much faster)")
	maxDays := flag.Int("max-days", 90, "Back-date posts up to this many days")
	presetPath := flag.String("preset", "", "Apply a YAML preset file instead of the flag-based plan")
	flag.Parse()

	log.Println("Database Seeder")
	if *presetPath != "" {
		log.Printf("Applying preset: %s (ignoring other flags)\n", *presetPath)
	} else {
		log.Printf("Target: %d users, %d posts, clean=%v dry-run=%v\n", *numUsers, *numPosts, *shouldClean, *dryRun)
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *presetPath != "" {
		preset, err := seed.LoadPreset(*presetPath)
		if err != nil {
			log.Fatalf("Failed to load preset: %v", err)
		}
		if err := seed.ApplyPreset(db, preset); err != nil {
			log.Fatalf("Preset seeding failed: %v", err)
		}
		log.Println("Preset applied.")
		return
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		ShouldClean: *shouldClean,
		DryRun:      *dryRun,
		SkipBcrypt:  *skipBcrypt,
		MaxDays:     *maxDays,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("All done! Your database is now populated with test data.")
	log.Println("All generated users have the password: password123")
}

// Command main runs the database seeder for Snippetly.
package main

import (
	"flag"
	"log"

	"snippetly/internal/config"
	"snippetly/internal/database"
	"snippetly/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numSnippets := flag.Int("snippets", 300, "Number of snippets to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if _, err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(database.DB, seed.Options{
		NumUsers:    *numUsers,
		NumSnippets: *numSnippets,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}

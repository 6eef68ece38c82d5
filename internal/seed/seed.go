// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"snippetly/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gosimple/slug"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumSnippets int
	ShouldClean bool
}

var languages = []string{
	"go", "python", "javascript", "typescript", "rust", "sql",
	"bash", "ruby", "java", "c", "cpp", "html", "css",
}

var tagPool = []string{
	"cli", "web", "algorithms", "concurrency", "testing", "networking",
	"database", "regex", "docker", "kubernetes", "performance", "security",
	"parsing", "http", "json", "caching",
}

var codeSamples = []string{
	"func main() {\n\tfmt.Println(\"hello\")\n}",
	"SELECT id, username FROM users WHERE created_at > now() - interval '7 days';",
	"const debounce = (fn, ms) => {\n\tlet t;\n\treturn (...a) => {\n\t\tclearTimeout(t);\n\t\tt = setTimeout(() => fn(...a), ms);\n\t};\n};",
	"def chunks(xs, n):\n    for i in range(0, len(xs), n):\n        yield xs[i:i+n]",
	"curl -s localhost:8464/health | jq .status",
	"for i := range items {\n\tgo func(it Item) {\n\t\tdefer wg.Done()\n\t\tprocess(it)\n\t}(items[i])\n}",
}

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Starting database seeding with %d users and %d snippets...", opts.NumUsers, opts.NumSnippets)

	if opts.ShouldClean {
		if err := ClearAll(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	users, err := createUsers(db, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("seeded %d users", len(users))

	tags, err := createTags(db)
	if err != nil {
		return fmt.Errorf("failed to create tags: %w", err)
	}

	collections, err := createCollections(db, users)
	if err != nil {
		return fmt.Errorf("failed to create collections: %w", err)
	}
	log.Printf("seeded %d collections", len(collections))

	snippets, err := createSnippets(db, users, collections, tags, opts.NumSnippets)
	if err != nil {
		return fmt.Errorf("failed to create snippets: %w", err)
	}
	log.Printf("seeded %d snippets", len(snippets))

	edges, err := createFriendships(db, users)
	if err != nil {
		return fmt.Errorf("failed to create friendships: %w", err)
	}
	log.Printf("seeded %d friendship edges", edges)

	log.Println("Seeding complete")
	return nil
}

// ClearAll removes all seeded data. Order matters because of foreign keys.
func ClearAll(db *gorm.DB) error {
	tables := []string{
		"snippet_tags", "snippets", "collections", "tags",
		"friendships", "username_changes", "users",
	}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(db *gorm.DB, count int) ([]models.User, error) {
	// One shared hash keeps seeding fast; every seeded account logs in
	// with "Password123!test".
	hash, err := bcrypt.GenerateFromPassword([]byte("Password123!test"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		username := fmt.Sprintf("%s_%s%d",
			gofakeit.AdjectiveDescriptive(), gofakeit.NounConcrete(), i)
		user := models.User{
			Username: slug.Make(username),
			Email:    fmt.Sprintf("user%d@%s", i, gofakeit.DomainName()),
			Password: string(hash),
			Bio:      gofakeit.Sentence(8),
			Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%d", i),
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createTags(db *gorm.DB) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(tagPool))
	for _, name := range tagPool {
		tag := models.Tag{Name: name}
		if err := db.FirstOrCreate(&tag, models.Tag{Name: name}).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func createCollections(db *gorm.DB, users []models.User) ([]models.Collection, error) {
	var collections []models.Collection
	for _, user := range users {
		n := rand.Intn(3)
		for i := 0; i < n; i++ {
			name := fmt.Sprintf("%s %s", gofakeit.HackerAdjective(), gofakeit.HackerNoun())
			collection := models.Collection{
				Name:        name,
				Slug:        fmt.Sprintf("%s-%d", slug.Make(name), i),
				Description: gofakeit.Sentence(10),
				Public:      rand.Intn(100) < 70,
				UserID:      user.ID,
			}
			if err := db.Create(&collection).Error; err != nil {
				return nil, err
			}
			collections = append(collections, collection)
		}
	}
	return collections, nil
}

func createSnippets(db *gorm.DB, users []models.User, collections []models.Collection, tags []models.Tag, count int) ([]models.Snippet, error) {
	byOwner := make(map[uint][]models.Collection)
	for _, c := range collections {
		byOwner[c.UserID] = append(byOwner[c.UserID], c)
	}

	snippets := make([]models.Snippet, 0, count)
	for i := 0; i < count; i++ {
		owner := users[rand.Intn(len(users))]
		title := fmt.Sprintf("%s %s", gofakeit.HackerVerb(), gofakeit.HackerNoun())

		snippet := models.Snippet{
			Title:       title,
			Slug:        fmt.Sprintf("%s-%d", slug.Make(title), i),
			Language:    languages[rand.Intn(len(languages))],
			Code:        codeSamples[rand.Intn(len(codeSamples))],
			Description: gofakeit.Sentence(12),
			Public:      rand.Intn(100) < 60,
			UserID:      owner.ID,
		}
		if owned := byOwner[owner.ID]; len(owned) > 0 && rand.Intn(100) < 40 {
			id := owned[rand.Intn(len(owned))].ID
			snippet.CollectionID = &id
		}
		if err := db.Create(&snippet).Error; err != nil {
			return nil, err
		}

		n := rand.Intn(4)
		if n > 0 {
			picked := make([]models.Tag, 0, n)
			for _, j := range rand.Perm(len(tags))[:n] {
				picked = append(picked, tags[j])
			}
			if err := db.Model(&snippet).Association("Tags").Replace(picked); err != nil {
				return nil, err
			}
		}
		snippets = append(snippets, snippet)
	}
	return snippets, nil
}

// createFriendships builds a realistic mesh: each user sends requests to a
// few later users; most get accepted, some stay pending, a few end
// rejected or cancelled.
func createFriendships(db *gorm.DB, users []models.User) (int, error) {
	created := 0
	now := time.Now()

	for i := range users {
		n := rand.Intn(4)
		for j := 1; j <= n && i+j < len(users); j++ {
			edge := models.Friendship{
				RequesterID: users[i].ID,
				AddresseeID: users[i+j].ID,
				Status:      models.FriendshipStatusPending,
			}

			switch roll := rand.Intn(100); {
			case roll < 60:
				at := now.Add(-time.Duration(rand.Intn(72)) * time.Hour)
				edge.Status = models.FriendshipStatusAccepted
				edge.AcceptedAt = &at
			case roll < 70:
				at := now.Add(-time.Duration(rand.Intn(72)) * time.Hour)
				edge.Status = models.FriendshipStatusRejected
				edge.RejectedAt = &at
			case roll < 78:
				at := now.Add(-time.Duration(rand.Intn(72)) * time.Hour)
				edge.Status = models.FriendshipStatusCancelled
				edge.CancelledAt = &at
			}

			if err := db.Create(&edge).Error; err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

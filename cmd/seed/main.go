// Package main provides a tool to seed the database with development fixtures.
//
// It creates a handful of users, a small book catalog, and realistic
// like/bookmark/rating relationships so list annotations and rating
// aggregates have something to show.
//
// Usage:
//
//	DB_PATH=~/Readshelf/readshelf.db go run ./cmd/seed
//	DB_PATH=~/Readshelf/readshelf.db go run ./cmd/seed --books 20
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/readshelfapp/readshelf-server/internal/auth"
	"github.com/readshelfapp/readshelf-server/internal/domain"
	"github.com/readshelfapp/readshelf-server/internal/id"
	"github.com/readshelfapp/readshelf-server/internal/service"
	"github.com/readshelfapp/readshelf-server/internal/store"
	"github.com/readshelfapp/readshelf-server/internal/store/sqlite"
	"github.com/shopspring/decimal"
)

var bookCount = flag.Int("books", 12, "Number of books to create")

// seedPassword is shared by all seeded accounts. Development only.
const seedPassword = "readshelf-dev"

var seedUsers = []struct {
	email       string
	firstName   string
	lastName    string
	displayName string
	staff       bool
}{
	{"ada@example.com", "Ada", "Marsh", "", true},
	{"bo@example.com", "Bo", "Keeper", "bo_reads", false},
	{"cleo@example.com", "Cleo", "Finch", "", false},
	{"dev@example.com", "Devin", "Oak", "", false},
}

var seedTitles = []struct {
	title  string
	author string
}{
	{"The Glass Orchard", "Mara Quill"},
	{"Winter Ledger", "Tomas Reyes"},
	{"A Field Guide to Lost Rivers", "June Hollow"},
	{"The Cartographer's Debt", "Mara Quill"},
	{"Salt and Circuitry", "Ibrahim Cole"},
	{"Quiet Machines", "Nell Ferris"},
	{"The Last Timetable", "Tomas Reyes"},
	{"Harbor Lights", "Ivy Strand"},
	{"Notes from the Underfloor", "Oskar Lindt"},
	{"The Paper Meridian", "June Hollow"},
	{"Glasshouse Summer", "Nell Ferris"},
	{"The Borrowed Coast", "Ivy Strand"},
}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		dbPath = filepath.Join(home, "Readshelf", "readshelf.db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := sqlite.Open(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	users := createSeedUsers(ctx, s)
	fmt.Printf("Seeded %d users (password %q)\n", len(users), seedPassword)

	books := createSeedBooks(ctx, s, users)
	fmt.Printf("Seeded %d books\n", len(books))

	createSeedRelationships(ctx, s, users, books)
}

func createSeedUsers(ctx context.Context, s store.Store) []*domain.User {
	hash, err := auth.HashPassword(seedPassword)
	if err != nil {
		log.Fatalf("Failed to hash seed password: %v", err)
	}

	users := make([]*domain.User, 0, len(seedUsers))
	for _, su := range seedUsers {
		if existing, err := s.GetUserByEmail(ctx, su.email); err == nil {
			fmt.Printf("  User %s already exists, reusing\n", su.email)
			users = append(users, existing)
			continue
		}

		now := time.Now().UTC()
		user := &domain.User{
			ID:           id.MustGenerate("user"),
			Email:        su.email,
			PasswordHash: hash,
			FirstName:    su.firstName,
			LastName:     su.lastName,
			DisplayName:  su.displayName,
			IsStaff:      su.staff,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.CreateUser(ctx, user); err != nil {
			log.Fatalf("Failed to create user %s: %v", su.email, err)
		}
		fmt.Printf("  Created user %s (%s)\n", user.Name(), user.ID)
		users = append(users, user)
	}
	return users
}

func createSeedBooks(ctx context.Context, s store.Store, users []*domain.User) []*domain.Book {
	bookService := service.NewBookService(s, slog.New(slog.NewTextHandler(io.Discard, nil)))
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	count := min(*bookCount, len(seedTitles))
	books := make([]*domain.Book, 0, count)
	for i := 0; i < count; i++ {
		owner := users[rng.Intn(len(users))]
		price := decimal.NewFromInt(int64(5 + rng.Intn(45))).Add(decimal.NewFromFloat(0.99))

		book, err := bookService.Create(ctx, owner, service.CreateBookRequest{
			Title:  seedTitles[i].title,
			Author: seedTitles[i].author,
			Price:  price.StringFixed(2),
		})
		if err != nil {
			log.Fatalf("Failed to create book %q: %v", seedTitles[i].title, err)
		}
		books = append(books, book)
	}
	return books
}

func createSeedRelationships(ctx context.Context, s store.Store, users []*domain.User, books []*domain.Book) {
	relService := service.NewRelationshipService(s, slog.New(slog.NewTextHandler(io.Discard, nil)))
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	created := 0
	for _, user := range users {
		for _, book := range books {
			// Roughly half the user/book pairs get an interaction.
			if rng.Float32() > 0.5 {
				continue
			}

			patch := service.RelationshipPatch{}
			if rng.Float32() < 0.6 {
				liked := true
				patch.Like = &liked
			}
			if rng.Float32() < 0.3 {
				bookmarked := true
				patch.Bookmarks = &bookmarked
			}
			if rng.Float32() < 0.7 {
				rating := 1 + rng.Intn(5)
				patch.Rating = &rating
				patch.RatingSet = true
			}

			if patch.Like == nil && patch.Bookmarks == nil && !patch.RatingSet {
				continue
			}

			if _, err := relService.Apply(ctx, user.ID, book.ID, patch); err != nil {
				log.Fatalf("Failed to seed relationship for %s on %q: %v", user.Email, book.Title, err)
			}
			created++
		}
	}

	fmt.Printf("Seeded %d relationships\n", created)
}

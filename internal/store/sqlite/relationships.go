package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/readshelfapp/readshelf-server/internal/domain"
	"github.com/readshelfapp/readshelf-server/internal/store"
)

// relationshipColumns is the ordered list of columns selected in
// relationship queries. Must match the scan order in scanRelationship.
const relationshipColumns = `user_id, book_id, liked, bookmarked, rating, created_at, updated_at`

// scanRelationship scans a sql.Row (or sql.Rows via its Scan method)
// into a domain.BookRelationship.
func scanRelationship(scanner interface{ Scan(dest ...any) error }) (*domain.BookRelationship, error) {
	var rel domain.BookRelationship

	var (
		rating    sql.NullInt64
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&rel.UserID,
		&rel.BookID,
		&rel.Like,
		&rel.Bookmarks,
		&rating,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if rating.Valid {
		v := int(rating.Int64)
		rel.Rating = &v
	}
	rel.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	rel.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &rel, nil
}

// GetRelationship retrieves the relationship for a (user, book) pair.
// Returns store.ErrRelationshipNotFound if none exists.
func (s *Store) GetRelationship(ctx context.Context, userID, bookID string) (*domain.BookRelationship, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+relationshipColumns+` FROM user_book_relationships
		 WHERE user_id = ? AND book_id = ?`, userID, bookID)

	rel, err := scanRelationship(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrRelationshipNotFound
	}
	if err != nil {
		return nil, err
	}
	return rel, nil
}

// UpsertRelationship inserts or replaces the relationship row keyed by
// (user_id, book_id). created_at is preserved on conflict.
func (s *Store) UpsertRelationship(ctx context.Context, rel *domain.BookRelationship) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_book_relationships (
			user_id, book_id, liked, bookmarked, rating, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, book_id) DO UPDATE SET
			liked = excluded.liked,
			bookmarked = excluded.bookmarked,
			rating = excluded.rating,
			updated_at = excluded.updated_at`,
		rel.UserID,
		rel.BookID,
		rel.Like,
		rel.Bookmarks,
		nullInt(rel.Rating),
		formatTime(rel.CreatedAt),
		formatTime(rel.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return store.ErrNotFound.WithCause(err)
		}
		return err
	}
	return nil
}

// ListBookRatings returns every non-null relationship rating for a book.
func (s *Store) ListBookRatings(ctx context.Context, bookID string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rating FROM user_book_relationships
		WHERE book_id = ? AND rating IS NOT NULL`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []int
	for rows.Next() {
		var r int
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ratings, nil
}

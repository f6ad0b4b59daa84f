package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/readshelfapp/readshelf-server/internal/domain"
	"github.com/readshelfapp/readshelf-server/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, title, author, price, owner_id, rating, created_at, updated_at`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	var (
		price     string
		ownerID   sql.NullString
		rating    sql.NullString
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&price,
		&ownerID,
		&rating,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	b.Rating, err = parseNullableDecimal(rating)
	if err != nil {
		return nil, err
	}
	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	if ownerID.Valid {
		b.OwnerID = ownerID.String
	}

	return &b, nil
}

// nullOwner maps an empty owner ID to NULL so the FK stays satisfiable.
func nullOwner(ownerID string) sql.NullString {
	if ownerID == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: ownerID, Valid: true}
}

// CreateBook inserts a new book. The price is stored in its canonical
// two-fraction-digit form.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (
			id, title, author, price, owner_id, rating, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		book.Title,
		book.Author,
		book.Price.StringFixed(2),
		nullOwner(book.OwnerID),
		nullDecimal(book.Rating),
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetBook retrieves a book by ID.
// Returns store.ErrBookNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, id)

	book, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	return book, nil
}

// UpdateBook updates a book's editable fields. The derived rating column
// is only written through SetBookRating.
// Returns store.ErrBookNotFound if the book does not exist.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE books SET
			title = ?,
			author = ?,
			price = ?,
			owner_id = ?,
			updated_at = ?
		WHERE id = ?`,
		book.Title,
		book.Author,
		book.Price.StringFixed(2),
		nullOwner(book.OwnerID),
		formatTime(book.UpdatedAt),
		book.ID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrBookNotFound
	}
	return nil
}

// DeleteBook performs a hard delete of a book by ID. Relationships go
// with it via ON DELETE CASCADE.
// Returns store.ErrBookNotFound if the book does not exist.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrBookNotFound
	}
	return nil
}

// SetBookRating writes the derived aggregate rating, NULL when nil.
// Returns store.ErrBookNotFound if the book does not exist.
func (s *Store) SetBookRating(ctx context.Context, bookID string, rating *decimal.Decimal) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE books SET rating = ? WHERE id = ?`,
		nullDecimal(rating), bookID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrBookNotFound
	}
	return nil
}

// escapeLike escapes LIKE wildcards in a user-supplied search term.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// orderClause maps a ListBooksParams ordering key to an ORDER BY clause.
// Price sorts numerically despite its TEXT storage. The id column is
// always the final tiebreaker so listings are stable.
func orderClause(orderBy string) (string, error) {
	desc := false
	key := orderBy
	if strings.HasPrefix(key, "-") {
		desc = true
		key = key[1:]
	}

	var expr string
	switch key {
	case "":
		return `ORDER BY b.id ASC`, nil
	case store.OrderByPrice:
		expr = `CAST(b.price AS REAL)`
	case store.OrderByAuthor:
		expr = `b.author COLLATE NOCASE`
	default:
		return "", fmt.Errorf("unknown ordering %q", orderBy)
	}

	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s, b.id ASC", expr, dir), nil
}

// ListBooks returns books annotated with like counts, owner names and
// reader names, narrowed and ordered per params.
func (s *Store) ListBooks(ctx context.Context, params store.ListBooksParams) ([]*store.BookListing, error) {
	var (
		conds []string
		args  []any
	)
	if params.Price != nil {
		conds = append(conds, `b.price = ?`)
		args = append(args, params.Price.StringFixed(2))
	}
	if params.Search != "" {
		pattern := "%" + escapeLike(params.Search) + "%"
		conds = append(conds, `(b.title LIKE ? ESCAPE '\' OR b.author LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	order, err := orderClause(params.OrderBy)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT b.` + strings.ReplaceAll(bookColumns, ", ", ", b.") + `,
			(SELECT COUNT(*) FROM user_book_relationships r
			 WHERE r.book_id = b.id AND r.liked = 1) AS likes,
			u.display_name, u.first_name, u.last_name, u.email
		FROM books b
		LEFT JOIN users u ON u.id = b.owner_id
		` + where + `
		` + order

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []*store.BookListing
	for rows.Next() {
		listing, err := scanBookListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachReaders(ctx, listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// scanBookListing scans one annotated listing row.
func scanBookListing(rows *sql.Rows) (*store.BookListing, error) {
	var listing store.BookListing

	var (
		price            string
		ownerID          sql.NullString
		rating           sql.NullString
		createdAt        string
		updatedAt        string
		ownerDisplayName sql.NullString
		ownerFirstName   sql.NullString
		ownerLastName    sql.NullString
		ownerEmail       sql.NullString
	)

	err := rows.Scan(
		&listing.ID,
		&listing.Title,
		&listing.Author,
		&price,
		&ownerID,
		&rating,
		&createdAt,
		&updatedAt,
		&listing.Likes,
		&ownerDisplayName,
		&ownerFirstName,
		&ownerLastName,
		&ownerEmail,
	)
	if err != nil {
		return nil, err
	}

	listing.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	listing.Rating, err = parseNullableDecimal(rating)
	if err != nil {
		return nil, err
	}
	listing.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	listing.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	if ownerID.Valid {
		listing.OwnerID = ownerID.String
	}

	listing.OwnerName = domain.AnonymousName
	if ownerID.Valid {
		owner := domain.User{
			DisplayName: ownerDisplayName.String,
			FirstName:   ownerFirstName.String,
			LastName:    ownerLastName.String,
			Email:       ownerEmail.String,
		}
		listing.OwnerName = owner.Name()
	}

	listing.Readers = []string{}
	return &listing, nil
}

// attachReaders fills in Readers for every listing with a single batched
// query over the relationships table.
func (s *Store) attachReaders(ctx context.Context, listings []*store.BookListing) error {
	if len(listings) == 0 {
		return nil
	}

	byID := make(map[string]*store.BookListing, len(listings))
	args := make([]any, 0, len(listings))
	for _, l := range listings {
		byID[l.ID] = l
		args = append(args, l.ID)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(listings)), ", ")

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.book_id, u.display_name, u.first_name, u.last_name, u.email
		FROM user_book_relationships r
		JOIN users u ON u.id = r.user_id
		WHERE r.book_id IN (`+placeholders+`)
		ORDER BY r.created_at ASC`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			bookID string
			reader domain.User
		)
		if err := rows.Scan(&bookID, &reader.DisplayName, &reader.FirstName, &reader.LastName, &reader.Email); err != nil {
			return err
		}
		if l, ok := byID[bookID]; ok {
			l.Readers = append(l.Readers, reader.Name())
		}
	}
	return rows.Err()
}

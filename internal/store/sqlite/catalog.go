package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/bookshelf/internal/catalog"
)

var _ catalog.Storage = (*Store)(nil)

func (s *Store) ListGenres(ctx context.Context) ([]catalog.Genre, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description FROM genre ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	defer rows.Close()

	var out []catalog.Genre
	for rows.Next() {
		var g catalog.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.Description); err != nil {
			return nil, fmt.Errorf("failed to scan genre: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Store) GenreByName(ctx context.Context, name string) (catalog.Genre, error) {
	var g catalog.Genre
	err := s.db.QueryRowContext(ctx, `SELECT id, name, description FROM genre WHERE name = ?`, name).
		Scan(&g.ID, &g.Name, &g.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Genre{}, catalog.ErrGenreNotFound
	}
	if err != nil {
		return catalog.Genre{}, fmt.Errorf("failed to get genre: %w", err)
	}
	return g, nil
}

func (s *Store) CountGenres(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM genre`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count genres: %w", err)
	}
	return n, nil
}

func (s *Store) CreateGenre(ctx context.Context, g *catalog.Genre) error {
	res, err := s.db.ExecContext(ctx, `INSERT INTO genre (name, description) VALUES (?, ?)`, g.Name, g.Description)
	if isUniqueViolation(err) {
		return catalog.ErrGenreExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert genre: %w", err)
	}
	g.ID, err = res.LastInsertId()
	return err
}

const selectBook = `
	SELECT b.id, b.title, b.cover_url, b.cover_attribution, b.description, b.author,
		b.year, b.buy_url, b.genre_id, g.name, b.created_by, b.created_at, b.updated_at
	FROM book b JOIN genre g ON g.id = b.genre_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (catalog.Book, error) {
	var (
		b                catalog.Book
		createdBy        uuid.NullUUID
		created, updated int64
	)
	err := row.Scan(&b.ID, &b.Title, &b.CoverURL, &b.CoverAttribution, &b.Description, &b.Author,
		&b.Year, &b.BuyURL, &b.GenreID, &b.GenreName, &createdBy, &created, &updated)
	if err != nil {
		return catalog.Book{}, err
	}
	if createdBy.Valid {
		b.CreatedBy = &createdBy.UUID
	}
	b.CreatedAt, b.UpdatedAt = fromMillis(created), fromMillis(updated)
	return b, nil
}

func (s *Store) queryBooks(ctx context.Context, query string, args ...any) ([]catalog.Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	var out []catalog.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) RecentBooks(ctx context.Context, limit int) ([]catalog.Book, error) {
	return s.queryBooks(ctx, selectBook+` ORDER BY b.created_at DESC, b.id DESC LIMIT ?`, limit)
}

func (s *Store) BooksByGenre(ctx context.Context, genreID int64) ([]catalog.Book, error) {
	return s.queryBooks(ctx, selectBook+` WHERE b.genre_id = ? ORDER BY b.title, b.id`, genreID)
}

func (s *Store) BookByID(ctx context.Context, id int64) (catalog.Book, error) {
	b, err := scanBook(s.db.QueryRowContext(ctx, selectBook+` WHERE b.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Book{}, catalog.ErrBookNotFound
	}
	if err != nil {
		return catalog.Book{}, fmt.Errorf("failed to get book: %w", err)
	}
	return b, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

// CreateBook checks the genre and inserts the book in one transaction.
func (s *Store) CreateBook(ctx context.Context, b *catalog.Book) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := genreExists(ctx, tx, b.GenreID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO book (title, cover_url, cover_attribution, description, author, year, buy_url,
				genre_id, created_by, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.Title, b.CoverURL, b.CoverAttribution, b.Description, b.Author, b.Year, b.BuyURL,
			b.GenreID, nullUUID(b.CreatedBy), toMillis(b.CreatedAt), toMillis(b.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert book: %w", err)
		}
		b.ID, err = res.LastInsertId()
		return err
	})
}

func (s *Store) UpdateBook(ctx context.Context, b *catalog.Book) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := genreExists(ctx, tx, b.GenreID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE book SET title = ?, cover_url = ?, cover_attribution = ?, description = ?, author = ?,
				year = ?, buy_url = ?, genre_id = ?, updated_at = ?
			WHERE id = ?`,
			b.Title, b.CoverURL, b.CoverAttribution, b.Description, b.Author,
			b.Year, b.BuyURL, b.GenreID, toMillis(b.UpdatedAt), b.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update book: %w", err)
		}
		return expectOne(res, catalog.ErrBookNotFound)
	})
}

func genreExists(ctx context.Context, tx *sql.Tx, id int64) error {
	var found int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM genre WHERE id = ?`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.ErrGenreNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check genre: %w", err)
	}
	return nil
}

// withTx runs fn in a transaction, rolling back when fn fails.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) DeleteBook(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM book WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	return expectOne(res, catalog.ErrBookNotFound)
}

func expectOne(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}

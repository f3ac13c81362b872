package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/bookshelf/internal/catalog"
	"github.com/dmitrymomot/bookshelf/pkg/pg"
)

var _ catalog.Storage = (*Store)(nil)

func (s *Store) ListGenres(ctx context.Context) ([]catalog.Genre, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, description FROM genre ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	genres, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Genre, error) {
		var g catalog.Genre
		err := row.Scan(&g.ID, &g.Name, &g.Description)
		return g, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan genres: %w", err)
	}
	return genres, nil
}

func (s *Store) GenreByName(ctx context.Context, name string) (catalog.Genre, error) {
	var g catalog.Genre
	err := s.pool.QueryRow(ctx, `SELECT id, name, description FROM genre WHERE name = $1`, name).
		Scan(&g.ID, &g.Name, &g.Description)
	if pg.IsNotFoundError(err) {
		return catalog.Genre{}, catalog.ErrGenreNotFound
	}
	if err != nil {
		return catalog.Genre{}, fmt.Errorf("failed to get genre: %w", err)
	}
	return g, nil
}

func (s *Store) CountGenres(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM genre`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count genres: %w", err)
	}
	return n, nil
}

func (s *Store) CreateGenre(ctx context.Context, g *catalog.Genre) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO genre (name, description) VALUES ($1, $2) RETURNING id`,
		g.Name, g.Description,
	).Scan(&g.ID)
	if pg.IsDuplicateKeyError(err) {
		return catalog.ErrGenreExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert genre: %w", err)
	}
	return nil
}

const selectBook = `
	SELECT b.id, b.title, b.cover_url, b.cover_attribution, b.description, b.author,
		b.year, b.buy_url, b.genre_id, g.name, b.created_by, b.created_at, b.updated_at
	FROM book b JOIN genre g ON g.id = b.genre_id`

func scanBook(row pgx.Row) (catalog.Book, error) {
	var b catalog.Book
	err := row.Scan(&b.ID, &b.Title, &b.CoverURL, &b.CoverAttribution, &b.Description, &b.Author,
		&b.Year, &b.BuyURL, &b.GenreID, &b.GenreName, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (s *Store) queryBooks(ctx context.Context, query string, args ...any) ([]catalog.Book, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	books, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Book, error) {
		return scanBook(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan books: %w", err)
	}
	return books, nil
}

func (s *Store) RecentBooks(ctx context.Context, limit int) ([]catalog.Book, error) {
	return s.queryBooks(ctx, selectBook+` ORDER BY b.created_at DESC, b.id DESC LIMIT $1`, limit)
}

func (s *Store) BooksByGenre(ctx context.Context, genreID int64) ([]catalog.Book, error) {
	return s.queryBooks(ctx, selectBook+` WHERE b.genre_id = $1 ORDER BY b.title, b.id`, genreID)
}

func (s *Store) BookByID(ctx context.Context, id int64) (catalog.Book, error) {
	b, err := scanBook(s.pool.QueryRow(ctx, selectBook+` WHERE b.id = $1`, id))
	if pg.IsNotFoundError(err) {
		return catalog.Book{}, catalog.ErrBookNotFound
	}
	if err != nil {
		return catalog.Book{}, fmt.Errorf("failed to get book: %w", err)
	}
	return b, nil
}

// CreateBook checks the genre and inserts the book in one transaction.
func (s *Store) CreateBook(ctx context.Context, b *catalog.Book) error {
	return pg.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := lockGenre(ctx, tx, b.GenreID); err != nil {
			return err
		}
		err := tx.QueryRow(ctx, `
			INSERT INTO book (title, cover_url, cover_attribution, description, author, year, buy_url,
				genre_id, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id`,
			b.Title, b.CoverURL, b.CoverAttribution, b.Description, b.Author, b.Year, b.BuyURL,
			b.GenreID, b.CreatedBy, b.CreatedAt, b.UpdatedAt,
		).Scan(&b.ID)
		if err != nil {
			return fmt.Errorf("failed to insert book: %w", err)
		}
		return nil
	})
}

func (s *Store) UpdateBook(ctx context.Context, b *catalog.Book) error {
	return pg.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := lockGenre(ctx, tx, b.GenreID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `
			UPDATE book SET title = $1, cover_url = $2, cover_attribution = $3, description = $4,
				author = $5, year = $6, buy_url = $7, genre_id = $8, updated_at = $9
			WHERE id = $10`,
			b.Title, b.CoverURL, b.CoverAttribution, b.Description, b.Author,
			b.Year, b.BuyURL, b.GenreID, b.UpdatedAt, b.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update book: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return catalog.ErrBookNotFound
		}
		return nil
	})
}

// lockGenre holds a share lock on the genre row until the transaction ends.
func lockGenre(ctx context.Context, tx pgx.Tx, id int64) error {
	var found int
	err := tx.QueryRow(ctx, `SELECT 1 FROM genre WHERE id = $1 FOR SHARE`, id).Scan(&found)
	if pg.IsNotFoundError(err) {
		return catalog.ErrGenreNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check genre: %w", err)
	}
	return nil
}

func (s *Store) DeleteBook(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM book WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrBookNotFound
	}
	return nil
}

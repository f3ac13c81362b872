// Package seed fills an empty catalog with initial genres and books.
package seed

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dmitrymomot/bookshelf/internal/catalog"
	"github.com/dmitrymomot/bookshelf/pkg/logger"
	"github.com/dmitrymomot/bookshelf/pkg/sanitizer"
)

//go:embed data/*.json
var data embed.FS

var ErrMalformedData = errors.New("malformed seed data")

// Catalog is the part of catalog.Service the seeder writes through.
type Catalog interface {
	CountGenres(ctx context.Context) (int, error)
	CreateGenre(ctx context.Context, name, description string) (catalog.Genre, error)
	ImportBook(ctx context.Context, in catalog.BookInput) (catalog.Book, error)
}

type GenreRecord struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type BookRecord struct {
	Title            string `json:"title"`
	CoverURL         string `json:"cover_url"`
	CoverAttribution string `json:"cover_attribution"`
	Author           string `json:"author"`
	Description      string `json:"description"`
	Year             int    `json:"year"`
	BuyURL           string `json:"buy_url"`
	Genre            string `json:"genre"`
}

func (r BookRecord) input() catalog.BookInput {
	return catalog.BookInput{
		Title:            r.Title,
		CoverURL:         r.CoverURL,
		CoverAttribution: r.CoverAttribution,
		Author:           r.Author,
		Description:      sanitizer.MaxLength(r.Description, catalog.MaxDescriptionLen),
		Year:             r.Year,
		BuyURL:           r.BuyURL,
		Genre:            r.Genre,
	}
}

// Source holds the raw JSON arrays to import.
type Source struct {
	Genres []byte
	Books  []byte
}

// Defaults returns the embedded initial data.
func Defaults() Source {
	genres, _ := data.ReadFile("data/genres.json")
	books, _ := data.ReadFile("data/books.json")
	return Source{Genres: genres, Books: books}
}

// FromFiles reads a Source from disk. An empty path falls back to the
// embedded file.
func FromFiles(genresPath, booksPath string) (Source, error) {
	src := Defaults()
	if genresPath != "" {
		b, err := os.ReadFile(genresPath)
		if err != nil {
			return Source{}, fmt.Errorf("failed to read genres: %w", err)
		}
		src.Genres = b
	}
	if booksPath != "" {
		b, err := os.ReadFile(booksPath)
		if err != nil {
			return Source{}, fmt.Errorf("failed to read books: %w", err)
		}
		src.Books = b
	}
	return src, nil
}

// Result summarizes a seeding run.
type Result struct {
	Skipped       bool
	Genres        int
	Books         int
	RejectedItems int
}

type Seeder struct {
	catalog Catalog
	logger  *slog.Logger
}

func New(c Catalog, log *slog.Logger) *Seeder {
	if log == nil {
		log = logger.Discard()
	}
	return &Seeder{catalog: c, logger: log.With(logger.Component("seed"))}
}

// Run imports genres and then books. Nothing is written when the catalog
// already has genres. Records that do not decode or do not validate are
// logged and left out.
func (s *Seeder) Run(ctx context.Context, src Source) (Result, error) {
	var res Result

	n, err := s.catalog.CountGenres(ctx)
	if err != nil {
		return res, err
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "catalog already seeded", slog.Int("genres", n))
		res.Skipped = true
		return res, nil
	}

	genres, err := splitArray(src.Genres)
	if err != nil {
		return res, fmt.Errorf("genres: %w", err)
	}
	books, err := splitArray(src.Books)
	if err != nil {
		return res, fmt.Errorf("books: %w", err)
	}

	for _, raw := range genres {
		var rec GenreRecord
		if err := decodeStrict(raw, &rec); err != nil {
			s.reject(ctx, &res, "malformed genre", raw, err)
			continue
		}
		if _, err := s.catalog.CreateGenre(ctx, rec.Name, rec.Description); err != nil {
			s.reject(ctx, &res, "genre not created", raw, err)
			continue
		}
		res.Genres++
	}

	for _, raw := range books {
		var rec BookRecord
		if err := decodeStrict(raw, &rec); err != nil {
			s.reject(ctx, &res, "malformed book", raw, err)
			continue
		}
		if rec.Genre == "" {
			s.reject(ctx, &res, "book without genre", raw, nil)
			continue
		}
		if _, err := s.catalog.ImportBook(ctx, rec.input()); err != nil {
			s.reject(ctx, &res, "book not created", raw, err)
			continue
		}
		res.Books++
	}

	s.logger.InfoContext(ctx, "catalog seeded",
		slog.Int("genres", res.Genres),
		slog.Int("books", res.Books),
		slog.Int("rejected", res.RejectedItems),
	)
	return res, nil
}

func (s *Seeder) reject(ctx context.Context, res *Result, msg string, raw json.RawMessage, err error) {
	res.RejectedItems++
	attrs := []any{slog.String("record", string(raw))}
	if err != nil {
		attrs = append(attrs, logger.Error(err))
	}
	s.logger.WarnContext(ctx, msg, attrs...)
}

func splitArray(b []byte) ([]json.RawMessage, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, errors.Join(ErrMalformedData, err)
	}
	return items, nil
}

func decodeStrict(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

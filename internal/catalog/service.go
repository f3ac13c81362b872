package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/bookshelf/pkg/logger"
	"github.com/dmitrymomot/bookshelf/pkg/validator"
)

// DefaultRecentLimit is the number of books on the home page.
const DefaultRecentLimit = 10

// Service implements the catalog operations on top of a Storage.
type Service struct {
	store  Storage
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now for timestamps and the year range.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(store Storage, opts ...Option) *Service {
	s := &Service{store: store, logger: logger.Discard(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("catalog"))
	return s
}

func (s *Service) Genres(ctx context.Context) ([]Genre, error) {
	return s.store.ListGenres(ctx)
}

func (s *Service) Genre(ctx context.Context, name string) (Genre, error) {
	return s.store.GenreByName(ctx, name)
}

func (s *Service) CountGenres(ctx context.Context) (int, error) {
	return s.store.CountGenres(ctx)
}

// CreateGenre stores a genre. Names are lowercased.
func (s *Service) CreateGenre(ctx context.Context, name, description string) (Genre, error) {
	name, description = sanitizeGenre(name, description)
	if err := validateGenre(name, description); err != nil {
		return Genre{}, err
	}

	g := Genre{Name: name, Description: description}
	if err := s.store.CreateGenre(ctx, &g); err != nil {
		return Genre{}, fmt.Errorf("failed to create genre %q: %w", name, err)
	}
	return g, nil
}

// RecentBooks returns the newest books first. limit <= 0 means DefaultRecentLimit.
func (s *Service) RecentBooks(ctx context.Context, limit int) ([]Book, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return s.store.RecentBooks(ctx, limit)
}

// GenreBooks returns a genre and its books.
func (s *Service) GenreBooks(ctx context.Context, name string) (Genre, []Book, error) {
	g, err := s.store.GenreByName(ctx, name)
	if err != nil {
		return Genre{}, nil, err
	}
	books, err := s.store.BooksByGenre(ctx, g.ID)
	if err != nil {
		return Genre{}, nil, err
	}
	return g, books, nil
}

// BookBySlug resolves "<id>-<anything>" to a book.
func (s *Service) BookBySlug(ctx context.Context, slug string) (Book, error) {
	id, err := ParseSlug(slug)
	if err != nil {
		return Book{}, err
	}
	return s.store.BookByID(ctx, id)
}

// CanEdit reports whether actor may change b. Books without a recorded
// creator are editable by any logged-in user.
func CanEdit(actor *uuid.UUID, b Book) bool {
	if actor == nil {
		return false
	}
	return b.CreatedBy == nil || *b.CreatedBy == *actor
}

// CreateBook validates in and stores a book created by actor.
func (s *Service) CreateBook(ctx context.Context, actor *uuid.UUID, in BookInput) (Book, error) {
	if actor == nil {
		return Book{}, ErrUnauthorized
	}
	return s.createBook(ctx, actor, in)
}

// ImportBook stores a book without a creator, as seed data does.
func (s *Service) ImportBook(ctx context.Context, in BookInput) (Book, error) {
	return s.createBook(ctx, nil, in)
}

func (s *Service) createBook(ctx context.Context, creator *uuid.UUID, in BookInput) (Book, error) {
	in = in.sanitize()
	if err := in.validate(s.now()); err != nil {
		return Book{}, err
	}
	g, err := s.resolveGenre(ctx, in.Genre)
	if err != nil {
		return Book{}, err
	}

	now := s.now().UTC()
	b := Book{CreatedBy: creator, CreatedAt: now}
	apply(&b, in, g, now)

	if err := s.store.CreateBook(ctx, &b); errors.Is(err, ErrGenreNotFound) {
		return Book{}, validator.Apply(genreExists(false))
	} else if err != nil {
		return Book{}, fmt.Errorf("failed to create book: %w", err)
	}

	s.logger.InfoContext(ctx, "book created", logger.BookID(b.ID), logger.Genre(g.Name))
	return b, nil
}

// UpdateBook replaces the editable fields of the book behind slug.
func (s *Service) UpdateBook(ctx context.Context, actor *uuid.UUID, slug string, in BookInput) (Book, error) {
	b, err := s.editable(ctx, actor, slug)
	if err != nil {
		return Book{}, err
	}

	in = in.sanitize()
	if err := in.validate(s.now()); err != nil {
		return b, err
	}
	g, err := s.resolveGenre(ctx, in.Genre)
	if err != nil {
		return b, err
	}

	apply(&b, in, g, s.now().UTC())
	if err := s.store.UpdateBook(ctx, &b); errors.Is(err, ErrGenreNotFound) {
		return b, validator.Apply(genreExists(false))
	} else if err != nil {
		return Book{}, fmt.Errorf("failed to update book %d: %w", b.ID, err)
	}

	s.logger.InfoContext(ctx, "book updated", logger.BookID(b.ID))
	return b, nil
}

// DeleteBook removes the book behind slug and returns what was deleted.
func (s *Service) DeleteBook(ctx context.Context, actor *uuid.UUID, slug string) (Book, error) {
	b, err := s.editable(ctx, actor, slug)
	if err != nil {
		return Book{}, err
	}
	if err := s.store.DeleteBook(ctx, b.ID); err != nil {
		return Book{}, fmt.Errorf("failed to delete book %d: %w", b.ID, err)
	}

	s.logger.InfoContext(ctx, "book deleted", logger.BookID(b.ID))
	return b, nil
}

// EditableBook returns the book behind slug if actor may change it.
func (s *Service) EditableBook(ctx context.Context, actor *uuid.UUID, slug string) (Book, error) {
	return s.editable(ctx, actor, slug)
}

func (s *Service) editable(ctx context.Context, actor *uuid.UUID, slug string) (Book, error) {
	if actor == nil {
		return Book{}, ErrUnauthorized
	}
	b, err := s.BookBySlug(ctx, slug)
	if err != nil {
		return Book{}, err
	}
	if !CanEdit(actor, b) {
		return b, ErrForbidden
	}
	return b, nil
}

func (s *Service) resolveGenre(ctx context.Context, name string) (Genre, error) {
	g, err := s.store.GenreByName(ctx, name)
	if err != nil && !errors.Is(err, ErrGenreNotFound) {
		return Genre{}, err
	}
	if err := validator.Apply(genreExists(err == nil)); err != nil {
		return Genre{}, err
	}
	return g, nil
}

func genreExists(found bool) validator.Rule {
	return validator.Custom("genre", func() bool { return found }, "does not exist")
}

func apply(b *Book, in BookInput, g Genre, now time.Time) {
	b.Title = in.Title
	b.CoverURL = in.CoverURL
	b.CoverAttribution = in.CoverAttribution
	b.Description = in.Description
	b.Author = in.Author
	b.Year = in.Year
	b.BuyURL = in.BuyURL
	b.GenreID = g.ID
	b.GenreName = g.Name
	b.UpdatedAt = now
}

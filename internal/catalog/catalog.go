package catalog

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/bookshelf/pkg/slug"
)

// Column limits of the genre and book tables.
const (
	MaxGenreNameLen        = 80
	MaxGenreDescriptionLen = 250
	MaxTitleLen            = 80
	MaxAuthorLen           = 80
	MaxURLLen              = 250
	MaxDescriptionLen      = 250
)

type Genre struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// URL is the path of the genre page.
func (g Genre) URL() string {
	return genreURL(g.Name)
}

func genreURL(name string) string {
	return "/genre/" + url.PathEscape(name) + "/"
}

type Book struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	CoverURL         string     `json:"cover_url,omitempty"`
	CoverAttribution string     `json:"cover_attribution,omitempty"`
	Description      string     `json:"description,omitempty"`
	Author           string     `json:"author,omitempty"`
	Year             int        `json:"year,omitempty"`
	BuyURL           string     `json:"buy_url,omitempty"`
	GenreID          int64      `json:"genre_id"`
	GenreName        string     `json:"genre"`
	CreatedBy        *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

var titleWords = map[string]string{"&": "and"}

// Slug is the book's URL segment: "<id>-<slugified title>".
func (b Book) Slug() string {
	id := strconv.FormatInt(b.ID, 10)
	if s := slug.Make(b.Title, slug.Replace(titleWords), slug.MaxLength(MaxTitleLen)); s != "" {
		return id + "-" + s
	}
	return id
}

// URL is the canonical path of the book page.
func (b Book) URL() string {
	return "/book/" + b.Slug()
}

// GenreURL is the path of the page listing the book's genre.
func (b Book) GenreURL() string {
	return genreURL(b.GenreName)
}

// ParseSlug returns the id a book slug starts with. Only the id matters, so
// slugs made from an older title still resolve.
func ParseSlug(s string) (int64, error) {
	idPart, _, _ := strings.Cut(s, "-")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrBookNotFound
	}
	return id, nil
}

// BookInput is the editable part of a book as submitted by a form.
type BookInput struct {
	Title            string
	CoverURL         string
	CoverAttribution string
	Description      string
	Author           string
	Year             int
	BuyURL           string
	// Genre is the genre name the book is filed under.
	Genre string
}

// InputFromBook pre-fills an edit form.
func InputFromBook(b Book) BookInput {
	return BookInput{
		Title:            b.Title,
		CoverURL:         b.CoverURL,
		CoverAttribution: b.CoverAttribution,
		Description:      b.Description,
		Author:           b.Author,
		Year:             b.Year,
		BuyURL:           b.BuyURL,
		Genre:            b.GenreName,
	}
}

// Storage persists genres and books. Lookups return ErrGenreNotFound or
// ErrBookNotFound on a miss. Books are returned with GenreName filled in.
type Storage interface {
	ListGenres(ctx context.Context) ([]Genre, error)
	GenreByName(ctx context.Context, name string) (Genre, error)
	CountGenres(ctx context.Context) (int, error)
	// CreateGenre sets g.ID. It returns ErrGenreExists for a taken name.
	CreateGenre(ctx context.Context, g *Genre) error

	RecentBooks(ctx context.Context, limit int) ([]Book, error)
	BooksByGenre(ctx context.Context, genreID int64) ([]Book, error)
	BookByID(ctx context.Context, id int64) (Book, error)
	// CreateBook sets b.ID. CreateBook and UpdateBook check b.GenreID in the
	// same transaction as the write and return ErrGenreNotFound when it is gone.
	CreateBook(ctx context.Context, b *Book) error
	UpdateBook(ctx context.Context, b *Book) error
	DeleteBook(ctx context.Context, id int64) error
}

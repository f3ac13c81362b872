package web

import (
	"github.com/dmitrymomot/bookshelf/handler"
	"github.com/dmitrymomot/bookshelf/internal/catalog"
)

type genreBooksResponse struct {
	Genre catalog.Genre  `json:"genre"`
	Books []catalog.Book `json:"books"`
}

func (h *BookHandler) apiGenres(ctx handler.Context, _ struct{}) handler.Response {
	genres, err := h.catalog.Genres(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if genres == nil {
		genres = []catalog.Genre{}
	}
	return handler.JSON(genres)
}

func (h *BookHandler) apiGenreBooks(ctx handler.Context, req genreRequest) handler.Response {
	g, books, err := h.catalog.GenreBooks(ctx, req.Genre)
	if err != nil {
		return handler.Error(err)
	}
	if books == nil {
		books = []catalog.Book{}
	}
	return handler.JSON(genreBooksResponse{Genre: g, Books: books})
}

func (h *BookHandler) apiBook(ctx handler.Context, req bookRequest) handler.Response {
	b, err := h.catalog.BookBySlug(ctx, req.Book)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(b)
}

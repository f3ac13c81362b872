package catalog_test

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/dmitrymomot/bookshelf/internal/catalog"
)

// memStore is an in-memory catalog.Storage for service tests.
type memStore struct {
	mu     sync.Mutex
	genres []catalog.Genre
	books  map[int64]catalog.Book
	nextID int64
}

func newMemStore() *memStore {
	return &memStore{books: make(map[int64]catalog.Book)}
}

func (m *memStore) ListGenres(context.Context) ([]catalog.Genre, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.genres), nil
}

func (m *memStore) GenreByName(_ context.Context, name string) (catalog.Genre, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.genres {
		if g.Name == name {
			return g, nil
		}
	}
	return catalog.Genre{}, catalog.ErrGenreNotFound
}

func (m *memStore) CountGenres(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.genres), nil
}

func (m *memStore) CreateGenre(_ context.Context, g *catalog.Genre) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.genres {
		if existing.Name == g.Name {
			return catalog.ErrGenreExists
		}
	}
	g.ID = int64(len(m.genres) + 1)
	m.genres = append(m.genres, *g)
	return nil
}

func (m *memStore) RecentBooks(_ context.Context, limit int) ([]catalog.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	books := make([]catalog.Book, 0, len(m.books))
	for _, b := range m.books {
		books = append(books, b)
	}
	slices.SortFunc(books, func(a, b catalog.Book) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if len(books) > limit {
		books = books[:limit]
	}
	return books, nil
}

func (m *memStore) BooksByGenre(_ context.Context, genreID int64) ([]catalog.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var books []catalog.Book
	for _, b := range m.books {
		if b.GenreID == genreID {
			books = append(books, b)
		}
	}
	slices.SortFunc(books, func(a, b catalog.Book) int { return cmp.Compare(a.Title, b.Title) })
	return books, nil
}

func (m *memStore) BookByID(_ context.Context, id int64) (catalog.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return catalog.Book{}, catalog.ErrBookNotFound
	}
	return b, nil
}

func (m *memStore) CreateBook(_ context.Context, b *catalog.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasGenre(b.GenreID) {
		return catalog.ErrGenreNotFound
	}
	m.nextID++
	b.ID = m.nextID
	m.books[b.ID] = *b
	return nil
}

func (m *memStore) UpdateBook(_ context.Context, b *catalog.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasGenre(b.GenreID) {
		return catalog.ErrGenreNotFound
	}
	if _, ok := m.books[b.ID]; !ok {
		return catalog.ErrBookNotFound
	}
	m.books[b.ID] = *b
	return nil
}

func (m *memStore) DeleteBook(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[id]; !ok {
		return catalog.ErrBookNotFound
	}
	delete(m.books, id)
	return nil
}

func (m *memStore) hasGenre(id int64) bool {
	return slices.ContainsFunc(m.genres, func(g catalog.Genre) bool { return g.ID == id })
}

// genreLosingStore behaves as if every genre was deleted right after lookup.
type genreLosingStore struct {
	*memStore
}

func (s *genreLosingStore) CreateBook(context.Context, *catalog.Book) error {
	return catalog.ErrGenreNotFound
}

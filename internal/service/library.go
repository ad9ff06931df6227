package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/pagetrail/pagetrail-server/internal/domain"
	domainerrors "github.com/pagetrail/pagetrail-server/internal/errors"
	"github.com/pagetrail/pagetrail-server/internal/id"
	"github.com/pagetrail/pagetrail-server/internal/metrics"
	"github.com/pagetrail/pagetrail-server/internal/search"
	"github.com/pagetrail/pagetrail-server/internal/sse"
	"github.com/pagetrail/pagetrail-server/internal/store"
	"github.com/pagetrail/pagetrail-server/internal/validation"
	"github.com/pagetrail/pagetrail-server/internal/view"
)

// BookStore loads and saves the whole collection.
type BookStore interface {
	LoadBooks(ctx context.Context) []domain.Book
	SaveBooks(ctx context.Context, books []domain.Book) error
}

// EventEmitter receives change notifications.
type EventEmitter interface {
	Emit(event any)
}

// Indexer keeps a search index in step with the collection.
type Indexer interface {
	IndexBook(ctx context.Context, b *domain.Book) error
	DeleteBook(ctx context.Context, id string) error
	Replace(ctx context.Context, books []domain.Book) error
	Search(ctx context.Context, p search.Params) (*search.Result, error)
}

// LibraryService owns the in-memory collection. Every mutation updates
// memory, persists the whole collection, then notifies listeners. A failed
// persist is returned as a STORAGE error after memory and listeners have
// already moved on.
type LibraryService struct {
	mu    sync.RWMutex
	books []domain.Book

	store     BookStore
	emitter   EventEmitter
	indexer   Indexer
	validator *validation.Validator
	metrics   *metrics.Metrics
	logger    *slog.Logger
	table     *view.TableState
	now       func() time.Time
}

// NewLibraryService loads the collection from bookStore. emitter, indexer,
// and m may be nil.
func NewLibraryService(
	ctx context.Context,
	bookStore BookStore,
	emitter EventEmitter,
	indexer Indexer,
	validator *validation.Validator,
	m *metrics.Metrics,
	logger *slog.Logger,
) *LibraryService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if validator == nil {
		validator = validation.New()
	}
	s := &LibraryService{
		books:     bookStore.LoadBooks(ctx),
		store:     bookStore,
		emitter:   emitter,
		indexer:   indexer,
		validator: validator,
		metrics:   m,
		logger:    logger,
		table:     view.NewTableState(),
		now:       time.Now,
	}

	s.metrics.SetBooks(len(s.books))
	if indexer != nil {
		if err := indexer.Replace(ctx, s.books); err != nil {
			logger.Warn("failed to build search index", "error", err)
		}
	}
	logger.Info("library loaded", "books", len(s.books))
	return s
}

// List returns a copy of the collection in stored order.
func (s *LibraryService) List(_ context.Context) []domain.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneBooks(s.books)
}

// Get returns one book.
func (s *LibraryService) Get(_ context.Context, bookID string) (*domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(bookID)
	if i < 0 {
		return nil, domainerrors.NotFoundf("book %s not found", bookID)
	}
	b := s.books[i].Clone()
	return &b, nil
}

// Add validates in and appends a new book with a fresh id and dateAdded.
// On a STORAGE error the returned book is still part of the collection.
func (s *LibraryService) Add(ctx context.Context, in BookInput) (*domain.Book, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	bookID, err := id.NewBookID()
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to generate book id")
	}

	b := domain.Book{ID: bookID, DateAdded: s.timestamp()}
	in.apply(&b)

	s.mu.Lock()
	s.books = append(s.books, b)
	persistErr := s.persistLocked(ctx)
	total := len(s.books)
	s.mu.Unlock()

	s.notify(ctx, "add", total, sse.NewBookCreatedEvent(&b))
	s.indexBook(ctx, &b)
	s.logger.Info("book added", "book_id", b.ID, "title", b.Title)

	out := b.Clone()
	return &out, persistErr
}

// Edit replaces every editable field of a book. Id and dateAdded are kept.
func (s *LibraryService) Edit(ctx context.Context, bookID string, in BookInput) (*domain.Book, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	return s.update(ctx, "edit", bookID, in.apply)
}

// ChangeStatus sets the status and nothing else.
func (s *LibraryService) ChangeStatus(ctx context.Context, bookID string, status domain.Status) (*domain.Book, error) {
	if err := s.validator.Var("status", string(status), "bookstatus"); err != nil {
		return nil, err
	}
	return s.update(ctx, "status", bookID, func(b *domain.Book) {
		b.Status = status
	})
}

// ToggleFavorite flips the favorite flag.
func (s *LibraryService) ToggleFavorite(ctx context.Context, bookID string) (*domain.Book, error) {
	return s.update(ctx, "favorite", bookID, func(b *domain.Book) {
		b.Favorite = !b.Favorite
	})
}

// Delete removes a book. Callers are responsible for confirming intent.
func (s *LibraryService) Delete(ctx context.Context, bookID string) error {
	s.mu.Lock()
	i := s.indexOf(bookID)
	if i < 0 {
		s.mu.Unlock()
		return domainerrors.NotFoundf("book %s not found", bookID)
	}
	s.books = slices.Delete(s.books, i, i+1)
	persistErr := s.persistLocked(ctx)
	total := len(s.books)
	s.mu.Unlock()

	s.notify(ctx, "delete", total, sse.NewBookDeletedEvent(bookID, s.now().UTC()))
	if s.indexer != nil {
		if err := s.indexer.DeleteBook(ctx, bookID); err != nil {
			s.logger.Warn("failed to remove book from search index", "book_id", bookID, "error", err)
		}
	}
	s.logger.Info("book deleted", "book_id", bookID)
	return persistErr
}

// Count returns the number of books.
func (s *LibraryService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}

func (s *LibraryService) update(ctx context.Context, op, bookID string, mutate func(*domain.Book)) (*domain.Book, error) {
	s.mu.Lock()
	i := s.indexOf(bookID)
	if i < 0 {
		s.mu.Unlock()
		return nil, domainerrors.NotFoundf("book %s not found", bookID)
	}
	b := s.books[i].Clone()
	mutate(&b)
	s.books[i] = b
	persistErr := s.persistLocked(ctx)
	total := len(s.books)
	s.mu.Unlock()

	s.notify(ctx, op, total, sse.NewBookUpdatedEvent(&b))
	s.indexBook(ctx, &b)
	s.logger.Debug("book updated", "op", op, "book_id", bookID)

	out := b.Clone()
	return &out, persistErr
}

// persistLocked saves the collection. Callers hold s.mu for writing so
// saves land in mutation order.
func (s *LibraryService) persistLocked(ctx context.Context) error {
	if err := s.store.SaveBooks(ctx, s.books); err != nil {
		s.metrics.IncPersistFailure(store.KeyBooks)
		s.logger.Error("failed to persist collection", "books", len(s.books), "error", err)
		var domainErr *domainerrors.Error
		if domainerrors.As(err, &domainErr) {
			return err
		}
		return domainerrors.Storage(err, "failed to save books")
	}
	return nil
}

// notify emits the specific event followed by library.changed.
func (s *LibraryService) notify(_ context.Context, op string, total int, event sse.Event) {
	s.metrics.IncMutation(op)
	s.metrics.SetBooks(total)
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(event)
	s.emitter.Emit(sse.NewLibraryChangedEvent(op, total))
}

func (s *LibraryService) indexBook(ctx context.Context, b *domain.Book) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.IndexBook(ctx, b); err != nil {
		s.logger.Warn("failed to index book", "book_id", b.ID, "error", err)
	}
}

func (s *LibraryService) indexOf(bookID string) int {
	return slices.IndexFunc(s.books, func(b domain.Book) bool { return b.ID == bookID })
}

func (s *LibraryService) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

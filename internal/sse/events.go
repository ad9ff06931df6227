// Package sse implements Server-Sent Events for pushing collection changes to
// connected clients.
package sse

import (
	"time"

	"github.com/pagetrail/pagetrail-server/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventBookCreated is sent after a book is added.
	EventBookCreated EventType = "book.created"
	// EventBookUpdated is sent after an edit, a status change, or a favorite toggle.
	EventBookUpdated EventType = "book.updated"
	// EventBookDeleted is sent after a book is removed.
	EventBookDeleted EventType = "book.deleted"

	// EventLibraryImported is sent after an import replaced or extended the collection.
	EventLibraryImported EventType = "library.imported"
	// EventLibraryChanged follows every mutation so clients can re-render
	// derived views without tracking individual book events.
	EventLibraryChanged EventType = "library.changed"

	// EventHeartbeat keeps idle connections open.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
}

// BookEventData is the payload for created and updated events. It carries
// the full book so clients can render it without another request.
type BookEventData struct {
	Book *domain.Book `json:"book"`
}

// BookDeletedEventData is the payload for delete events.
type BookDeletedEventData struct {
	DeletedAt time.Time `json:"deletedAt"`
	BookID    string    `json:"bookId"`
}

// LibraryImportedEventData is the payload for import events.
type LibraryImportedEventData struct {
	Mode     string `json:"mode"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Total    int    `json:"total"`
}

// LibraryChangedEventData is the payload for change events.
type LibraryChangedEventData struct {
	Reason string `json:"reason"`
	Total  int    `json:"total"`
}

// HeartbeatEventData is the payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"serverTime"`
}

func newEvent(t EventType, data any) Event {
	return Event{Type: t, Data: data, Timestamp: time.Now().UTC()}
}

// NewBookCreatedEvent creates a book.created event.
func NewBookCreatedEvent(book *domain.Book) Event {
	return newEvent(EventBookCreated, BookEventData{Book: book})
}

// NewBookUpdatedEvent creates a book.updated event.
func NewBookUpdatedEvent(book *domain.Book) Event {
	return newEvent(EventBookUpdated, BookEventData{Book: book})
}

// NewBookDeletedEvent creates a book.deleted event.
func NewBookDeletedEvent(bookID string, deletedAt time.Time) Event {
	return newEvent(EventBookDeleted, BookDeletedEventData{BookID: bookID, DeletedAt: deletedAt})
}

// NewLibraryImportedEvent creates a library.imported event.
func NewLibraryImportedEvent(mode string, imported, skipped, total int) Event {
	return newEvent(EventLibraryImported, LibraryImportedEventData{
		Mode:     mode,
		Imported: imported,
		Skipped:  skipped,
		Total:    total,
	})
}

// NewLibraryChangedEvent creates a library.changed event.
func NewLibraryChangedEvent(reason string, total int) Event {
	return newEvent(EventLibraryChanged, LibraryChangedEventData{Reason: reason, Total: total})
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return newEvent(EventHeartbeat, HeartbeatEventData{ServerTime: time.Now().UTC()})
}

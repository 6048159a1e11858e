package repository

import (
	"context"
	"time"

	"github.com/joshdurbin/shortlinks/internal/domain"
)

// LinkRepository defines the durable authority for links and access events.
// Implementations must make IncrementClickIfEligible a single atomic
// conditional update against authoritative state at write time.
type LinkRepository interface {
	// CodeExists checks whether a short code exists, byte-exact and
	// regardless of soft-delete state. Codes are never recycled.
	CodeExists(ctx context.Context, shortCode string) (bool, error)

	// CreateLink persists a new link. Returns domain.ErrDuplicateCode if the
	// short_code unique constraint is violated.
	CreateLink(ctx context.Context, link *domain.Link) error

	// GetActive retrieves a non-deleted link by short code. Returns
	// domain.ErrNotFound if absent or soft-deleted.
	GetActive(ctx context.Context, shortCode string) (*domain.Link, error)

	// GetAny retrieves a link by short code including soft-deleted records.
	GetAny(ctx context.Context, shortCode string) (*domain.Link, error)

	// SetActive flips the active flag on a non-deleted link and returns the
	// updated record. Returns domain.ErrNotFound if absent or soft-deleted.
	SetActive(ctx context.Context, shortCode string, isActive bool) (*domain.Link, error)

	// SoftDelete marks a non-deleted link as deleted at the given time.
	// Returns false if no non-deleted record existed.
	SoftDelete(ctx context.Context, shortCode string, deletedAt time.Time) (bool, error)

	// IncrementClickIfEligible atomically increments the click count and sets
	// last_accessed_at, but only if the link is not deleted, is active, and is
	// not expired at the given instant. Returns whether the update applied.
	IncrementClickIfEligible(ctx context.Context, linkID string, at time.Time) (bool, error)

	// AppendAccessEvent records one successful redirect.
	AppendAccessEvent(ctx context.Context, event *domain.AccessEvent) error

	// DailyClickBuckets aggregates access events for a link by UTC calendar
	// date over [fromUTC, toUTC] inclusive, ascending. Days with zero clicks
	// are omitted.
	DailyClickBuckets(ctx context.Context, linkID string, fromUTC, toUTC time.Time) ([]domain.DailyClicks, error)

	// Close closes the repository connection.
	Close() error
}

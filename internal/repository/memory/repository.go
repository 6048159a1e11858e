package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/joshdurbin/shortlinks/internal/domain"
	"github.com/joshdurbin/shortlinks/internal/repository"
)

// Repository implements repository.LinkRepository with in-memory maps. It is
// the reference implementation used by tests and the memory driver.
type Repository struct {
	mu     sync.RWMutex
	byCode map[string]*domain.Link
	byID   map[string]*domain.Link
	events []*domain.AccessEvent
}

// New creates an empty in-memory repository.
func New() *Repository {
	return &Repository{
		byCode: make(map[string]*domain.Link),
		byID:   make(map[string]*domain.Link),
	}
}

// CodeExists checks whether a short code exists, including soft-deleted records.
func (r *Repository) CodeExists(ctx context.Context, shortCode string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.byCode[shortCode]
	return exists, nil
}

// CreateLink persists a new link.
func (r *Repository) CreateLink(ctx context.Context, link *domain.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byCode[link.ShortCode]; exists {
		return domain.ErrDuplicateCode
	}

	stored := copyLink(link)
	r.byCode[stored.ShortCode] = stored
	r.byID[stored.ID] = stored
	return nil
}

// GetActive retrieves a non-deleted link by short code.
func (r *Repository) GetActive(ctx context.Context, shortCode string) (*domain.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	link, exists := r.byCode[shortCode]
	if !exists || link.IsDeleted {
		return nil, domain.ErrNotFound
	}
	return copyLink(link), nil
}

// GetAny retrieves a link by short code including soft-deleted records.
func (r *Repository) GetAny(ctx context.Context, shortCode string) (*domain.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	link, exists := r.byCode[shortCode]
	if !exists {
		return nil, domain.ErrNotFound
	}
	return copyLink(link), nil
}

// SetActive flips the active flag on a non-deleted link.
func (r *Repository) SetActive(ctx context.Context, shortCode string, isActive bool) (*domain.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, exists := r.byCode[shortCode]
	if !exists || link.IsDeleted {
		return nil, domain.ErrNotFound
	}

	link.IsActive = isActive
	return copyLink(link), nil
}

// SoftDelete marks a non-deleted link as deleted.
func (r *Repository) SoftDelete(ctx context.Context, shortCode string, deletedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, exists := r.byCode[shortCode]
	if !exists || link.IsDeleted {
		return false, nil
	}

	at := deletedAt.UTC()
	link.IsDeleted = true
	link.DeletedAt = &at
	return true, nil
}

// IncrementClickIfEligible increments the click count only if the link is
// active, not deleted, and not expired at the given instant. The eligibility
// check and the write happen under one lock, so a concurrent deactivate or
// delete can never be counted against.
func (r *Repository) IncrementClickIfEligible(ctx context.Context, linkID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, exists := r.byID[linkID]
	if !exists || link.IsDeleted || !link.IsActive || link.Expired(at) {
		return false, nil
	}

	accessed := at.UTC()
	link.ClickCount++
	link.LastAccessedAt = &accessed
	return true, nil
}

// AppendAccessEvent records one successful redirect.
func (r *Repository) AppendAccessEvent(ctx context.Context, event *domain.AccessEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *event
	stored.AccessedAt = stored.AccessedAt.UTC()
	r.events = append(r.events, &stored)
	return nil
}

// DailyClickBuckets aggregates access events by UTC calendar date, ascending.
func (r *Repository) DailyClickBuckets(ctx context.Context, linkID string, fromUTC, toUTC time.Time) ([]domain.DailyClicks, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int64)
	for _, ev := range r.events {
		if ev.LinkID != linkID {
			continue
		}
		at := ev.AccessedAt.UTC()
		if at.Before(fromUTC) || at.After(toUTC) {
			continue
		}
		counts[at.Format("2006-01-02")]++
	}

	days := make([]string, 0, len(counts))
	for day := range counts {
		days = append(days, day)
	}
	sort.Strings(days)

	buckets := make([]domain.DailyClicks, 0, len(days))
	for _, day := range days {
		buckets = append(buckets, domain.DailyClicks{DateUTC: day, Clicks: counts[day]})
	}
	return buckets, nil
}

// Close is a no-op for the in-memory repository.
func (r *Repository) Close() error {
	return nil
}

func copyLink(link *domain.Link) *domain.Link {
	out := *link
	if link.ExpiresAt != nil {
		t := *link.ExpiresAt
		out.ExpiresAt = &t
	}
	if link.DeletedAt != nil {
		t := *link.DeletedAt
		out.DeletedAt = &t
	}
	if link.LastAccessedAt != nil {
		t := *link.LastAccessedAt
		out.LastAccessedAt = &t
	}
	return &out
}

// Ensure Repository implements the interface
var _ repository.LinkRepository = (*Repository)(nil)

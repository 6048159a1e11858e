package service

import (
	"context"
	"time"

	"github.com/joshdurbin/shortlinks/internal/domain"
)

// LinkService defines the interface for short link operations. All methods
// are safe for concurrent use.
type LinkService interface {
	// Create allocates a short code (custom alias or generated), persists the
	// link, and populates the cache.
	Create(ctx context.Context, req domain.CreateLinkRequest) (*domain.Link, error)

	// Get returns the non-deleted record, bypassing the cache.
	Get(ctx context.Context, shortCode string) (*domain.Link, error)

	// SetActive flips the active flag and invalidates the cache entry.
	SetActive(ctx context.Context, shortCode string, isActive bool) (*domain.Link, error)

	// Delete soft-deletes the link and invalidates the cache entry. Returns
	// false if no non-deleted record existed.
	Delete(ctx context.Context, shortCode string) (bool, error)

	// Stats aggregates clicks by UTC calendar day over [from, to]; nil bounds
	// default to the 30 days ending now.
	Stats(ctx context.Context, shortCode string, from, to *time.Time) (*domain.Stats, error)

	// ResolveRedirect returns the original URL for an eligible link, counting
	// the click and recording an access event. Returns domain.ErrNotFound or
	// domain.ErrExpired for ineligible links, without touching click
	// accounting.
	ResolveRedirect(ctx context.Context, shortCode string, access domain.AccessInfo) (string, error)

	// Close closes the service and its dependencies.
	Close() error
}

package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/joshdurbin/shortlinks/internal/domain"
)

// LinkRepository is a mock implementation of repository.LinkRepository
type LinkRepository struct {
	mock.Mock
}

// CodeExists checks whether a short code exists
func (m *LinkRepository) CodeExists(ctx context.Context, shortCode string) (bool, error) {
	args := m.Called(ctx, shortCode)
	return args.Bool(0), args.Error(1)
}

// CreateLink persists a new link
func (m *LinkRepository) CreateLink(ctx context.Context, link *domain.Link) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

// GetActive retrieves a non-deleted link by short code
func (m *LinkRepository) GetActive(ctx context.Context, shortCode string) (*domain.Link, error) {
	args := m.Called(ctx, shortCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

// GetAny retrieves a link by short code including soft-deleted records
func (m *LinkRepository) GetAny(ctx context.Context, shortCode string) (*domain.Link, error) {
	args := m.Called(ctx, shortCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

// SetActive flips the active flag on a non-deleted link
func (m *LinkRepository) SetActive(ctx context.Context, shortCode string, isActive bool) (*domain.Link, error) {
	args := m.Called(ctx, shortCode, isActive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

// SoftDelete marks a non-deleted link as deleted
func (m *LinkRepository) SoftDelete(ctx context.Context, shortCode string, deletedAt time.Time) (bool, error) {
	args := m.Called(ctx, shortCode, deletedAt)
	return args.Bool(0), args.Error(1)
}

// IncrementClickIfEligible atomically increments the click count if eligible
func (m *LinkRepository) IncrementClickIfEligible(ctx context.Context, linkID string, at time.Time) (bool, error) {
	args := m.Called(ctx, linkID, at)
	return args.Bool(0), args.Error(1)
}

// AppendAccessEvent records one successful redirect
func (m *LinkRepository) AppendAccessEvent(ctx context.Context, event *domain.AccessEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// DailyClickBuckets aggregates access events by UTC calendar date
func (m *LinkRepository) DailyClickBuckets(ctx context.Context, linkID string, fromUTC, toUTC time.Time) ([]domain.DailyClicks, error) {
	args := m.Called(ctx, linkID, fromUTC, toUTC)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyClicks), args.Error(1)
}

// Close closes the repository connection
func (m *LinkRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

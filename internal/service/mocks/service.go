package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/joshdurbin/shortlinks/internal/domain"
)

// LinkService is a mock implementation of service.LinkService
type LinkService struct {
	mock.Mock
}

// Create allocates a short code and persists the link
func (m *LinkService) Create(ctx context.Context, req domain.CreateLinkRequest) (*domain.Link, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

// Get returns the non-deleted record
func (m *LinkService) Get(ctx context.Context, shortCode string) (*domain.Link, error) {
	args := m.Called(ctx, shortCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

// SetActive flips the active flag
func (m *LinkService) SetActive(ctx context.Context, shortCode string, isActive bool) (*domain.Link, error) {
	args := m.Called(ctx, shortCode, isActive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

// Delete soft-deletes the link
func (m *LinkService) Delete(ctx context.Context, shortCode string) (bool, error) {
	args := m.Called(ctx, shortCode)
	return args.Bool(0), args.Error(1)
}

// Stats aggregates clicks by UTC calendar day
func (m *LinkService) Stats(ctx context.Context, shortCode string, from, to *time.Time) (*domain.Stats, error) {
	args := m.Called(ctx, shortCode, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Stats), args.Error(1)
}

// ResolveRedirect resolves a short code to its original URL
func (m *LinkService) ResolveRedirect(ctx context.Context, shortCode string, access domain.AccessInfo) (string, error) {
	args := m.Called(ctx, shortCode, access)
	return args.String(0), args.Error(1)
}

// Close closes the service
func (m *LinkService) Close() error {
	args := m.Called()
	return args.Error(0)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joshdurbin/shortlinks/internal/cache"
	"github.com/joshdurbin/shortlinks/internal/clock"
	"github.com/joshdurbin/shortlinks/internal/domain"
	"github.com/joshdurbin/shortlinks/internal/metrics"
	"github.com/joshdurbin/shortlinks/internal/repository"
	"github.com/joshdurbin/shortlinks/internal/shortener"
)

const (
	// defaultCacheTTL applies to links without an expiry.
	defaultCacheTTL = 24 * time.Hour

	// minCacheTTL floors the TTL for near-expired links. Some cache
	// implementations treat zero or negative TTLs as "cache forever".
	minCacheTTL = time.Minute

	// defaultStatsWindow is the stats window when bounds are omitted.
	defaultStatsWindow = 30 * 24 * time.Hour
)

// aliasPattern is the alias format rule. Codes are case-sensitive.
var aliasPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{4,20}$`)

// linkService implements LinkService
type linkService struct {
	repo      repository.LinkRepository
	cache     cache.Cache
	generator shortener.Generator
	genConfig shortener.Config
	clk       clock.Clock
	logger    *zap.Logger
}

// New creates a new link service.
func New(repo repository.LinkRepository, c cache.Cache, generator shortener.Generator, genConfig shortener.Config, clk clock.Clock, logger *zap.Logger) LinkService {
	return &linkService{
		repo:      repo,
		cache:     c,
		generator: generator,
		genConfig: genConfig,
		clk:       clk,
		logger:    logger,
	}
}

// Create allocates a short code, persists the link, and populates the cache.
func (s *linkService) Create(ctx context.Context, req domain.CreateLinkRequest) (*domain.Link, error) {
	now := s.clk.Now()

	if err := validateCreate(req, now); err != nil {
		return nil, err
	}

	shortCode, err := s.allocateCode(ctx, req.CustomAlias)
	if err != nil {
		return nil, err
	}

	link := &domain.Link{
		ID:          uuid.NewString(),
		ShortCode:   shortCode,
		OriginalURL: req.OriginalURL,
		CreatedAt:   now,
		ExpiresAt:   req.ExpiresAt,
		IsActive:    true,
		IsDeleted:   false,
		ClickCount:  0,
	}

	if err := s.repo.CreateLink(ctx, link); err != nil {
		if errors.Is(err, domain.ErrDuplicateCode) && req.CustomAlias != "" {
			// Lost the race between the existence check and the insert; the
			// unique constraint is the authority.
			return nil, domain.ErrAliasConflict
		}
		return nil, fmt.Errorf("failed to create link: %w", err)
	}

	if err := s.cache.Set(ctx, link.ShortCode, cacheEntryFor(link), cacheTTL(link.ExpiresAt, now)); err != nil {
		// Cache population is an optimization; the link is durable already.
		s.logger.Warn("failed to cache new link",
			zap.String("short_code", link.ShortCode), zap.Error(err))
	}

	return link, nil
}

// allocateCode resolves the custom alias or generates a unique random code.
func (s *linkService) allocateCode(ctx context.Context, customAlias string) (string, error) {
	if customAlias != "" {
		exists, err := s.repo.CodeExists(ctx, customAlias)
		if err != nil {
			return "", fmt.Errorf("failed to check alias: %w", err)
		}
		if exists {
			return "", domain.ErrAliasConflict
		}
		return customAlias, nil
	}

	for attempt := 0; attempt < s.genConfig.MaxAttempts; attempt++ {
		candidate, err := s.generator.Generate(s.genConfig.CodeLength)
		if err != nil {
			return "", fmt.Errorf("failed to generate short code: %w", err)
		}

		exists, err := s.repo.CodeExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check short code: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}

	// Repeated collisions at these odds signal a near-full keyspace or a
	// generator defect, not bad luck worth retrying.
	return "", domain.ErrCodeGenerationExhausted
}

// Get returns the non-deleted record straight from the repository; the
// administrative read must see current truth, not the cache.
func (s *linkService) Get(ctx context.Context, shortCode string) (*domain.Link, error) {
	return s.repo.GetActive(ctx, shortCode)
}

// SetActive flips the active flag and invalidates the cache entry so the
// next redirect re-derives state from the repository.
func (s *linkService) SetActive(ctx context.Context, shortCode string, isActive bool) (*domain.Link, error) {
	link, err := s.repo.SetActive(ctx, shortCode, isActive)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Remove(ctx, shortCode); err != nil {
		s.logger.Warn("failed to invalidate cache entry",
			zap.String("short_code", shortCode), zap.Error(err))
	}

	return link, nil
}

// Delete soft-deletes the link and invalidates the cache entry.
func (s *linkService) Delete(ctx context.Context, shortCode string) (bool, error) {
	deleted, err := s.repo.SoftDelete(ctx, shortCode, s.clk.Now())
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, nil
	}

	if err := s.cache.Remove(ctx, shortCode); err != nil {
		s.logger.Warn("failed to invalidate cache entry",
			zap.String("short_code", shortCode), zap.Error(err))
	}

	return true, nil
}

// Stats aggregates clicks by UTC calendar day. The aggregation is delegated
// to the repository so the cost is proportional to distinct days, not events.
func (s *linkService) Stats(ctx context.Context, shortCode string, from, to *time.Time) (*domain.Stats, error) {
	link, err := s.repo.GetActive(ctx, shortCode)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	toUTC := now
	if to != nil {
		toUTC = to.UTC()
	}
	fromUTC := now.Add(-defaultStatsWindow)
	if from != nil {
		fromUTC = from.UTC()
	}

	buckets, err := s.repo.DailyClickBuckets(ctx, link.ID, fromUTC, toUTC)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate clicks: %w", err)
	}

	var total int64
	for _, b := range buckets {
		total += b.Clicks
	}

	return &domain.Stats{
		ShortCode:   link.ShortCode,
		TotalClicks: total,
		FromUTC:     fromUTC,
		ToUTC:       toUTC,
		Daily:       buckets,
	}, nil
}

// ResolveRedirect resolves a short code to its original URL, counting the
// click. The cache only narrows the fast path; the repository's atomic
// conditional increment is the single authoritative gate, re-validating
// active/not-deleted/not-expired at the instant of the write.
func (s *linkService) ResolveRedirect(ctx context.Context, shortCode string, access domain.AccessInfo) (string, error) {
	now := s.clk.Now()

	if entry, hit := s.cache.Get(ctx, shortCode); hit {
		// Invalidation is synchronous with the mutation that caused it, so a
		// cached "gone" state is authoritative.
		if entry.IsDeleted || !entry.IsActive {
			return s.outcome("", domain.ErrNotFound)
		}
		if entry.Expired(now) {
			return s.outcome("", domain.ErrExpired)
		}

		applied, err := s.repo.IncrementClickIfEligible(ctx, entry.LinkID, now)
		if err != nil {
			return "", fmt.Errorf("failed to increment click count: %w", err)
		}
		if applied {
			s.recordAccess(ctx, entry.LinkID, now, access)
			return s.outcome(entry.OriginalURL, nil)
		}

		// The cache went stale in a way the atomic check detected; drop the
		// entry and fall through to the repository path.
		if err := s.cache.Remove(ctx, shortCode); err != nil {
			s.logger.Warn("failed to invalidate stale cache entry",
				zap.String("short_code", shortCode), zap.Error(err))
		}
	}

	return s.resolveFromStore(ctx, shortCode, now, access)
}

// resolveFromStore classifies the authoritative record and, when eligible,
// attempts the increment once more before giving up.
func (s *linkService) resolveFromStore(ctx context.Context, shortCode string, now time.Time, access domain.AccessInfo) (string, error) {
	link, err := s.repo.GetAny(ctx, shortCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return s.outcome("", domain.ErrNotFound)
		}
		return "", err
	}

	if link.IsDeleted || !link.IsActive {
		return s.outcome("", domain.ErrNotFound)
	}
	if link.Expired(now) {
		return s.outcome("", domain.ErrExpired)
	}

	applied, err := s.repo.IncrementClickIfEligible(ctx, link.ID, now)
	if err != nil {
		return "", fmt.Errorf("failed to increment click count: %w", err)
	}
	if !applied {
		// A mutation won the race between the read and the increment;
		// re-fetch once to classify, then give up.
		link, err = s.repo.GetAny(ctx, shortCode)
		if err != nil || link.IsDeleted || !link.IsActive {
			return s.outcome("", domain.ErrNotFound)
		}
		if link.Expired(now) {
			return s.outcome("", domain.ErrExpired)
		}
		return s.outcome("", domain.ErrNotFound)
	}

	// Populate on miss, not just on write: required for correctness after
	// restarts or cache eviction.
	if err := s.cache.Set(ctx, shortCode, cacheEntryFor(link), cacheTTL(link.ExpiresAt, now)); err != nil {
		s.logger.Warn("failed to populate cache",
			zap.String("short_code", shortCode), zap.Error(err))
	}

	s.recordAccess(ctx, link.ID, now, access)
	return s.outcome(link.OriginalURL, nil)
}

// recordAccess appends the access event for an already-counted click. The
// append is best-effort: analytics loss is acceptable, redirect correctness
// is not.
func (s *linkService) recordAccess(ctx context.Context, linkID string, at time.Time, access domain.AccessInfo) {
	event := &domain.AccessEvent{
		ID:         uuid.NewString(),
		LinkID:     linkID,
		AccessedAt: at,
		ClientIP:   access.ClientIP,
		UserAgent:  access.UserAgent,
		Referer:    access.Referer,
	}

	if err := s.repo.AppendAccessEvent(ctx, event); err != nil {
		s.logger.Error("failed to append access event",
			zap.String("link_id", linkID), zap.Error(err))
	}
}

// outcome records the redirect metric and passes the result through.
func (s *linkService) outcome(originalURL string, err error) (string, error) {
	switch {
	case err == nil:
		metrics.RedirectsTotal.WithLabelValues("found").Inc()
	case errors.Is(err, domain.ErrExpired):
		metrics.RedirectsTotal.WithLabelValues("expired").Inc()
	default:
		metrics.RedirectsTotal.WithLabelValues("not_found").Inc()
	}
	return originalURL, err
}

// Close closes the service and its dependencies.
func (s *linkService) Close() error {
	if err := s.cache.Close(); err != nil {
		return fmt.Errorf("failed to close cache: %w", err)
	}
	if err := s.repo.Close(); err != nil {
		return fmt.Errorf("failed to close repository: %w", err)
	}
	return nil
}

// validateCreate enforces the create input rules with field-level detail.
func validateCreate(req domain.CreateLinkRequest, now time.Time) error {
	if req.OriginalURL == "" {
		return domain.NewValidationError("original_url", "is required")
	}

	parsed, err := url.ParseRequestURI(req.OriginalURL)
	if err != nil || parsed.Host == "" {
		return domain.NewValidationError("original_url", "must be an absolute URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return domain.NewValidationError("original_url", "only http and https are supported")
	}

	if req.CustomAlias != "" && !aliasPattern.MatchString(req.CustomAlias) {
		return domain.NewValidationError("custom_alias", "must be 4-20 characters of [A-Za-z0-9_-]")
	}

	if req.ExpiresAt != nil && !req.ExpiresAt.After(now) {
		return domain.NewValidationError("expires_at_utc", "must be in the future")
	}

	return nil
}

// cacheEntryFor mirrors the redirect-relevant fields of a link.
func cacheEntryFor(link *domain.Link) *domain.CacheEntry {
	return &domain.CacheEntry{
		LinkID:      link.ID,
		OriginalURL: link.OriginalURL,
		ExpiresAt:   link.ExpiresAt,
		IsActive:    link.IsActive,
		IsDeleted:   link.IsDeleted,
	}
}

// cacheTTL computes the entry TTL: time to expiry floored at one minute, or
// a default for links without an expiry.
func cacheTTL(expiresAt *time.Time, now time.Time) time.Duration {
	if expiresAt == nil {
		return defaultCacheTTL
	}
	ttl := expiresAt.Sub(now)
	if ttl < minCacheTTL {
		return minCacheTTL
	}
	return ttl
}

// Ensure linkService implements LinkService interface
var _ LinkService = (*linkService)(nil)

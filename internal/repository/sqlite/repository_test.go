package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshdurbin/shortlinks/internal/domain"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	repo, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func newLink(shortCode string) *domain.Link {
	return &domain.Link{
		ID:          uuid.NewString(),
		ShortCode:   shortCode,
		OriginalURL: "https://example.com/page",
		CreatedAt:   time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		IsActive:    true,
	}
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	expiresAt := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	link := newLink("abc123")
	link.ExpiresAt = &expiresAt
	require.NoError(t, repo.CreateLink(ctx, link))

	got, err := repo.GetActive(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, link.ID, got.ID)
	assert.Equal(t, "abc123", got.ShortCode)
	assert.Equal(t, "https://example.com/page", got.OriginalURL)
	assert.True(t, link.CreatedAt.Equal(got.CreatedAt))
	require.NotNil(t, got.ExpiresAt)
	assert.True(t, expiresAt.Equal(*got.ExpiresAt))
	assert.True(t, got.IsActive)
	assert.Nil(t, got.LastAccessedAt)
}

func TestCreateDuplicateCode(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateLink(ctx, newLink("abc123")))
	err := repo.CreateLink(ctx, newLink("abc123"))
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)
}

func TestCodeExistsIncludesDeleted(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateLink(ctx, newLink("abc123")))

	deleted, err := repo.SoftDelete(ctx, "abc123", time.Now())
	require.NoError(t, err)
	require.True(t, deleted)

	exists, err := repo.CodeExists(ctx, "abc123")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGetActiveHidesDeleted(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateLink(ctx, newLink("abc123")))

	deletedAt := time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)
	deleted, err := repo.SoftDelete(ctx, "abc123", deletedAt)
	require.NoError(t, err)
	require.True(t, deleted)

	_, err = repo.GetActive(ctx, "abc123")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := repo.GetAny(ctx, "abc123")
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
	require.NotNil(t, got.DeletedAt)
	assert.True(t, deletedAt.Equal(*got.DeletedAt))
}

func TestSetActive(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateLink(ctx, newLink("abc123")))

	got, err := repo.SetActive(ctx, "abc123", false)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = repo.SetActive(ctx, "missing", false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSoftDeleteIdempotence(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateLink(ctx, newLink("abc123")))

	deleted, err := repo.SoftDelete(ctx, "abc123", time.Now())
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.SoftDelete(ctx, "abc123", time.Now())
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestIncrementClickEligibility(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	link := newLink("abc123")
	require.NoError(t, repo.CreateLink(ctx, link))

	applied, err := repo.IncrementClickIfEligible(ctx, link.ID, now)
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := repo.GetActive(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ClickCount)
	require.NotNil(t, got.LastAccessedAt)
	assert.True(t, now.Equal(*got.LastAccessedAt))

	// Deactivation makes the same statement a no-op.
	_, err = repo.SetActive(ctx, "abc123", false)
	require.NoError(t, err)

	applied, err = repo.IncrementClickIfEligible(ctx, link.ID, now)
	require.NoError(t, err)
	assert.False(t, applied)

	got, err = repo.GetAny(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ClickCount)
}

func TestIncrementClickExpiredLink(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	expiresAt := now.Add(time.Hour)
	link := newLink("abc123")
	link.ExpiresAt = &expiresAt
	require.NoError(t, repo.CreateLink(ctx, link))

	applied, err := repo.IncrementClickIfEligible(ctx, link.ID, now)
	require.NoError(t, err)
	assert.True(t, applied)

	// At the expiry instant the increment must not apply.
	applied, err = repo.IncrementClickIfEligible(ctx, link.ID, expiresAt)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestAccessEventsAndDailyBuckets(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	link := newLink("abc123")
	require.NoError(t, repo.CreateLink(ctx, link))
	other := newLink("other1")
	require.NoError(t, repo.CreateLink(ctx, other))

	appendEvent := func(linkID string, at time.Time) {
		require.NoError(t, repo.AppendAccessEvent(ctx, &domain.AccessEvent{
			ID:         uuid.NewString(),
			LinkID:     linkID,
			AccessedAt: at,
			ClientIP:   "10.0.0.1",
			UserAgent:  "test-agent",
		}))
	}

	day1 := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
	day3 := time.Date(2025, 6, 12, 23, 59, 0, 0, time.UTC)

	appendEvent(link.ID, day1)
	appendEvent(link.ID, day1.Add(4*time.Hour))
	appendEvent(link.ID, day3)
	appendEvent(other.ID, day1)

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	buckets, err := repo.DailyClickBuckets(ctx, link.ID, from, to)
	require.NoError(t, err)

	require.Len(t, buckets, 2)
	assert.Equal(t, domain.DailyClicks{DateUTC: "2025-06-10", Clicks: 2}, buckets[0])
	assert.Equal(t, domain.DailyClicks{DateUTC: "2025-06-12", Clicks: 1}, buckets[1])

	// A window past the events is empty, not an error.
	buckets, err = repo.DailyClickBuckets(ctx, link.ID, to, to.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, buckets)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	repo, err := New(path)
	require.NoError(t, err)
	require.NoError(t, repo.CreateLink(context.Background(), newLink("abc123")))
	require.NoError(t, repo.Close())

	// Reopening the same file must not re-apply migrations or lose data.
	repo, err = New(path)
	require.NoError(t, err)
	defer repo.Close()

	got, err := repo.GetActive(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", got.ShortCode)
}

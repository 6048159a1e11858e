package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joshdurbin/shortlinks/internal/domain"
	"github.com/joshdurbin/shortlinks/internal/repository"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// Repository implements repository.LinkRepository using PostgreSQL via pgx.
type Repository struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and applies pending migrations.
func New(ctx context.Context, dsn string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := &Repository{pool: pool}

	if err := repo.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

const linkColumns = `id, short_code, original_url, created_at, expires_at,
	is_active, is_deleted, deleted_at, click_count, last_accessed_at`

// CodeExists checks whether a short code exists, including soft-deleted records.
func (r *Repository) CodeExists(ctx context.Context, shortCode string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM short_urls WHERE short_code = $1)", shortCode).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check code existence: %w", err)
	}
	return exists, nil
}

// CreateLink persists a new link.
func (r *Repository) CreateLink(ctx context.Context, link *domain.Link) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO short_urls (id, short_code, original_url, created_at, expires_at,
			is_active, is_deleted, deleted_at, click_count, last_accessed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		link.ID,
		link.ShortCode,
		link.OriginalURL,
		link.CreatedAt.UTC(),
		utcOrNil(link.ExpiresAt),
		link.IsActive,
		link.IsDeleted,
		utcOrNil(link.DeletedAt),
		link.ClickCount,
		utcOrNil(link.LastAccessedAt),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicateCode
		}
		return fmt.Errorf("failed to create link: %w", err)
	}
	return nil
}

// GetActive retrieves a non-deleted link by short code.
func (r *Repository) GetActive(ctx context.Context, shortCode string) (*domain.Link, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+linkColumns+" FROM short_urls WHERE short_code = $1 AND is_deleted = FALSE",
		shortCode)
	return scanLink(row)
}

// GetAny retrieves a link by short code including soft-deleted records.
func (r *Repository) GetAny(ctx context.Context, shortCode string) (*domain.Link, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+linkColumns+" FROM short_urls WHERE short_code = $1",
		shortCode)
	return scanLink(row)
}

// SetActive flips the active flag on a non-deleted link.
func (r *Repository) SetActive(ctx context.Context, shortCode string, isActive bool) (*domain.Link, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE short_urls SET is_active = $1
		WHERE short_code = $2 AND is_deleted = FALSE
		RETURNING `+linkColumns,
		isActive, shortCode)
	return scanLink(row)
}

// SoftDelete marks a non-deleted link as deleted.
func (r *Repository) SoftDelete(ctx context.Context, shortCode string, deletedAt time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE short_urls SET is_deleted = TRUE, deleted_at = $1
		WHERE short_code = $2 AND is_deleted = FALSE`,
		deletedAt.UTC(), shortCode)
	if err != nil {
		return false, fmt.Errorf("failed to soft-delete link: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// IncrementClickIfEligible runs a single conditional UPDATE so the
// eligibility check and the counter write are one atomic statement.
func (r *Repository) IncrementClickIfEligible(ctx context.Context, linkID string, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE short_urls
		SET click_count = click_count + 1, last_accessed_at = $1
		WHERE id = $2 AND is_deleted = FALSE AND is_active = TRUE
			AND (expires_at IS NULL OR expires_at > $1)`,
		at.UTC(), linkID)
	if err != nil {
		return false, fmt.Errorf("failed to increment click count: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// AppendAccessEvent records one successful redirect.
func (r *Repository) AppendAccessEvent(ctx context.Context, event *domain.AccessEvent) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO access_logs (id, short_url_id, accessed_at, ip_address, user_agent, referer)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		event.ID,
		event.LinkID,
		event.AccessedAt.UTC(),
		event.ClientIP,
		nilIfEmpty(event.UserAgent),
		nilIfEmpty(event.Referer),
	)
	if err != nil {
		return fmt.Errorf("failed to append access event: %w", err)
	}
	return nil
}

// DailyClickBuckets aggregates access events by UTC calendar date, ascending.
func (r *Repository) DailyClickBuckets(ctx context.Context, linkID string, fromUTC, toUTC time.Time) ([]domain.DailyClicks, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT to_char(accessed_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*)
		FROM access_logs
		WHERE short_url_id = $1 AND accessed_at >= $2 AND accessed_at <= $3
		GROUP BY day
		ORDER BY day ASC`,
		linkID, fromUTC.UTC(), toUTC.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query click buckets: %w", err)
	}
	defer rows.Close()

	var buckets []domain.DailyClicks
	for rows.Next() {
		var b domain.DailyClicks
		if err := rows.Scan(&b.DateUTC, &b.Clicks); err != nil {
			return nil, fmt.Errorf("failed to scan click bucket: %w", err)
		}
		buckets = append(buckets, b)
	}

	return buckets, rows.Err()
}

// Close closes the connection pool.
func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func scanLink(row pgx.Row) (*domain.Link, error) {
	var link domain.Link
	var expiresAt, deletedAt, lastAccessedAt *time.Time
	err := row.Scan(
		&link.ID,
		&link.ShortCode,
		&link.OriginalURL,
		&link.CreatedAt,
		&expiresAt,
		&link.IsActive,
		&link.IsDeleted,
		&deletedAt,
		&link.ClickCount,
		&lastAccessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan link: %w", err)
	}

	link.CreatedAt = link.CreatedAt.UTC()
	link.ExpiresAt = utcOrNil(expiresAt)
	link.DeletedAt = utcOrNil(deletedAt)
	link.LastAccessedAt = utcOrNil(lastAccessedAt)
	return &link, nil
}

func utcOrNil(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Ensure Repository implements the interface
var _ repository.LinkRepository = (*Repository)(nil)

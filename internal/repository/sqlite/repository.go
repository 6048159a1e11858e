package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/joshdurbin/shortlinks/internal/domain"
	"github.com/joshdurbin/shortlinks/internal/repository"
)

// Repository implements repository.LinkRepository using SQLite.
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository and applies pending migrations.
func New(databasePath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", databasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys and WAL mode for better performance
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	repo := &Repository{db: db}

	if err := repo.runMigrations(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

const linkColumns = `id, short_code, original_url, created_at, expires_at,
	is_active, is_deleted, deleted_at, click_count, last_accessed_at`

// CodeExists checks whether a short code exists, including soft-deleted
// records. The comparison is byte-exact under the default BINARY collation.
func (r *Repository) CodeExists(ctx context.Context, shortCode string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM short_urls WHERE short_code = ?", shortCode).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check code existence: %w", err)
	}
	return count > 0, nil
}

// CreateLink persists a new link.
func (r *Repository) CreateLink(ctx context.Context, link *domain.Link) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO short_urls (id, short_code, original_url, created_at, expires_at,
			is_active, is_deleted, deleted_at, click_count, last_accessed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		link.ID,
		link.ShortCode,
		link.OriginalURL,
		link.CreatedAt.UTC(),
		nullTime(link.ExpiresAt),
		link.IsActive,
		link.IsDeleted,
		nullTime(link.DeletedAt),
		link.ClickCount,
		nullTime(link.LastAccessedAt),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return domain.ErrDuplicateCode
		}
		return fmt.Errorf("failed to create link: %w", err)
	}
	return nil
}

// GetActive retrieves a non-deleted link by short code.
func (r *Repository) GetActive(ctx context.Context, shortCode string) (*domain.Link, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+linkColumns+" FROM short_urls WHERE short_code = ? AND is_deleted = 0",
		shortCode)
	return scanLink(row)
}

// GetAny retrieves a link by short code including soft-deleted records.
func (r *Repository) GetAny(ctx context.Context, shortCode string) (*domain.Link, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+linkColumns+" FROM short_urls WHERE short_code = ?",
		shortCode)
	return scanLink(row)
}

// SetActive flips the active flag on a non-deleted link.
func (r *Repository) SetActive(ctx context.Context, shortCode string, isActive bool) (*domain.Link, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE short_urls SET is_active = ? WHERE short_code = ? AND is_deleted = 0",
		isActive, shortCode)
	if err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return nil, domain.ErrNotFound
	}

	return r.GetActive(ctx, shortCode)
}

// SoftDelete marks a non-deleted link as deleted.
func (r *Repository) SoftDelete(ctx context.Context, shortCode string, deletedAt time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE short_urls SET is_deleted = 1, deleted_at = ? WHERE short_code = ? AND is_deleted = 0",
		deletedAt.UTC(), shortCode)
	if err != nil {
		return false, fmt.Errorf("failed to soft-delete link: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// IncrementClickIfEligible runs a single conditional UPDATE so the
// eligibility check and the counter write are one atomic statement.
func (r *Repository) IncrementClickIfEligible(ctx context.Context, linkID string, at time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE short_urls
		SET click_count = click_count + 1, last_accessed_at = ?
		WHERE id = ? AND is_deleted = 0 AND is_active = 1
			AND (expires_at IS NULL OR expires_at > ?)`,
		at.UTC(), linkID, at.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to increment click count: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// AppendAccessEvent records one successful redirect.
func (r *Repository) AppendAccessEvent(ctx context.Context, event *domain.AccessEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO access_logs (id, short_url_id, accessed_at, ip_address, user_agent, referer)
		VALUES (?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.LinkID,
		event.AccessedAt.UTC(),
		event.ClientIP,
		nullString(event.UserAgent),
		nullString(event.Referer),
	)
	if err != nil {
		return fmt.Errorf("failed to append access event: %w", err)
	}
	return nil
}

// DailyClickBuckets aggregates access events by UTC calendar date, ascending.
// Timestamps are stored in UTC, so strftime buckets by the UTC date directly.
func (r *Repository) DailyClickBuckets(ctx context.Context, linkID string, fromUTC, toUTC time.Time) ([]domain.DailyClicks, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT strftime('%Y-%m-%d', accessed_at) AS day, COUNT(*)
		FROM access_logs
		WHERE short_url_id = ? AND accessed_at >= ? AND accessed_at <= ?
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

// Close closes the repository connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLink(row rowScanner) (*domain.Link, error) {
	var link domain.Link
	var expiresAt, deletedAt, lastAccessedAt sql.NullTime
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
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan link: %w", err)
	}

	link.CreatedAt = link.CreatedAt.UTC()
	if expiresAt.Valid {
		t := expiresAt.Time.UTC()
		link.ExpiresAt = &t
	}
	if deletedAt.Valid {
		t := deletedAt.Time.UTC()
		link.DeletedAt = &t
	}
	if lastAccessedAt.Valid {
		t := lastAccessedAt.Time.UTC()
		link.LastAccessedAt = &t
	}
	return &link, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// Ensure Repository implements the interface
var _ repository.LinkRepository = (*Repository)(nil)

package domain

import (
	"time"
)

// Link represents a shortened URL with its metadata. The repository owns
// mutation; ClickCount only moves through the atomic increment operation.
type Link struct {
	ID             string     `json:"id"`
	ShortCode      string     `json:"short_code"`
	OriginalURL    string     `json:"original_url"`
	CreatedAt      time.Time  `json:"created_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	IsActive       bool       `json:"is_active"`
	IsDeleted      bool       `json:"-"`
	DeletedAt      *time.Time `json:"-"`
	ClickCount     int64      `json:"click_count"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
}

// Expired reports whether the link's expiry is set and at or before now.
func (l *Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}

// AccessEvent is an append-only record of a successful redirect.
type AccessEvent struct {
	ID         string    `json:"id"`
	LinkID     string    `json:"link_id"`
	AccessedAt time.Time `json:"accessed_at"`
	ClientIP   string    `json:"client_ip"`
	UserAgent  string    `json:"user_agent,omitempty"`
	Referer    string    `json:"referer,omitempty"`
}

// CacheEntry mirrors the redirect-relevant fields of a Link. It is never
// the authority for write decisions.
type CacheEntry struct {
	LinkID      string     `json:"link_id"`
	OriginalURL string     `json:"original_url"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	IsActive    bool       `json:"is_active"`
	IsDeleted   bool       `json:"is_deleted"`
}

// Expired reports whether the cached expiry is set and at or before now.
func (e *CacheEntry) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && !e.ExpiresAt.After(now)
}

// AccessInfo carries the client attributes recorded with a redirect.
type AccessInfo struct {
	ClientIP  string
	UserAgent string
	Referer   string
}

// DailyClicks is one calendar-day bucket of the click aggregation.
type DailyClicks struct {
	DateUTC string `json:"date_utc"`
	Clicks  int64  `json:"clicks"`
}

// Stats is the aggregated click report for a link over a window. Days with
// zero clicks are omitted from Daily.
type Stats struct {
	ShortCode   string        `json:"short_code"`
	TotalClicks int64         `json:"total_clicks"`
	FromUTC     time.Time     `json:"from_utc"`
	ToUTC       time.Time     `json:"to_utc"`
	Daily       []DailyClicks `json:"daily_clicks"`
}

// CreateLinkRequest represents the request to create a short URL.
type CreateLinkRequest struct {
	OriginalURL string     `json:"original_url"`
	CustomAlias string     `json:"custom_alias,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at_utc,omitempty"`
	ClientIP    string     `json:"-"`
}

// CreateLinkResponse represents the response when creating a short URL.
type CreateLinkResponse struct {
	ID          string     `json:"id"`
	ShortCode   string     `json:"short_code"`
	ShortURL    string     `json:"short_url"`
	OriginalURL string     `json:"original_url"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// UpdateStatusRequest represents the request to activate or deactivate a link.
type UpdateStatusRequest struct {
	IsActive bool `json:"is_active"`
}

// ErrorResponse is the JSON error envelope returned by the HTTP layer.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

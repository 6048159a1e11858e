package client

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Commands provides command-line operations for the client
type Commands struct {
	client *Client
}

// NewCommands creates a new Commands instance
func NewCommands(client *Client) *Commands {
	return &Commands{
		client: client,
	}
}

// Create creates a short URL and displays the result
func (c *Commands) Create(ctx context.Context, originalURL, customAlias string, expiresAt *time.Time) error {
	result, err := c.client.CreateLink(ctx, originalURL, customAlias, expiresAt)
	if err != nil {
		return err
	}

	fmt.Printf("Short URL created:\n")
	fmt.Printf("Short Code: %s\n", result.ShortCode)
	fmt.Printf("Short URL: %s\n", result.ShortURL)
	fmt.Printf("Original URL: %s\n", result.OriginalURL)
	fmt.Printf("Created At: %s\n", result.CreatedAt.Format(time.RFC3339))
	if result.ExpiresAt != nil {
		fmt.Printf("Expires At: %s\n", result.ExpiresAt.Format(time.RFC3339))
	}

	return nil
}

// Get retrieves and displays information about a short URL
func (c *Commands) Get(ctx context.Context, shortCode string) error {
	link, err := c.client.GetLink(ctx, shortCode)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			fmt.Printf("Short code '%s' not found\n", shortCode)
			return nil
		}
		return err
	}

	fmt.Printf("URL Information:\n")
	fmt.Printf("Short Code: %s\n", link.ShortCode)
	fmt.Printf("Original URL: %s\n", link.OriginalURL)
	fmt.Printf("Created At: %s\n", link.CreatedAt.Format(time.RFC3339))
	fmt.Printf("Active: %t\n", link.IsActive)
	if link.ExpiresAt != nil {
		fmt.Printf("Expires At: %s\n", link.ExpiresAt.Format(time.RFC3339))
	}
	if link.LastAccessedAt != nil {
		fmt.Printf("Last Accessed At: %s\n", link.LastAccessedAt.Format(time.RFC3339))
	} else {
		fmt.Printf("Last Accessed At: Never\n")
	}
	fmt.Printf("Click Count: %d\n", link.ClickCount)

	return nil
}

// SetStatus activates or deactivates a short URL
func (c *Commands) SetStatus(ctx context.Context, shortCode string, isActive bool) error {
	link, err := c.client.SetStatus(ctx, shortCode, isActive)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			fmt.Printf("Short code '%s' not found\n", shortCode)
			return nil
		}
		return err
	}

	state := "deactivated"
	if link.IsActive {
		state = "activated"
	}
	fmt.Printf("Short URL '%s' %s\n", shortCode, state)
	return nil
}

// Delete removes a short URL
func (c *Commands) Delete(ctx context.Context, shortCode string) error {
	err := c.client.DeleteLink(ctx, shortCode)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			fmt.Printf("Short code '%s' not found\n", shortCode)
			return nil
		}
		return err
	}

	fmt.Printf("Short URL '%s' deleted successfully\n", shortCode)
	return nil
}

// Stats retrieves and displays click statistics for a short URL
func (c *Commands) Stats(ctx context.Context, shortCode string, from, to *time.Time) error {
	stats, err := c.client.GetStats(ctx, shortCode, from, to)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			fmt.Printf("Short code '%s' not found\n", shortCode)
			return nil
		}
		return err
	}

	fmt.Printf("Statistics for '%s':\n", stats.ShortCode)
	fmt.Printf("Window: %s .. %s\n", stats.FromUTC.Format(time.RFC3339), stats.ToUTC.Format(time.RFC3339))
	fmt.Printf("Total Clicks: %d\n", stats.TotalClicks)
	if len(stats.Daily) == 0 {
		fmt.Printf("No clicks in window\n")
		return nil
	}
	for _, day := range stats.Daily {
		fmt.Printf("%s  %d\n", day.DateUTC, day.Clicks)
	}
	return nil
}

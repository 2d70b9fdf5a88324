// Package types contains common types used across the application
package types

import "time"

// Summary is the read shape for archived anonymized results. Listings
// are ordered by expiry, soonest first.
type Summary struct {
	ID         string    `json:"id"`
	Category   string    `json:"category"`
	Level      string    `json:"level"`
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
	SizeBytes  int       `json:"sizeBytes"`
	PIIRemoved int       `json:"piiRemoved"`
}

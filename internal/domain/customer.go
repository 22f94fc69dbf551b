package domain

import "time"

// Customer is the long-lived buyer record. UserID is nil for guests; repeat
// guest checkouts with the same email reuse the same row (backed by a partial
// unique index on lower(email) WHERE user_id IS NULL). Customers are never
// deleted by this service.
type Customer struct {
	ID               string    `json:"id"`
	UserID           *string   `json:"user_id,omitempty"`
	Email            string    `json:"email"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	MarketingConsent bool      `json:"marketing_consent"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IsGuest reports whether the customer has no linked login.
func (c *Customer) IsGuest() bool {
	return c.UserID == nil
}

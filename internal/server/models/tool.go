package models

import "time"

// Tool categories. An empty Category is rendered as "Uncategorized" by clients.
const (
	CategoryPerformance = "Performance"
	CategoryBattery     = "Battery"
	CategoryDebugging   = "Debugging"
	CategoryOther       = "Other"
)

// Tool is a single user-owned record. ID and OwnerID are immutable after
// creation; CreatedAt is assigned by the server and never mutated.
type Tool struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Title       string    `json:"title"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	Enabled     bool      `json:"enabled"`
	Progress    *int      `json:"progress,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ValidCategory reports whether c is one of the known categories or empty.
func ValidCategory(c string) bool {
	switch c {
	case "", CategoryPerformance, CategoryBattery, CategoryDebugging, CategoryOther:
		return true
	}
	return false
}

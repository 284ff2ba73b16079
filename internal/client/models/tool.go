// Package models holds the client-side data types exchanged with the server.
package models

import "time"

// Tool mirrors the server's tool record. Progress is a pointer so "no
// progress tracked" is distinguishable from 0 percent.
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

// DisplayCategory returns the category label for rendering; records without
// a category fall under "Uncategorized".
func (t *Tool) DisplayCategory() string {
	if t.Category == "" {
		return "Uncategorized"
	}
	return t.Category
}

package tools

import (
	"context"

	"github.com/dmitrijs2005/modtoolkit/internal/server/models"
)

// Repository is the storage contract for the per-owner tools collection.
// Every method that takes an ownerID must scope its effect to that owner:
// a record belonging to a different owner behaves as if it did not exist.
type Repository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Tool, error)
	Get(ctx context.Context, ownerID, id string) (*models.Tool, error)
	Create(ctx context.Context, tool *models.Tool) (*models.Tool, error)
	Update(ctx context.Context, tool *models.Tool) error
	SetEnabled(ctx context.Context, ownerID, id string, enabled bool) error
	Delete(ctx context.Context, ownerID, id string) error
}

package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/modtoolkit/internal/common"
	"github.com/dmitrijs2005/modtoolkit/internal/server/models"
	"github.com/dmitrijs2005/modtoolkit/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/modtoolkit/internal/server/watch"
)

// ToolService implements the per-owner tools collection: list, get, create,
// update, enable/disable, and delete. Every successful mutation notifies the
// watch layer so subscribed clients receive a fresh snapshot.
type ToolService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	notifier    watch.Notifier
}

func NewToolService(db *sql.DB, m repomanager.RepositoryManager, n watch.Notifier) *ToolService {
	return &ToolService{db: db, repomanager: m, notifier: n}
}

func validateTool(title, category string, progress *int) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", common.ErrorValidation)
	}
	if !models.ValidCategory(category) {
		return fmt.Errorf("%w: unknown category %q", common.ErrorValidation, category)
	}
	if progress != nil && (*progress < 0 || *progress > 100) {
		return fmt.Errorf("%w: progress must be between 0 and 100", common.ErrorValidation)
	}
	return nil
}

// List returns the owner's tools ordered by creation time. An owner with no
// records gets an empty slice, not an error.
func (s *ToolService) List(ctx context.Context, ownerID string) ([]*models.Tool, error) {
	return s.repomanager.Tools(s.db).ListByOwner(ctx, ownerID)
}

func (s *ToolService) Get(ctx context.Context, ownerID, id string) (*models.Tool, error) {
	return s.repomanager.Tools(s.db).Get(ctx, ownerID, id)
}

// Create validates and stores a new tool for ownerID. The server assigns the
// ID and creation timestamp; the Enabled flag always starts false.
func (s *ToolService) Create(ctx context.Context, ownerID string, tool *models.Tool) (*models.Tool, error) {
	if err := validateTool(tool.Title, tool.Category, tool.Progress); err != nil {
		return nil, err
	}
	t := &models.Tool{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(tool.Title),
		Category:    tool.Category,
		Description: tool.Description,
		Enabled:     false,
		Progress:    tool.Progress,
	}
	created, err := s.repomanager.Tools(s.db).Create(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("error creating tool: %w", err)
	}
	s.notifyChanged(ctx, ownerID)
	return created, nil
}

// Update replaces the mutable fields (title, category, description, progress)
// of an existing tool. The enabled flag is changed only through SetEnabled.
func (s *ToolService) Update(ctx context.Context, ownerID, id string, tool *models.Tool) error {
	if err := validateTool(tool.Title, tool.Category, tool.Progress); err != nil {
		return err
	}
	t := &models.Tool{
		ID:          id,
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(tool.Title),
		Category:    tool.Category,
		Description: tool.Description,
		Progress:    tool.Progress,
	}
	if err := s.repomanager.Tools(s.db).Update(ctx, t); err != nil {
		return err
	}
	s.notifyChanged(ctx, ownerID)
	return nil
}

func (s *ToolService) SetEnabled(ctx context.Context, ownerID, id string, enabled bool) error {
	if err := s.repomanager.Tools(s.db).SetEnabled(ctx, ownerID, id, enabled); err != nil {
		return err
	}
	s.notifyChanged(ctx, ownerID)
	return nil
}

func (s *ToolService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repomanager.Tools(s.db).Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.notifyChanged(ctx, ownerID)
	return nil
}

func (s *ToolService) notifyChanged(ctx context.Context, ownerID string) {
	if s.notifier == nil {
		return
	}
	s.notifier.ToolsChanged(ctx, ownerID)
}

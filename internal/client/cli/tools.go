package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/dmitrijs2005/modtoolkit/internal/client/api"
	"github.com/dmitrijs2005/modtoolkit/internal/client/models"
)

// toolID returns the first positional argument, or prompts for an id when
// the command was typed without one.
func (a *App) toolID(args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return getSimpleText(a.reader, prompt, os.Stdout)
}

func formatTool(t *models.Tool) string {
	state := "off"
	if t.Enabled {
		state = "on"
	}
	s := fmt.Sprintf("[%s] %-3s %s (%s)", t.ID, state, t.Title, t.DisplayCategory())
	if t.Progress != nil {
		s += fmt.Sprintf(" %d%%", *t.Progress)
	}
	return s
}

// ListTools prints the tool collection. While the live view is attached and
// has received a push it is the source of truth; otherwise the list is
// fetched directly.
func (a *App) ListTools(ctx context.Context) error {
	var tools []*models.Tool

	if a.view.Populated() {
		tools = a.view.Snapshot()
	} else {
		var err error
		tools, err = a.api.ListTools(ctx)
		if err != nil {
			log.Printf("Error listing tools: %s", err.Error())
			return err
		}
	}

	if len(tools) == 0 {
		printlnFn("No tools yet")
		return nil
	}
	for _, t := range tools {
		printlnFn(formatTool(t))
	}
	return nil
}

func (a *App) promptToolFields(current *models.Tool) (*toolInput, error) {
	in := &toolInput{}
	if current != nil {
		in.title = current.Title
		in.category = current.Category
		in.description = current.Description
		in.progress = current.Progress
	}

	title, err := getSimpleText(a.reader, "Enter title", os.Stdout)
	if err != nil {
		return nil, err
	}
	if title != "" {
		in.title = title
	}

	category, err := getSimpleText(a.reader, "Enter category (Performance, Battery, Debugging, Other; empty for none)", os.Stdout)
	if err != nil {
		return nil, err
	}
	if category != "" {
		in.category = category
	}

	description, err := getSimpleText(a.reader, "Enter description", os.Stdout)
	if err != nil {
		return nil, err
	}
	if description != "" {
		in.description = description
	}

	progress, err := getSimpleText(a.reader, "Enter progress percent (empty to skip)", os.Stdout)
	if err != nil {
		return nil, err
	}
	if progress != "" {
		p, err := strconv.Atoi(progress)
		if err != nil {
			return nil, fmt.Errorf("progress must be a number: %w", err)
		}
		in.progress = &p
	}

	return in, nil
}

type toolInput struct {
	title       string
	category    string
	description string
	progress    *int
}

// AddTool prompts for the tool fields and creates the record. The live view
// picks the new tool up from the next push.
func (a *App) AddTool(ctx context.Context) error {
	in, err := a.promptToolFields(nil)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	created, err := a.api.CreateTool(ctx, in.request())
	if err != nil {
		log.Printf("Error creating tool: %s", err.Error())
		return err
	}

	printlnFn("Created", created.ID)
	return nil
}

// EditTool prompts for new field values, keeping the current value when the
// user enters an empty line.
func (a *App) EditTool(ctx context.Context, args []string) error {
	id, err := a.toolID(args, "Enter tool id to edit")
	if err != nil {
		return err
	}

	current, ok := a.view.Get(id)
	if !ok {
		current, err = a.api.GetTool(ctx, id)
		if err != nil {
			log.Printf("Error: %s", err.Error())
			return err
		}
	}

	in, err := a.promptToolFields(current)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	if err := a.api.UpdateTool(ctx, id, in.request()); err != nil {
		log.Printf("Error updating tool: %s", err.Error())
		return err
	}
	printlnFn("Updated")
	return nil
}

// ToggleTool flips a tool's enabled switch through the live view: the
// change shows immediately and the server confirms in the background.
func (a *App) ToggleTool(ctx context.Context, args []string) error {
	id, err := a.toolID(args, "Enter tool id to toggle")
	if err != nil {
		return err
	}

	if !a.view.ToggleEnabled(ctx, id) {
		log.Printf("Unknown tool id: %s", id)
		return nil
	}

	if t, ok := a.view.Get(id); ok {
		printlnFn(formatTool(t))
	}
	return nil
}

// DeleteTool asks for confirmation and then deletes through the live view.
// The record stays visible until the server confirms with a push.
func (a *App) DeleteTool(ctx context.Context, args []string) error {
	id, err := a.toolID(args, "Enter tool id to delete")
	if err != nil {
		return err
	}

	requested := a.view.Delete(ctx, id, func() bool {
		return getConfirmation(a.reader, "Delete "+id+"?", os.Stdout)
	})
	if !requested {
		printlnFn("Not deleted")
	}
	return nil
}

// ShowTool prints a single tool's full record.
func (a *App) ShowTool(ctx context.Context, args []string) error {
	id, err := a.toolID(args, "Enter tool id to show")
	if err != nil {
		return err
	}

	t, ok := a.view.Get(id)
	if !ok {
		t, err = a.api.GetTool(ctx, id)
		if err != nil {
			log.Printf("Error: %s", err.Error())
			return err
		}
	}

	printlnFn(formatTool(t))
	if t.Description != "" {
		printlnFn(t.Description)
	}
	printlnFn("Created:", t.CreatedAt.Format("2006-01-02 15:04"))
	return nil
}

func (in *toolInput) request() *api.ToolRequest {
	return &api.ToolRequest{
		Title:       in.title,
		Category:    in.category,
		Description: in.description,
		Progress:    in.progress,
	}
}

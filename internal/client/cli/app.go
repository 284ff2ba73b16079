package cli

import (
	"bufio"
	"context"
	"database/sql"
	"os"

	"github.com/dmitrijs2005/modtoolkit/internal/client/api"
	"github.com/dmitrijs2005/modtoolkit/internal/client/config"
	"github.com/dmitrijs2005/modtoolkit/internal/client/device"
	"github.com/dmitrijs2005/modtoolkit/internal/client/liveview"
	"github.com/dmitrijs2005/modtoolkit/internal/client/profile"
	"github.com/dmitrijs2005/modtoolkit/internal/logging"
)

type App struct {
	config  *config.Config
	api     *api.Client
	view    *liveview.View
	profile *profile.Store
	avatars *profile.AvatarManager
	db      *sql.DB

	facts       *device.FactsReader
	refreshRate *device.RefreshRateMeasurer
	rootChecker *device.RootChecker
	storage     *device.StorageAnalyzer

	logger    logging.Logger
	userEmail string
	reader    *bufio.Reader
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	ctx := context.Background()

	store, db, err := profile.Open(ctx, c.ProfileDBPath)
	if err != nil {
		return nil, err
	}

	apiClient := api.New(c.ServerURL, c.RequestTimeout)
	view := liveview.New(apiClient, liveview.Options{RollbackOnFailure: c.RollbackOnFailure}, logger)

	return &App{
		config:      c,
		api:         apiClient,
		view:        view,
		profile:     store,
		avatars:     profile.NewAvatarManager(apiClient, store),
		db:          db,
		facts:       device.NewFactsReader(),
		refreshRate: device.NewRefreshRateMeasurer(),
		rootChecker: device.NewRootChecker(c.DemoMode),
		storage:     device.NewStorageAnalyzer("/"),
		logger:      logger,
		reader:      bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.api.Authenticated()
}

// Run starts the REPL on stdin and blocks until the user exits. The live
// view and the profile database are released on the way out.
func (a *App) Run(ctx context.Context) {
	defer a.db.Close()
	defer a.view.Detach()

	printlnFn("Mod Toolkit CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

func (a *App) status() string {
	if a.userEmail != "" {
		return "(" + a.userEmail + ")"
	}
	return ""
}

// Package wiring assembles the file-backed stores and listing services so the
// online bot and the offline inspection commands share one composition path.
package wiring

import (
	"fmt"
	"log/slog"

	"github.com/doorman-bot/doorman/pkg/application"
	"github.com/doorman-bot/doorman/pkg/storage"
)

// Workspace bundles the persistence layer and the read-side services.
type Workspace struct {
	Repo      *storage.FilesystemRepository
	Grants    *storage.GrantStore
	Allowlist *storage.AllowlistStore
	Roster    *application.RosterService
}

// NewWorkspace opens (creating if needed) the data directory and loads both
// stores from it.
func NewWorkspace(dataDir string, logger *slog.Logger) (*Workspace, error) {
	repo := storage.NewFilesystemRepository(dataDir)
	if err := repo.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize data dir %s: %w", dataDir, err)
	}

	grants := storage.NewGrantStore(repo, logger)
	allowlist := storage.NewAllowlistStore(repo, logger)

	return &Workspace{
		Repo:      repo,
		Grants:    grants,
		Allowlist: allowlist,
		Roster:    application.NewRosterService(grants, allowlist),
	}, nil
}

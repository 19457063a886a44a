package wiring

import (
	"github.com/felixgeelhaar/autorefine/pkg/application"
	"github.com/felixgeelhaar/autorefine/pkg/storage"
)

// Workspace bundles the run metadata dependencies of a workspace root.
type Workspace struct {
	Root  string
	Repo  *storage.FilesystemRepository
	Audit *application.AuditService
	Usage *application.UsageService
}

func NewWorkspace(root string) *Workspace {
	repo := storage.NewFilesystemRepository(root)
	return &Workspace{
		Root:  root,
		Repo:  repo,
		Audit: application.NewAuditService(repo),
		Usage: application.NewUsageService(repo),
	}
}

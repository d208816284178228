package app

import (
	"diagnote/internal/domain"
	"diagnote/internal/service"
)

// ============================================================
// Export targets
// ============================================================

func (a *App) ListExportTargets() ([]domain.ExportTarget, error) {
	return a.export.ListTargets()
}

func (a *App) CreateExportTarget(in service.ExportTargetInput) (*domain.ExportTarget, error) {
	return a.export.CreateTarget(a.ctx, in)
}

func (a *App) UpdateExportTarget(id string, in service.ExportTargetInput) error {
	return a.export.UpdateTarget(a.ctx, id, in)
}

func (a *App) DeleteExportTarget(id string) error {
	return a.export.DeleteTarget(a.ctx, id)
}

func (a *App) TestExportTarget(id string) error {
	return a.export.TestTarget(a.ctx, id)
}

// RunExport exports the open note's history to the target. A failed run
// is still returned so the frontend can show its error.
func (a *App) RunExport(targetID string) (*domain.ExportRun, error) {
	run, err := a.export.Run(a.ctx, targetID, a.history.NoteID())
	if run != nil {
		return run, nil
	}
	return nil, err
}

func (a *App) ListExportRuns(targetID string) ([]domain.ExportRun, error) {
	return a.export.ListRuns(targetID)
}

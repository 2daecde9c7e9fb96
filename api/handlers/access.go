package handlers

import (
	"context"

	"github.com/diantamela/satgas-ppk/models"
	"github.com/diantamela/satgas-ppk/workflow"
)

// authorizeCaseRead lets the handling team read any case and reporters read their own
func authorizeCaseRead(ctx context.Context, wf *workflow.Service, actor models.Actor, caseID, action string) error {
	if actor.HandlesCases() {
		return nil
	}
	c, err := wf.GetCase(ctx, caseID)
	if err != nil {
		return err
	}
	if c.ReporterID != actor.ID {
		return workflow.AuthorizationError(actor, action)
	}
	return nil
}

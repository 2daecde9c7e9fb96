package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/diantamela/satgas-ppk/api"
	"github.com/diantamela/satgas-ppk/workflow"
)

// Activity exported for testing purposes
type Activity struct {
	Workflow *workflow.Service
}

// ActivitiesHandler returns the case's activity log, newest first. Only the handling
// team may read it.
func (a Activity) ActivitiesHandler(w http.ResponseWriter, r *http.Request) {
	actor := api.ActorFromContext(r.Context())
	if !actor.HandlesCases() {
		writeError(w, "failed to list activities", workflow.AuthorizationError(actor, "read activities"))
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	activities, err := a.Workflow.ListActivities(ctx, mux.Vars(r)["case_id"])
	if err != nil {
		writeError(w, "failed to list activities", err)
		return
	}
	writeJSON(w, http.StatusOK, activities)
}

// RecordActivityHandler appends an activity to the case log
func (a Activity) RecordActivityHandler(w http.ResponseWriter, r *http.Request) {
	var in workflow.ActivityInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	activity, err := a.Workflow.RecordActivity(ctx, api.ActorFromContext(r.Context()), mux.Vars(r)["case_id"], in)
	if err != nil {
		writeError(w, "failed to record activity", err)
		return
	}
	writeJSON(w, http.StatusCreated, activity)
}

package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/diantamela/satgas-ppk/api"
	"github.com/diantamela/satgas-ppk/workflow"
)

// Schedule exported for testing purposes
type Schedule struct {
	Workflow *workflow.Service
}

// ScheduleHandler returns the case's active schedule, or null when none is active
func (s Schedule) ScheduleHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := authorizeCaseRead(ctx, s.Workflow, api.ActorFromContext(r.Context()), caseID, "read schedule"); err != nil {
		writeError(w, "failed to get schedule", err)
		return
	}
	sched, err := s.Workflow.GetActiveSchedule(ctx, caseID)
	if err != nil {
		writeError(w, "failed to get schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, sched)
}

// CreateScheduleHandler schedules an investigation session
func (s Schedule) CreateScheduleHandler(w http.ResponseWriter, r *http.Request) {
	var in workflow.ScheduleInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	sched, err := s.Workflow.CreateSchedule(ctx, api.ActorFromContext(r.Context()), mux.Vars(r)["case_id"], in)
	if err != nil {
		writeError(w, "failed to create schedule", err)
		return
	}
	writeJSON(w, http.StatusCreated, sched)
}

// UpdateScheduleHandler edits the active schedule. Omitted fields keep their values.
func (s Schedule) UpdateScheduleHandler(w http.ResponseWriter, r *http.Request) {
	var in workflow.ScheduleInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	sched, err := s.Workflow.UpdateSchedule(ctx, api.ActorFromContext(r.Context()), mux.Vars(r)["case_id"], in)
	if err != nil {
		writeError(w, "failed to update schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, sched)
}

// DeleteScheduleHandler cancels the active schedule
func (s Schedule) DeleteScheduleHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := s.Workflow.DeleteSchedule(ctx, api.ActorFromContext(r.Context()), mux.Vars(r)["case_id"]); err != nil {
		writeError(w, "failed to delete schedule", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

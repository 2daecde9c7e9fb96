package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/diantamela/satgas-ppk/api"
	"github.com/diantamela/satgas-ppk/models"
	"github.com/diantamela/satgas-ppk/workflow"
)

// Result exported for testing purposes
type Result struct {
	Workflow *workflow.Service
}

func viewFor(actor models.Actor, r models.Result) models.Result {
	if actor.HandlesCases() {
		return r
	}
	return r.Redacted()
}

// UpsertResultHandler saves the result of a schedule. With ?finalize=true the record is
// validated, locked and the case status follows the proposed status. Finalizing needs the
// caseVersion the caller last read.
func (res Result) UpsertResultHandler(w http.ResponseWriter, r *http.Request) {
	finalize := false
	if raw := r.URL.Query().Get("finalize"); raw != "" {
		var err error
		if finalize, err = strconv.ParseBool(raw); err != nil {
			writeError(w, "failed to save result", workflow.ValidationError("finalize", "expected a boolean"))
			return
		}
	}
	var in workflow.ResultInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	saved, err := res.Workflow.UpsertResult(ctx, api.ActorFromContext(r.Context()), mux.Vars(r)["schedule_id"], in, finalize)
	if err != nil {
		writeError(w, "failed to save result", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// ResultByIDHandler returns one result record
func (res Result) ResultByIDHandler(w http.ResponseWriter, r *http.Request) {
	actor := api.ActorFromContext(r.Context())
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	found, err := res.Workflow.GetResult(ctx, mux.Vars(r)["result_id"])
	if err != nil {
		writeError(w, "failed to get result", err)
		return
	}
	if err := authorizeCaseRead(ctx, res.Workflow, actor, found.CaseID, "read result"); err != nil {
		writeError(w, "failed to get result", err)
		return
	}
	writeJSON(w, http.StatusOK, viewFor(actor, *found))
}

// CaseResultsHandler returns every result of the case, oldest first
func (res Result) CaseResultsHandler(w http.ResponseWriter, r *http.Request) {
	actor := api.ActorFromContext(r.Context())
	caseID := mux.Vars(r)["case_id"]
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := authorizeCaseRead(ctx, res.Workflow, actor, caseID, "read results"); err != nil {
		writeError(w, "failed to list results", err)
		return
	}
	results, err := res.Workflow.ListResultsForCase(ctx, caseID)
	if err != nil {
		writeError(w, "failed to list results", err)
		return
	}
	out := make([]models.Result, 0, len(results))
	for _, rec := range results {
		out = append(out, viewFor(actor, rec))
	}
	writeJSON(w, http.StatusOK, out)
}

package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/diantamela/satgas-ppk/api"
	"github.com/diantamela/satgas-ppk/listing"
	"github.com/diantamela/satgas-ppk/models"
	"github.com/diantamela/satgas-ppk/workflow"
)

// Case exported for testing purposes
type Case struct {
	Workflow *workflow.Service
	Listing  *listing.Service
}

// CreateCaseHandler files a new report
func (c Case) CreateCaseHandler(w http.ResponseWriter, r *http.Request) {
	var in workflow.CaseInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	created, err := c.Workflow.CreateCase(ctx, api.ActorFromContext(r.Context()), in)
	if err != nil {
		writeError(w, "failed to create case", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListCasesHandler serves the paginated case listing. Query parameters: search, status
// (comma separated, any casing), scheduledFrom, scheduledTo (RFC 3339), page, limit.
func (c Case) ListCasesHandler(w http.ResponseWriter, r *http.Request) {
	actor := api.ActorFromContext(r.Context())
	if !actor.HandlesCases() {
		writeError(w, "failed to list cases", workflow.AuthorizationError(actor, "list cases"))
		return
	}

	q := r.URL.Query()
	f := models.CaseFilter{Search: q.Get("search")}
	if raw := q.Get("status"); raw != "" {
		statuses, unknown := listing.ParseStatuses(raw)
		if len(unknown) > 0 {
			writeError(w, "failed to list cases", workflow.ValidationError("status", "unknown status "+unknown[0]))
			return
		}
		f.Statuses = statuses
	}
	var err error
	if f.ScheduledFrom, err = queryTime(r, "scheduledFrom"); err != nil {
		writeError(w, "failed to list cases", err)
		return
	}
	if f.ScheduledTo, err = queryTime(r, "scheduledTo"); err != nil {
		writeError(w, "failed to list cases", err)
		return
	}
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := c.Listing.ListCases(ctx, f, page, limit)
	if err != nil {
		writeError(w, "failed to list cases", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func queryTime(r *http.Request, key string) (*time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, workflow.ValidationError(key, "expected an RFC 3339 timestamp")
	}
	return &t, nil
}

// CaseByIDHandler returns one case. Reporters may read their own cases.
func (c Case) CaseByIDHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	found, err := c.Workflow.GetCase(ctx, caseID)
	if err != nil {
		writeError(w, "failed to get case", err)
		return
	}
	actor := api.ActorFromContext(r.Context())
	if !actor.HandlesCases() && found.ReporterID != actor.ID {
		writeError(w, "failed to get case", workflow.AuthorizationError(actor, "read case"))
		return
	}
	writeJSON(w, http.StatusOK, found)
}

type transitionRequest struct {
	Status   string `json:"status"`
	Notes    string `json:"notes"`
	Reason   string `json:"reason"`
	Progress *int   `json:"progress"`
}

// transition decodes the body and runs apply for the case in the route
func (c Case) transition(w http.ResponseWriter, r *http.Request, message string,
	apply func(r *http.Request, actor models.Actor, caseID string, req transitionRequest) (*models.Case, error)) {
	var req transitionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, message, err)
		return
	}
	updated, err := apply(r, api.ActorFromContext(r.Context()), mux.Vars(r)["case_id"], req)
	if err != nil {
		writeError(w, message, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// VerifyCaseHandler accepts a pending report
func (c Case) VerifyCaseHandler(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, "failed to verify case", func(r *http.Request, actor models.Actor, caseID string, req transitionRequest) (*models.Case, error) {
		ctx, cancel := api.WithQueryTimeout(r.Context())
		defer cancel()
		return c.Workflow.VerifyCase(ctx, actor, caseID, req.Notes)
	})
}

// RejectCaseHandler rejects a pending report
func (c Case) RejectCaseHandler(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, "failed to reject case", func(r *http.Request, actor models.Actor, caseID string, req transitionRequest) (*models.Case, error) {
		ctx, cancel := api.WithQueryTimeout(r.Context())
		defer cancel()
		reason := req.Reason
		if reason == "" {
			reason = req.Notes
		}
		return c.Workflow.RejectCase(ctx, actor, caseID, reason)
	})
}

// StartInvestigationHandler moves a scheduled case in progress
func (c Case) StartInvestigationHandler(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, "failed to start investigation", func(r *http.Request, actor models.Actor, caseID string, _ transitionRequest) (*models.Case, error) {
		ctx, cancel := api.WithQueryTimeout(r.Context())
		defer cancel()
		return c.Workflow.StartInvestigation(ctx, actor, caseID)
	})
}

// OverrideStatusHandler sets the case status directly
func (c Case) OverrideStatusHandler(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, "failed to override status", func(r *http.Request, actor models.Actor, caseID string, req transitionRequest) (*models.Case, error) {
		target, ok := models.ParseCaseStatus(req.Status)
		if !ok {
			return nil, workflow.ValidationError("status", "unknown status "+req.Status)
		}
		ctx, cancel := api.WithQueryTimeout(r.Context())
		defer cancel()
		return c.Workflow.OverrideStatus(ctx, actor, caseID, target, req.Notes)
	})
}

// ProgressHandler records the investigation progress percentage
func (c Case) ProgressHandler(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, "failed to set progress", func(r *http.Request, actor models.Actor, caseID string, req transitionRequest) (*models.Case, error) {
		if req.Progress == nil {
			return nil, workflow.ValidationError("progress", "is required")
		}
		ctx, cancel := api.WithQueryTimeout(r.Context())
		defer cancel()
		return c.Workflow.SetInvestigationProgress(ctx, actor, caseID, *req.Progress)
	})
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/diantamela/satgas-ppk/api"
	"github.com/diantamela/satgas-ppk/config"
	"github.com/diantamela/satgas-ppk/listing"
	"github.com/diantamela/satgas-ppk/notification"
	"github.com/diantamela/satgas-ppk/repository"
	"github.com/diantamela/satgas-ppk/workflow"
)

// RequestTimeout bounds every /api/v1 request
const RequestTimeout = 30 * time.Second

// App stores the router and the services behind it, so it can be reused
type App struct {
	Router     *mux.Router
	Config     config.Config
	Store      repository.Store
	Workflow   *workflow.Service
	Listing    *listing.Service
	Dispatcher *notification.Dispatcher
	Hub        *notification.Hub
	Identity   *api.Identity
	Ping       api.Pinger
}

// NewApp wires the services over store and builds the router. ping may be nil.
func NewApp(conf config.Config, store repository.Store, ping api.Pinger) *App {
	a := &App{
		Config: conf,
		Store:  store,
		Hub:    notification.NewHub(),
		Ping:   ping,
	}
	a.Dispatcher = notification.NewDispatcher(store.Notifications(), a.Hub)
	a.Workflow = workflow.NewService(store, a.Dispatcher)
	a.Listing = listing.ForStore(store)
	a.Identity = api.NewIdentity(conf.JWTSecret, conf.TokenTTL)
	a.Router = a.New()
	return a
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	r := mux.NewRouter()
	r.Use(api.MetricsMiddleware)

	c := Case{Workflow: a.Workflow, Listing: a.Listing}
	s := Schedule{Workflow: a.Workflow}
	act := Activity{Workflow: a.Workflow}
	res := Result{Workflow: a.Workflow}
	n := Notification{Dispatcher: a.Dispatcher, Hub: a.Hub}
	u := Upload{
		CloudName:    a.Config.CloudinaryCloudName,
		APIKey:       a.Config.CloudinaryAPIKey,
		APISecret:    a.Config.CloudinaryAPISecret,
		UploadPreset: a.Config.CloudinaryUploadPreset,
	}

	// healthchex
	r.HandleFunc("/health", api.HealthCheckHandler(a.Ping)).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.Handle("/ws/notifications", tokenFromQuery(a.Identity.Middleware(http.HandlerFunc(n.WebSocketHandler)))).Methods("GET")

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.Use(api.TimeoutMiddleware(RequestTimeout), a.Identity.Middleware)

	v1.HandleFunc("/cases", c.CreateCaseHandler).Methods("POST")
	v1.HandleFunc("/cases", c.ListCasesHandler).Methods("GET")
	v1.HandleFunc("/cases/{case_id}", c.CaseByIDHandler).Methods("GET")
	v1.HandleFunc("/cases/{case_id}/verify", c.VerifyCaseHandler).Methods("POST")
	v1.HandleFunc("/cases/{case_id}/reject", c.RejectCaseHandler).Methods("POST")
	v1.HandleFunc("/cases/{case_id}/start", c.StartInvestigationHandler).Methods("POST")
	v1.HandleFunc("/cases/{case_id}/status", c.OverrideStatusHandler).Methods("PUT")
	v1.HandleFunc("/cases/{case_id}/progress", c.ProgressHandler).Methods("PUT")

	v1.HandleFunc("/cases/{case_id}/schedule", s.ScheduleHandler).Methods("GET")
	v1.HandleFunc("/cases/{case_id}/schedule", s.CreateScheduleHandler).Methods("POST")
	v1.HandleFunc("/cases/{case_id}/schedule", s.UpdateScheduleHandler).Methods("PUT")
	v1.HandleFunc("/cases/{case_id}/schedule", s.DeleteScheduleHandler).Methods("DELETE")

	v1.HandleFunc("/cases/{case_id}/activities", act.ActivitiesHandler).Methods("GET")
	v1.HandleFunc("/cases/{case_id}/activities", act.RecordActivityHandler).Methods("POST")

	v1.HandleFunc("/cases/{case_id}/results", res.CaseResultsHandler).Methods("GET")
	v1.HandleFunc("/schedules/{schedule_id}/result", res.UpsertResultHandler).Methods("PUT")
	v1.HandleFunc("/results/{result_id}", res.ResultByIDHandler).Methods("GET")

	v1.HandleFunc("/notifications", n.NotificationsHandler).Methods("GET")
	v1.HandleFunc("/notifications/{notification_id}/read", n.MarkReadHandler).Methods("PUT")

	v1.HandleFunc("/uploads/signature", u.GenerateSignature).Methods("POST")

	return r
}

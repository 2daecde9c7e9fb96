package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/diantamela/satgas-ppk/api"
	"github.com/diantamela/satgas-ppk/notification"
	"github.com/diantamela/satgas-ppk/workflow"
)

// Notification exported for testing purposes
type Notification struct {
	Dispatcher *notification.Dispatcher
	Hub        *notification.Hub
}

// NotificationsHandler lists the caller's notifications, newest first. ?unread=true
// keeps only unread ones.
func (n Notification) NotificationsHandler(w http.ResponseWriter, r *http.Request) {
	actor := api.ActorFromContext(r.Context())
	unread, _ := strconv.ParseBool(r.URL.Query().Get("unread"))

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := n.Dispatcher.ListForRecipient(ctx, actor.ID, unread)
	if err != nil {
		writeError(w, "failed to list notifications", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// MarkReadHandler flags one of the caller's notifications read
func (n Notification) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	actor := api.ActorFromContext(r.Context())
	id := mux.Vars(r)["notification_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	found, err := n.Dispatcher.Get(ctx, id)
	if err != nil {
		writeError(w, "failed to mark notification read", err)
		return
	}
	if found.RecipientID != actor.ID {
		// other users' notifications are indistinguishable from missing ones
		writeError(w, "failed to mark notification read", workflow.NotFoundError("notification", id))
		return
	}
	updated, err := n.Dispatcher.MarkRead(ctx, id)
	if err != nil {
		writeError(w, "failed to mark notification read", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

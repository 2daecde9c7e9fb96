package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/diantamela/satgas-ppk/config"
	"github.com/diantamela/satgas-ppk/workflow"
)

// maxBody bounds request bodies
const maxBody = 1 << 20

var kindStatus = map[workflow.Kind]int{
	workflow.KindValidation:             http.StatusBadRequest,
	workflow.KindAuthorization:          http.StatusForbidden,
	workflow.KindNotFound:               http.StatusNotFound,
	workflow.KindInvalidState:           http.StatusConflict,
	workflow.KindConcurrentModification: http.StatusConflict,
	workflow.KindStorage:                http.StatusInternalServerError,
}

// statusOf maps an error to its HTTP status
func statusOf(err error) int {
	if status, ok := kindStatus[workflow.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// writeError answers with the status of err's kind. Storage details stay in the log.
func writeError(w http.ResponseWriter, message string, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		zap.S().Errorw(message, "error", err)
		config.ErrorStatus(message, status, w, errors.New("internal error"))
		return
	}
	config.ErrorStatus(message, status, w, err)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return workflow.ValidationError("body", err.Error())
	}
	return nil
}

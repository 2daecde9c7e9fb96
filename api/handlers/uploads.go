package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	cldapi "github.com/cloudinary/cloudinary-go/v2/api"

	"github.com/diantamela/satgas-ppk/api"
	"github.com/diantamela/satgas-ppk/workflow"
)

var errUploadsDisabled = errors.New("uploads are not configured")

// Upload signs direct uploads of evidence and attachments to Cloudinary
type Upload struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadPreset string
	now          func() time.Time
}

type signatureRequest struct {
	CaseID string `json:"caseId"`
}

type signatureResponse struct {
	Timestamp    string `json:"timestamp"`
	Signature    string `json:"signature"`
	Folder       string `json:"folder"`
	UploadPreset string `json:"uploadPreset,omitempty"`
	APIKey       string `json:"apiKey"`
	CloudName    string `json:"cloudName"`
}

// GenerateSignature returns the signed parameters for one upload into the case's folder
func (u Upload) GenerateSignature(w http.ResponseWriter, r *http.Request) {
	actor := api.ActorFromContext(r.Context())
	if !actor.HandlesCases() {
		writeError(w, "failed to sign upload", workflow.AuthorizationError(actor, "upload documents"))
		return
	}
	if u.APISecret == "" {
		writeError(w, "failed to sign upload", workflow.StorageError(errUploadsDisabled))
		return
	}
	var req signatureRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, "failed to decode request", err)
		return
	}
	if req.CaseID == "" {
		writeError(w, "failed to sign upload", workflow.ValidationError("caseId", "is required"))
		return
	}

	now := time.Now
	if u.now != nil {
		now = u.now
	}
	timestamp := strconv.FormatInt(now().Unix(), 10)
	folder := "satgas-ppk/cases/" + req.CaseID

	params := url.Values{}
	params.Set("timestamp", timestamp)
	params.Set("folder", folder)
	if u.UploadPreset != "" {
		params.Set("upload_preset", u.UploadPreset)
	}
	signature, err := cldapi.SignParameters(params, u.APISecret)
	if err != nil {
		writeError(w, "failed to sign upload", workflow.StorageError(err))
		return
	}

	writeJSON(w, http.StatusOK, signatureResponse{
		Timestamp:    timestamp,
		Signature:    signature,
		Folder:       folder,
		UploadPreset: u.UploadPreset,
		APIKey:       u.APIKey,
		CloudName:    u.CloudName,
	})
}

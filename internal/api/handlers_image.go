package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kiritosahai/agrisense-insights/internal/api/respond"
	"github.com/kiritosahai/agrisense-insights/internal/auth"
	"github.com/kiritosahai/agrisense-insights/internal/blob"
	"github.com/kiritosahai/agrisense-insights/internal/model"
	"github.com/kiritosahai/agrisense-insights/internal/services"
)

// maxImageBytes caps a single upload at 32 MiB.
const maxImageBytes = 32 << 20

// ImageHandler is a thin HTTP transport over ImageService.
type ImageHandler struct {
	svc        *services.ImageService
	authorizer auth.Authorizer
}

func NewImageHandler(svc *services.ImageService, authorizer auth.Authorizer) *ImageHandler {
	return &ImageHandler{svc: svc, authorizer: authorizer}
}

// UploadImage POST /v0/images
// Multipart form: "file" plus optional fieldId/title/notes fields.
func (h *ImageHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	callerID, ok := mutationCaller(w, r, h.authorizer)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		respond.WriteBadRequest(w, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respond.WriteBadRequest(w, "file part is required")
		return
	}
	defer func() { _ = file.Close() }()

	up := services.PlantImageUpload{
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}
	if v := r.FormValue("fieldId"); v != "" {
		up.FieldID = &v
	}
	if v := r.FormValue("title"); v != "" {
		up.Title = &v
	}
	if v := r.FormValue("notes"); v != "" {
		up.Notes = &v
	}
	out, err := h.svc.SavePlantImage(r.Context(), callerID, up)
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListFieldImages GET /v0/fields/{fieldId}/images
func (h *ImageHandler) ListFieldImages(w http.ResponseWriter, r *http.Request) {
	callerID := queryCaller(r, h.authorizer)
	imgs, err := h.svc.ListFieldImages(r.Context(), callerID, mux.Vars(r)["fieldId"])
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	if imgs == nil {
		imgs = []*model.PlantImage{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"images": imgs, "count": len(imgs)})
}

// ServeBlob GET /v0/images/blob/{key:.*}
func (h *ImageHandler) ServeBlob(w http.ResponseWriter, r *http.Request) {
	info, rc, err := h.svc.OpenImage(r.Context(), mux.Vars(r)["key"])
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			respond.WriteNotFound(w, "not found")
			return
		}
		respond.WriteInternalError(w, err.Error())
		return
	}
	defer func() { _ = rc.Close() }()
	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}

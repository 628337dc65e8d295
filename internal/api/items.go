package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/erazemk/najdeno/internal/items"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
	"github.com/erazemk/najdeno/internal/upload"
)

const (
	// multipartMemory is how much of a form is kept in memory before
	// spilling to temporary files.
	multipartMemory = 32 << 20
	// formOverhead leaves room for text fields and multipart framing on top
	// of the image size limit.
	formOverhead = 1 << 20

	msgTooLarge = "Image exceeds the maximum upload size."
)

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	Items   *items.Repository
	Uploads upload.Sink
	Log     logrus.FieldLogger
}

// fail maps repository errors to responses. Anything that is neither a
// validation error nor a missing item is logged and reported generically.
func (h *ItemsHandler) fail(w http.ResponseWriter, r *http.Request, err error, action string) {
	var verr *items.ValidationError
	switch {
	case errors.As(err, &verr):
		jsonError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, "item not found")
	default:
		requestLog(r, h.Log).WithError(err).Errorf("failed to %s", action)
		jsonError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Items.List(r.Context())
	if err != nil {
		h.fail(w, r, err, "list items")
		return
	}
	if list == nil {
		list = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, list)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.Items.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "get item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Upload handles POST /api/upload: a multipart report with an optional
// "image" file. The image is checked and stored before the item is created;
// if creating the item fails the stored image is removed again.
func (h *ItemsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	limits := h.Uploads.Limits()
	if limits.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limits.MaxBytes+formOverhead)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			jsonError(w, http.StatusBadRequest, msgTooLarge)
			return
		}
		jsonError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	fields := model.ItemFields{
		ItemName:      r.FormValue("itemName"),
		Description:   r.FormValue("description"),
		Location:      r.FormValue("location"),
		Name:          r.FormValue("name"),
		Email:         r.FormValue("email"),
		StudentNumber: r.FormValue("studentNumber"),
		Type:          r.FormValue("type"),
	}

	var image *upload.File
	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// No photo; Validate decides whether that is allowed.
	case err != nil:
		jsonError(w, http.StatusBadRequest, "invalid image upload")
		return
	default:
		defer file.Close()
		if limits.MaxBytes > 0 && header.Size > limits.MaxBytes {
			jsonError(w, http.StatusBadRequest, msgTooLarge)
			return
		}
		data, err := io.ReadAll(file)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid image upload")
			return
		}
		image, err = upload.Accept(limits, header.Filename, data)
		if errors.Is(err, upload.ErrTooLarge) {
			jsonError(w, http.StatusBadRequest, msgTooLarge)
			return
		}
		if err != nil {
			requestLog(r, h.Log).WithError(err).Info("rejected image")
			jsonError(w, http.StatusBadRequest, "Image must be "+formatList(limits.Allowed)+".")
			return
		}
	}

	// Reject bad reports before anything is written.
	if err := h.Items.Validate(&fields, image != nil); err != nil {
		h.fail(w, r, err, "save item")
		return
	}

	var locator string
	if image != nil {
		locator, err = h.Uploads.Save(r.Context(), image)
		if err != nil {
			requestLog(r, h.Log).WithError(err).WithField("sink", h.Uploads.Name()).Error("failed to store image")
			jsonError(w, http.StatusInternalServerError, "failed to store image")
			return
		}
	}

	item, err := h.Items.Create(r.Context(), fields, locator)
	if err != nil {
		if locator != "" {
			if rmErr := h.Uploads.Remove(r.Context(), locator); rmErr != nil {
				requestLog(r, h.Log).WithError(rmErr).Warn("failed to remove orphaned image")
			}
		}
		h.fail(w, r, err, "save item")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"id":      item.ID,
		"item":    item,
	})
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req model.ItemFields
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Items.Update(r.Context(), id, req)
	if err != nil {
		h.fail(w, r, err, "update item")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"success": true, "item": item})
}

// MarkReturned handles PUT /api/items/{id}/returned.
func (h *ItemsHandler) MarkReturned(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.Items.MarkReturned(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "mark item returned")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"success": true, "item": item})
}

// Delete handles DELETE /api/items/{id}. The item's image is released on a
// best-effort basis.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.Items.Delete(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "delete item")
		return
	}

	if item.Image != "" {
		if err := h.Uploads.Remove(r.Context(), item.Image); err != nil {
			requestLog(r, h.Log).WithError(err).WithField("image", item.Image).Warn("failed to remove image")
		}
	}

	jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}

// formatList renders MIME types as "JPEG, PNG or WEBP".
func formatList(mimes []string) string {
	names := make([]string, len(mimes))
	for i, m := range mimes {
		names[i] = strings.ToUpper(strings.TrimPrefix(m, "image/"))
	}
	if len(names) < 2 {
		return strings.Join(names, "")
	}
	return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
}

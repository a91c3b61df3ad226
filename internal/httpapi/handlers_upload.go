package httpapi

import (
	"log/slog"
	"mime/multipart"
	"net/http"

	"metahub/internal/upload"
)

const (
	maxUploadSize   = 32 << 20
	maxUploadFiles  = 10
	uploadFieldName = "media"
)

func (a *API) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, ErrBadForm)
		return
	}
	file, header, err := r.FormFile(uploadFieldName)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrNoFile)
		return
	}
	defer file.Close()

	asset, err := a.Uploader.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		slog.Error("upload failed", "filename", header.Filename, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"file":    asset,
	})
}

type uploadItemResult struct {
	Success bool          `json:"success"`
	Name    string        `json:"name"`
	File    *upload.Asset `json:"file,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// handleUploadMultiple uploads each file independently, capped at
// maxUploadFiles per request.
func (a *API) handleUploadMultiple(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, ErrBadForm)
		return
	}
	var headers []*multipart.FileHeader
	if r.MultipartForm != nil {
		headers = r.MultipartForm.File[uploadFieldName]
	}
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, ErrNoFile)
		return
	}
	if len(headers) > maxUploadFiles {
		headers = headers[:maxUploadFiles]
	}

	results := make([]uploadItemResult, 0, len(headers))
	succeeded := 0
	for _, header := range headers {
		item := uploadItemResult{Name: header.Filename}
		file, err := header.Open()
		if err != nil {
			item.Error = err.Error()
			results = append(results, item)
			continue
		}
		asset, err := a.Uploader.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
		file.Close()
		if err != nil {
			slog.Error("upload failed", "filename", header.Filename, "err", err)
			item.Error = err.Error()
		} else {
			item.Success = true
			item.File = &asset
			succeeded++
		}
		results = append(results, item)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total":   len(results),
		"success": succeeded,
		"errors":  len(results) - succeeded,
		"files":   results,
	})
}

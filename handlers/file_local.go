package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"nlas.ph/portal/pkg/apperr"
)

// uploadDir holds development uploads, served back under /uploads/
const uploadDir = "./uploads"

const maxUploadBytes = 50 << 20

// UploadFileLocal stores an upload on the local filesystem. Used in
// development where no bucket is configured.
func UploadFileLocal(w http.ResponseWriter, r *http.Request) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "failed to create upload directory", err))
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindValidation, "bad multipart form", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apperr.WriteJSON(w, apperr.Validation("file field is required"))
		return
	}
	defer file.Close()

	// Timestamp prefix keeps same-named uploads from colliding
	name := fmt.Sprintf("%s-%s", time.Now().Format("20060102-150405"), filepath.Base(header.Filename))
	dst, err := os.Create(filepath.Join(uploadDir, name))
	if err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "failed to store file", err))
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "failed to store file", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"url":      "/uploads/" + name,
		"filename": name,
	})
}

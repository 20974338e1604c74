package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"nlas.ph/portal/pkg/apperr"
)

func bucketName() string {
	if b := os.Getenv("GCS_BUCKET"); b != "" {
		return b
	}
	return "nlas-portal-uploads"
}

// UploadFileGCS streams an uploaded file into the portal bucket and returns
// the object path to store on the owning record
func UploadFileGCS(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(50 << 20); err != nil {
		apperr.WriteJSON(w, apperr.Validation("bad multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apperr.WriteJSON(w, apperr.Validation("missing file field"))
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	client, err := storage.NewClient(ctx)
	if err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindConfig, "storage client init failed", err))
		return
	}
	defer client.Close()

	objectName := fmt.Sprintf("%s-%s", time.Now().Format("20060102-150405"), header.Filename)
	obj := client.Bucket(bucketName()).Object(objectName)

	wc := obj.NewWriter(ctx)
	wc.ContentType = header.Header.Get("Content-Type")
	if _, err := io.Copy(wc, file); err != nil {
		wc.Close()
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "failed to store file", err))
		return
	}
	if err := wc.Close(); err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "failed to finalize upload", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"url":      objectName,
		"filename": objectName,
	})
}

// signedGCSURL issues a 15-minute V4 signed URL for a stored object
func signedGCSURL(objectName string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", apperr.Wrap(apperr.KindConfig, "storage client init failed", err)
	}
	defer client.Close()

	url, err := client.Bucket(bucketName()).SignedURL(objectName, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(15 * time.Minute),
	})
	if err != nil {
		return "", apperr.Wrap(apperr.KindServer, "failed to sign URL", err)
	}
	return url, nil
}

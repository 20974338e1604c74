package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestUploadFileLocal_MissingFileField(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("note", "no file here")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	UploadFileLocal(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, expected 400", w.Code)
	}
	var body map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["type"] != "VALIDATION_ERROR" {
		t.Errorf("error type = %v, expected VALIDATION_ERROR", body["type"])
	}
}

func TestUploadFileLocal_BadMultipartForm(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/files", strings.NewReader("not a form"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=missing")
	w := httptest.NewRecorder()
	UploadFileLocal(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, expected 400", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, expected application/json", ct)
	}
}

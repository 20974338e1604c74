package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"nlas.ph/portal/config"
	"nlas.ph/portal/middleware"
	"nlas.ph/portal/models"
	"nlas.ph/portal/pkg/apperr"
	"nlas.ph/portal/pkg/realtime"
)

// GetDocumentRequirements returns the upload slots for a service type. If
// the table has none configured the fallback set is served so the upload
// page never renders blank.
func GetDocumentRequirements(w http.ResponseWriter, r *http.Request) {
	serviceType := r.URL.Query().Get("service_type")
	if serviceType == "" {
		serviceType = "nclex"
	}

	var requirements []models.ServiceDocumentRequirement
	err := config.DB.Where("service_type = ?", serviceType).
		Order("sort_order").Find(&requirements).Error
	if err != nil || len(requirements) == 0 {
		writeJSON(w, http.StatusOK, models.FallbackDocumentRequirements(serviceType))
		return
	}
	writeJSON(w, http.StatusOK, requirements)
}

type requirementReq struct {
	ServiceType     string   `json:"service_type" validate:"required"`
	DocumentType    string   `json:"document_type" validate:"required"`
	Name            string   `json:"name" validate:"required"`
	AcceptedFormats []string `json:"accepted_formats"`
	Required        *bool    `json:"required"`
	SortOrder       int      `json:"sort_order"`
}

// CreateDocumentRequirement adds an upload slot for a service type (admin)
func CreateDocumentRequirement(w http.ResponseWriter, r *http.Request) {
	var req requirementReq
	if err := decodeJSON(r, &req); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	requirement := models.ServiceDocumentRequirement{
		ServiceType:     req.ServiceType,
		DocumentType:    req.DocumentType,
		Name:            req.Name,
		AcceptedFormats: req.AcceptedFormats,
		Required:        true,
		SortOrder:       req.SortOrder,
	}
	if req.Required != nil {
		requirement.Required = *req.Required
	}
	if err := config.DB.Create(&requirement).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}
	writeJSON(w, http.StatusCreated, requirement)
}

// UpdateDocumentRequirement edits an upload slot (admin)
func UpdateDocumentRequirement(w http.ResponseWriter, r *http.Request) {
	var requirement models.ServiceDocumentRequirement
	if err := config.DB.First(&requirement, "id = ?", mux.Vars(r)["id"]).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("document requirement not found"))
		return
	}

	var req requirementReq
	if err := decodeJSON(r, &req); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	requirement.ServiceType = req.ServiceType
	requirement.DocumentType = req.DocumentType
	requirement.Name = req.Name
	requirement.AcceptedFormats = req.AcceptedFormats
	requirement.SortOrder = req.SortOrder
	if req.Required != nil {
		requirement.Required = *req.Required
	}
	if err := config.DB.Save(&requirement).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}
	writeJSON(w, http.StatusOK, requirement)
}

// DeleteDocumentRequirement removes an upload slot (admin)
func DeleteDocumentRequirement(w http.ResponseWriter, r *http.Request) {
	result := config.DB.Delete(&models.ServiceDocumentRequirement{}, "id = ?", mux.Vars(r)["id"])
	if result.Error != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", result.Error))
		return
	}
	if result.RowsAffected == 0 {
		apperr.WriteJSON(w, apperr.NotFound("document requirement not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type submitDocumentReq struct {
	ServiceType  string `json:"service_type" validate:"required"`
	DocumentType string `json:"document_type" validate:"required"`
	FileName     string `json:"file_name" validate:"required"`
	FilePath     string `json:"file_path" validate:"required"`
	ContentType  string `json:"content_type"`
	SizeBytes    int64  `json:"size_bytes"`
}

// SubmitDocument records an uploaded document for verification. Re-submitting
// the same slot replaces the previous upload and resets its review.
func SubmitDocument(w http.ResponseWriter, r *http.Request) {
	var req submitDocumentReq
	if err := decodeJSON(r, &req); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	userID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		apperr.WriteJSON(w, apperr.Auth("unauthorized"))
		return
	}

	var doc models.UserDocument
	err = config.DB.Where("user_id = ? AND service_type = ? AND document_type = ?",
		userID, req.ServiceType, req.DocumentType).First(&doc).Error

	doc.UserID = userID
	doc.ServiceType = req.ServiceType
	doc.DocumentType = req.DocumentType
	doc.FileName = req.FileName
	doc.FilePath = req.FilePath
	doc.ContentType = req.ContentType
	doc.SizeBytes = req.SizeBytes
	doc.Status = models.DocumentStatusPending
	doc.AdminNote = ""
	doc.VerifiedBy = nil
	doc.VerifiedAt = nil

	var saveErr error
	var evType realtime.EventType
	if err != nil {
		saveErr = config.DB.Create(&doc).Error
		evType = realtime.EventInsert
	} else {
		saveErr = config.DB.Save(&doc).Error
		evType = realtime.EventUpdate
	}
	if saveErr != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", saveErr))
		return
	}

	publishChange("user_documents", evType, doc, nil)
	writeJSON(w, http.StatusCreated, doc)
}

// ListMyDocuments returns the authenticated client's uploads, with signed
// URLs for viewing
func ListMyDocuments(w http.ResponseWriter, r *http.Request) {
	var docs []models.UserDocument
	if err := config.DB.Where("user_id = ?", middleware.GetUserID(r)).
		Order("created_at DESC").Find(&docs).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}
	writeJSON(w, http.StatusOK, withSignedURLs(docs))
}

// ListDocuments returns uploads across clients, optionally filtered (admin)
func ListDocuments(w http.ResponseWriter, r *http.Request) {
	q := config.DB.Preload("User").Order("created_at DESC")
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		q = q.Where("user_id = ?", userID)
	}

	var docs []models.UserDocument
	if err := q.Find(&docs).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}
	writeJSON(w, http.StatusOK, withSignedURLs(docs))
}

type documentWithURL struct {
	models.UserDocument
	ViewURL string `json:"view_url,omitempty"`
}

func withSignedURLs(docs []models.UserDocument) []documentWithURL {
	out := make([]documentWithURL, 0, len(docs))
	for _, d := range docs {
		url, err := SignedFileURL(d.FilePath)
		if err != nil {
			url = ""
		}
		out = append(out, documentWithURL{UserDocument: d, ViewURL: url})
	}
	return out
}

type reviewDocumentReq struct {
	Status    models.DocumentStatus `json:"status" validate:"required,oneof=verified rejected"`
	AdminNote string                `json:"admin_note"`
}

// ReviewDocument verifies or rejects an uploaded document (admin)
func ReviewDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req reviewDocumentReq
	if err := decodeJSON(r, &req); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	var doc models.UserDocument
	if err := config.DB.First(&doc, "id = ?", id).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("document not found"))
		return
	}

	reviewerID, _ := uuid.Parse(middleware.GetUserID(r))
	now := time.Now()
	updates := map[string]interface{}{
		"status":      req.Status,
		"admin_note":  req.AdminNote,
		"verified_by": reviewerID,
		"verified_at": now,
	}
	if err := config.DB.Model(&doc).Updates(updates).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}
	doc.Status = req.Status
	doc.AdminNote = req.AdminNote
	doc.VerifiedBy = &reviewerID
	doc.VerifiedAt = &now

	NewNotificationService().NotifyDocumentStatus(&doc)
	publishChange("user_documents", realtime.EventUpdate, doc, nil)
	writeJSON(w, http.StatusOK, doc)
}

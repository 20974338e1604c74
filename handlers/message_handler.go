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

// ListMyMessages returns the authenticated user's mailbox, one folder at a
// time (?folder=inbox|sent, default inbox)
func ListMyMessages(w http.ResponseWriter, r *http.Request) {
	folder := r.URL.Query().Get("folder")
	if folder == "" {
		folder = string(models.MessageFolderInbox)
	}

	var messages []models.Message
	if err := config.DB.Where("user_id = ? AND folder = ?", middleware.GetUserID(r), folder).
		Order("created_at DESC").Find(&messages).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// UnreadMessageCount returns the inbox unread counter
func UnreadMessageCount(w http.ResponseWriter, r *http.Request) {
	var count int64
	config.DB.Model(&models.Message{}).
		Where("user_id = ? AND folder = ? AND read_at IS NULL", middleware.GetUserID(r), models.MessageFolderInbox).
		Count(&count)
	writeJSON(w, http.StatusOK, map[string]int64{"unread": count})
}

type sendMessageReq struct {
	UserID  string `json:"user_id" validate:"required,uuid"`
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body" validate:"required"`
}

// SendMessage delivers a message into a client's inbox and mirrors it into
// the sender's sent folder (admin/staff)
func SendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageReq
	if err := decodeJSON(r, &req); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	recipientID, err := uuid.Parse(req.UserID)
	if err != nil {
		apperr.WriteJSON(w, apperr.Validation("invalid user_id"))
		return
	}
	var recipient models.User
	if err := config.DB.First(&recipient, "id = ?", recipientID).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("recipient not found"))
		return
	}

	claims := middleware.GetClaims(r)
	senderName := "NLAS Portal"
	if claims != nil && claims.Name != "" {
		senderName = claims.Name
	}

	inbox := models.Message{
		UserID:  recipientID,
		Folder:  models.MessageFolderInbox,
		Sender:  senderName,
		Subject: req.Subject,
		Body:    req.Body,
	}
	if err := config.DB.Create(&inbox).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}

	// Sent-folder copy for the sender
	if claims != nil {
		if senderID, err := uuid.Parse(claims.UserID); err == nil {
			sent := models.Message{
				UserID:  senderID,
				Folder:  models.MessageFolderSent,
				Sender:  senderName,
				Subject: req.Subject,
				Body:    req.Body,
			}
			config.DB.Create(&sent)
		}
	}

	publishChange("messages", realtime.EventInsert, inbox, nil)
	writeJSON(w, http.StatusCreated, inbox)
}

// MarkMessageRead stamps the server-side read mirror. Idempotent: the first
// timestamp wins.
func MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var message models.Message
	if err := config.DB.Where("id = ? AND user_id = ?", id, middleware.GetUserID(r)).First(&message).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("message not found"))
		return
	}

	if message.ReadAt == nil {
		now := time.Now()
		if err := config.DB.Model(&message).Update("read_at", now).Error; err != nil {
			apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
			return
		}
		message.ReadAt = &now
	}
	writeJSON(w, http.StatusOK, message)
}

// DeleteMessage removes a message from the caller's mailbox
func DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var message models.Message
	if err := config.DB.Where("id = ? AND user_id = ?", id, middleware.GetUserID(r)).First(&message).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("message not found"))
		return
	}
	if err := config.DB.Delete(&message).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}

	publishChange("messages", realtime.EventDelete, nil, message)
	w.WriteHeader(http.StatusNoContent)
}

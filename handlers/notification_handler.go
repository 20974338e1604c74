package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"nlas.ph/portal/config"
	"nlas.ph/portal/middleware"
	"nlas.ph/portal/models"
	"nlas.ph/portal/pkg/apperr"
)

// ListMyNotifications returns the authenticated user's notifications,
// newest first
func ListMyNotifications(w http.ResponseWriter, r *http.Request) {
	q := config.DB.Where("user_id = ?", middleware.GetUserID(r)).Order("created_at DESC").Limit(100)
	if r.URL.Query().Get("unread") == "true" {
		q = q.Where("read_at IS NULL")
	}

	var notifications []models.Notification
	if err := q.Find(&notifications).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

// MarkNotificationRead marks one notification as read
func MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var notification models.Notification
	if err := config.DB.Where("id = ? AND user_id = ?", id, middleware.GetUserID(r)).First(&notification).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("notification not found"))
		return
	}

	notification.MarkAsRead()
	if err := config.DB.Save(&notification).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}
	writeJSON(w, http.StatusOK, notification)
}

// MarkAllNotificationsRead clears the caller's unread notifications
func MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	err := config.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", middleware.GetUserID(r)).
		Updates(map[string]interface{}{
			"status":  models.NotificationStatusRead,
			"read_at": timeNow(),
		}).Error
	if err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "all notifications marked read"})
}

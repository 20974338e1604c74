package handlers

import (
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"nlas.ph/portal/config"
	"nlas.ph/portal/middleware"
	"nlas.ph/portal/models"
	"nlas.ph/portal/pkg/apperr"
)

// uiStateKeys are the only keys the portal stores. This is cosmetic
// bookkeeping (opened quotes, hidden and read message hints), never
// authoritative entity state.
var uiStateKeys = []string{
	models.UIStateKeyOpenedQuotes,
	models.UIStateKeyHiddenMessages,
	models.UIStateKeyReadMessages,
}

// GetUIState returns all of the caller's UI bookkeeping sets keyed by name
func GetUIState(w http.ResponseWriter, r *http.Request) {
	var states []models.UIState
	if err := config.DB.Where("user_id = ?", middleware.GetUserID(r)).Find(&states).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}

	out := map[string][]string{}
	for _, key := range uiStateKeys {
		out[key] = []string{}
	}
	for _, s := range states {
		out[s.Key] = s.IDs
	}
	writeJSON(w, http.StatusOK, out)
}

type uiStateReq struct {
	IDs []string `json:"ids"`
}

// PutUIState replaces one bookkeeping set wholesale. Last write wins; this
// state has no consistency requirement.
func PutUIState(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if !slices.Contains(uiStateKeys, key) {
		apperr.WriteJSON(w, apperr.Validation("unknown UI state key"))
		return
	}

	var req uiStateReq
	if err := decodeJSON(r, &req); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	userID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		apperr.WriteJSON(w, apperr.Auth("unauthorized"))
		return
	}

	var state models.UIState
	findErr := config.DB.Where("user_id = ? AND key = ?", userID, key).First(&state).Error

	state.UserID = userID
	state.Key = key
	state.IDs = req.IDs
	if state.IDs == nil {
		state.IDs = models.StringArray{}
	}

	var saveErr error
	if findErr != nil {
		saveErr = config.DB.Create(&state).Error
	} else {
		saveErr = config.DB.Save(&state).Error
	}
	if saveErr != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", saveErr))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{key: state.IDs})
}

// PatchUIState adds or removes single IDs from one set without replacing it
func PatchUIState(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if !slices.Contains(uiStateKeys, key) {
		apperr.WriteJSON(w, apperr.Validation("unknown UI state key"))
		return
	}

	var req struct {
		Add    []string `json:"add"`
		Remove []string `json:"remove"`
	}
	if err := decodeJSON(r, &req); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	userID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		apperr.WriteJSON(w, apperr.Auth("unauthorized"))
		return
	}

	var state models.UIState
	findErr := config.DB.Where("user_id = ? AND key = ?", userID, key).First(&state).Error
	state.UserID = userID
	state.Key = key

	for _, id := range req.Add {
		state.Add(id)
	}
	for _, id := range req.Remove {
		state.Remove(id)
	}
	if state.IDs == nil {
		state.IDs = models.StringArray{}
	}

	var saveErr error
	if findErr != nil {
		saveErr = config.DB.Create(&state).Error
	} else {
		saveErr = config.DB.Save(&state).Error
	}
	if saveErr != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", saveErr))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{key: state.IDs})
}

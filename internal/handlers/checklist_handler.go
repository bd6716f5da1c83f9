package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/primerapp/primer/internal/services"
	"github.com/primerapp/primer/pkg/apperrors"
	"github.com/primerapp/primer/pkg/middleware"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChecklistHandler handles HTTP requests related to checklists.
type ChecklistHandler struct {
	Service         *services.ChecklistService
	ActivityService *services.ActivityService
}

// NewChecklistHandler creates a new instance of ChecklistHandler.
func NewChecklistHandler(checklistService *services.ChecklistService, activityService *services.ActivityService) *ChecklistHandler {
	return &ChecklistHandler{
		Service:         checklistService,
		ActivityService: activityService,
	}
}

// ForkChecklistHandler creates a checklist from a template.
func (h *ChecklistHandler) ForkChecklistHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		logrus.Warn("Unauthorized fork attempt")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		TemplateID string `json:"template_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logrus.WithError(err).Warn("Invalid request payload during fork")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		logrus.WithError(err).Error("Failed to convert user ID")
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	response, err := h.Service.ForkTemplate(r.Context(), userID, req.TemplateID)
	if err != nil {
		logrus.WithError(err).Warn("Failed to fork template")
		http.Error(w, apperrors.Message(err), apperrors.Status(err))
		return
	}

	checklist := response.Checklist
	_ = h.ActivityService.LogActivity(r.Context(), userID, "checklist_forked", checklist.ID, fmt.Sprintf("Forked checklist: %s", checklist.Title))

	logrus.WithFields(logrus.Fields{
		"userID":      claims.UserID,
		"checklistID": checklist.ID.Hex(),
	}).Info("Checklist successfully forked")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

// GetChecklistsHandler lists the logged-in user's checklists.
func (h *ChecklistHandler) GetChecklistsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		logrus.WithError(err).Error("Invalid user ID format")
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	responses, err := h.Service.ListChecklists(r.Context(), userID)
	if err != nil {
		logrus.WithError(err).Error("Failed to retrieve user checklists")
		http.Error(w, apperrors.Message(err), apperrors.Status(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}

// GetChecklistHandler fetches a single checklist with its progress.
func (h *ChecklistHandler) GetChecklistHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	checklistID := vars["id"]
	log := logrus.WithField("checklistID", checklistID)

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		log.Warn("Unauthorized checklist fetch attempt")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		log.WithError(err).Error("Invalid user ID format")
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	response, err := h.Service.GetChecklist(r.Context(), userID, checklistID)
	if err != nil {
		log.WithError(err).Warn("Failed to fetch checklist")
		http.Error(w, apperrors.Message(err), apperrors.Status(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// GetChecklistProgressHandler returns only the computed progress of a
// checklist.
func (h *ChecklistHandler) GetChecklistProgressHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	checklistID := vars["id"]
	log := logrus.WithField("checklistID", checklistID)

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		log.Warn("Unauthorized progress fetch attempt")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		log.WithError(err).Error("Invalid user ID format")
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	response, err := h.Service.GetChecklist(r.Context(), userID, checklistID)
	if err != nil {
		log.WithError(err).Warn("Failed to fetch checklist progress")
		http.Error(w, apperrors.Message(err), apperrors.Status(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response.Progress)
}

// UpdateStepHandler sets the completion state of one step.
func (h *ChecklistHandler) UpdateStepHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	checklistID := vars["id"]
	log := logrus.WithField("checklistID", checklistID)

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		log.Warn("Unauthorized step update attempt")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		StepIndex *int  `json:"step_index"`
		Completed *bool `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.WithError(err).Warn("Invalid step update payload")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.StepIndex == nil || req.Completed == nil {
		http.Error(w, "step_index and completed are required", http.StatusBadRequest)
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		log.WithError(err).Error("Invalid user ID format")
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	response, err := h.Service.UpdateStep(r.Context(), userID, checklistID, *req.StepIndex, *req.Completed)
	if err != nil {
		log.WithError(err).Warn("Failed to update step")
		http.Error(w, apperrors.Message(err), apperrors.Status(err))
		return
	}

	checklist := response.Checklist
	_ = h.ActivityService.LogActivity(r.Context(), userID, "step_updated", checklist.ID,
		fmt.Sprintf("Updated step %d of checklist: %s", *req.StepIndex, checklist.Title))

	log.WithFields(logrus.Fields{
		"stepIndex": *req.StepIndex,
		"completed": *req.Completed,
	}).Info("Checklist step updated")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// DeleteChecklistHandler deletes a checklist by its ID.
func (h *ChecklistHandler) DeleteChecklistHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	checklistID := vars["id"]
	log := logrus.WithField("checklistID", checklistID)

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		log.Warn("Unauthorized delete attempt")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		log.WithError(err).Error("Invalid user ID format")
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	if err := h.Service.DeleteChecklist(r.Context(), userID, checklistID); err != nil {
		log.WithError(err).Warn("Failed to delete checklist")
		http.Error(w, apperrors.Message(err), apperrors.Status(err))
		return
	}

	objID, err := primitive.ObjectIDFromHex(checklistID)
	if err == nil {
		_ = h.ActivityService.LogActivity(r.Context(), userID, "checklist_deleted", objID, "Deleted checklist")
	}

	log.Info("Checklist deleted successfully")
	w.WriteHeader(http.StatusNoContent)
}

// GetAllChecklistsHandler lists checklists across users, with an optional
// limit. Admin only.
func (h *ChecklistHandler) GetAllChecklistsHandler(w http.ResponseWriter, r *http.Request) {
	limitParam := r.URL.Query().Get("limit")
	var limit int64 = 50
	log := logrus.WithField("defaultLimit", limit)

	if limitParam != "" {
		parsed, err := strconv.ParseInt(limitParam, 10, 64)
		if err == nil && parsed > 0 {
			limit = parsed
			log = log.WithField("parsedLimit", limit)
		} else {
			log.Warn("Invalid limit query param")
		}
	}

	checklists, err := h.Service.GetAllChecklists(r.Context(), limit)
	if err != nil {
		log.WithError(err).Error("Failed to fetch all checklists")
		http.Error(w, apperrors.Message(err), apperrors.Status(err))
		return
	}

	log.WithField("checklistCount", len(checklists)).Info("Fetched all checklists")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(checklists)
}

package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/primerapp/primer/internal/services"
	"github.com/primerapp/primer/pkg/apperrors"
	"github.com/primerapp/primer/pkg/logger"
	"github.com/primerapp/primer/pkg/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ActivityHandler struct {
	Service *services.ActivityService
}

func NewActivityHandler(service *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{Service: service}
}

// GET /activities?limit=N
func (h *ActivityHandler) GetRecentActivitiesHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	var limit int64
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.ParseInt(limitParam, 10, 64)
		if err != nil {
			http.Error(w, "Invalid limit query param", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	activities, err := h.Service.GetRecentActivities(r.Context(), userID, limit)
	if err != nil {
		logger.Log.Errorf("Failed to fetch activities: %v", err)
		http.Error(w, apperrors.Message(err), apperrors.Status(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(activities)
}

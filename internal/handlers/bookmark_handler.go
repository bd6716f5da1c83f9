package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/primerapp/primer/internal/services"
	"github.com/primerapp/primer/pkg/apperrors"
	"github.com/primerapp/primer/pkg/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookmarkHandler struct {
	Service         *services.BookmarkService
	ActivityService *services.ActivityService
}

func NewBookmarkHandler(service *services.BookmarkService, activityService *services.ActivityService) *BookmarkHandler {
	return &BookmarkHandler{
		Service:         service,
		ActivityService: activityService,
	}
}

// CreateBookmarkHandler saves a template for later
func (h *BookmarkHandler) CreateBookmarkHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		TemplateID string `json:"template_id"`
		Note       string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	bookmark, err := h.Service.CreateBookmark(r.Context(), userID, req.TemplateID, req.Note)
	if err != nil {
		http.Error(w, apperrors.Message(err), apperrors.Status(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(bookmark)
}

// GetBookmarksHandler returns all bookmarks of the logged-in user
func (h *BookmarkHandler) GetBookmarksHandler(w http.ResponseWriter, r *http.Request) {
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

	bookmarks, err := h.Service.GetBookmarksByUser(r.Context(), userID)
	if err != nil {
		http.Error(w, apperrors.Message(err), apperrors.Status(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(bookmarks)
}

// DeleteBookmarkHandler removes a bookmark
func (h *BookmarkHandler) DeleteBookmarkHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	bookmarkID := mux.Vars(r)["id"]

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	if err := h.Service.DeleteBookmark(r.Context(), userID, bookmarkID); err != nil {
		http.Error(w, apperrors.Message(err), apperrors.Status(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PromoteBookmarkHandler forks the bookmarked template into a checklist and
// removes the bookmark
func (h *BookmarkHandler) PromoteBookmarkHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookmarkID := vars["id"]

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

	response, err := h.Service.PromoteBookmark(r.Context(), userID, bookmarkID)
	if err != nil {
		http.Error(w, apperrors.Message(err), apperrors.Status(err))
		return
	}

	checklist := response.Checklist
	_ = h.ActivityService.LogActivity(r.Context(), userID, "checklist_forked", checklist.ID,
		fmt.Sprintf("Promoted bookmark into checklist: %s", checklist.Title))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

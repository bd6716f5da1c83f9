package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/primerapp/primer/internal/models"
	"github.com/primerapp/primer/internal/services"
	"github.com/primerapp/primer/pkg/apperrors"
	"github.com/primerapp/primer/pkg/logger"
	"github.com/primerapp/primer/pkg/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TemplateHandler handles HTTP requests related to checklist templates.
type TemplateHandler struct {
	TemplateService *services.TemplateService
	ActivityService *services.ActivityService
}

// NewTemplateHandler creates a new instance of TemplateHandler.
func NewTemplateHandler(templateService *services.TemplateService, activityService *services.ActivityService) *TemplateHandler {
	return &TemplateHandler{
		TemplateService: templateService,
		ActivityService: activityService,
	}
}

// parsePageParams reads page/page_size query params. Zero values are
// normalized by the service.
func parsePageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	return page, pageSize
}

// CreateTemplateHandler allows a logged-in user to publish a template.
func (h *TemplateHandler) CreateTemplateHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		logger.Log.Warn("Unauthorized attempt to create a template")
		return
	}

	var template models.Template
	if err := json.NewDecoder(r.Body).Decode(&template); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		logger.Log.Warnf("Failed to decode template: %v", err)
		return
	}
	defer r.Body.Close()

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		logger.Log.Errorf("Failed to parse user ID: %v", err)
		return
	}

	createdTemplate, err := h.TemplateService.CreateTemplate(r.Context(), &template, userID, claims.Role)
	if err != nil {
		http.Error(w, apperrors.Message(err), apperrors.Status(err))
		logger.Log.Warnf("Error creating template: %v", err)
		return
	}

	_ = h.ActivityService.LogActivity(r.Context(), userID, "template_created", createdTemplate.ID,
		fmt.Sprintf("Published template: %s", createdTemplate.Title))

	logger.Log.Infof("User %s created template %s", claims.UserID, createdTemplate.ID.Hex())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(createdTemplate)
}

// ListTemplatesHandler returns a page of the catalog, optionally narrowed
// to one city. No login required.
func (h *TemplateHandler) ListTemplatesHandler(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	page, pageSize := parsePageParams(r)

	templates, err := h.TemplateService.ListTemplates(r.Context(), location, page, pageSize)
	if err != nil {
		http.Error(w, apperrors.Message(err), apperrors.Status(err))
		logger.Log.Warnf("Error listing templates: %v", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(templates)
}

// SearchTemplatesHandler searches the catalog by keyword. No login required.
func (h *TemplateHandler) SearchTemplatesHandler(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("q")
	location := r.URL.Query().Get("location")
	page, pageSize := parsePageParams(r)

	templates, err := h.TemplateService.SearchTemplates(r.Context(), keyword, location, page, pageSize)
	if err != nil {
		http.Error(w, apperrors.Message(err), apperrors.Status(err))
		logger.Log.Warnf("Error searching templates: %v", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(templates)
}

// GetTemplateByIDHandler fetches a single template. No login required.
func (h *TemplateHandler) GetTemplateByIDHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	templateID := vars["id"]

	template, err := h.TemplateService.GetTemplateByID(r.Context(), templateID)
	if err != nil {
		http.Error(w, apperrors.Message(err), apperrors.Status(err))
		logger.Log.Warnf("Template %s not found: %v", templateID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(template)
}

// GetMyTemplatesHandler lists templates created by the logged-in user.
func (h *TemplateHandler) GetMyTemplatesHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		logger.Log.Warn("Unauthorized attempt to fetch own templates")
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		logger.Log.Errorf("Failed to parse user ID: %v", err)
		return
	}

	templates, err := h.TemplateService.GetTemplatesByUser(r.Context(), userID)
	if err != nil {
		http.Error(w, apperrors.Message(err), apperrors.Status(err))
		logger.Log.Errorf("Error fetching templates for user %s: %v", claims.UserID, err)
		return
	}

	logger.Log.Infof("Fetched %d templates for user %s", len(templates), claims.UserID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(templates)
}

// AdminGetAllTemplatesHandler lists the whole catalog. Admin only.
func (h *TemplateHandler) AdminGetAllTemplatesHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		logger.Log.Warn("Unauthorized attempt to access all templates")
		return
	}

	if claims.Role != "admin" {
		http.Error(w, "Forbidden: Admins only", http.StatusForbidden)
		logger.Log.Warnf("User %s attempted to access admin-only endpoint", claims.UserID)
		return
	}

	templates, err := h.TemplateService.GetAllTemplates(r.Context())
	if err != nil {
		http.Error(w, apperrors.Message(err), apperrors.Status(err))
		logger.Log.Errorf("Admin failed to fetch all templates: %v", err)
		return
	}

	logger.Log.Infof("Admin %s fetched %d templates", claims.UserID, len(templates))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(templates)
}

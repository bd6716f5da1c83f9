package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/primerapp/primer/internal/models"
	"github.com/primerapp/primer/internal/services"
	"github.com/primerapp/primer/pkg/apperrors"
	jwtutil "github.com/primerapp/primer/pkg/jwt"
	"github.com/primerapp/primer/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "handler-test-secret"

type stubTemplateStore struct {
	templates map[primitive.ObjectID]*models.Template
}

func (s *stubTemplateStore) GetTemplateByID(ctx context.Context, id primitive.ObjectID) (*models.Template, error) {
	template, ok := s.templates[id]
	if !ok {
		return nil, fmt.Errorf("failed to fetch template: %w", apperrors.ErrNotFound)
	}
	return template, nil
}

type stubChecklistStore struct {
	mu         sync.Mutex
	checklists map[primitive.ObjectID]*models.Checklist
	order      []primitive.ObjectID
}

func newStubChecklistStore() *stubChecklistStore {
	return &stubChecklistStore{checklists: make(map[primitive.ObjectID]*models.Checklist)}
}

func cloneChecklist(c *models.Checklist) *models.Checklist {
	dup := *c
	dup.Steps = append([]models.TemplateStep(nil), c.Steps...)
	dup.Progress = append([]models.StepProgress(nil), c.Progress...)
	for i := range dup.Progress {
		if c.Progress[i].CompletedAt != nil {
			at := *c.Progress[i].CompletedAt
			dup.Progress[i].CompletedAt = &at
		}
	}
	return &dup
}

func (s *stubChecklistStore) InsertChecklist(ctx context.Context, checklist *models.Checklist) (*models.Checklist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneChecklist(checklist)
	stored.ID = primitive.NewObjectID()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	s.checklists[stored.ID] = stored
	s.order = append(s.order, stored.ID)
	return cloneChecklist(stored), nil
}

func (s *stubChecklistStore) GetChecklistByID(ctx context.Context, id primitive.ObjectID) (*models.Checklist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	checklist, ok := s.checklists[id]
	if !ok {
		return nil, fmt.Errorf("failed to fetch checklist: %w", apperrors.ErrNotFound)
	}
	return cloneChecklist(checklist), nil
}

func (s *stubChecklistStore) UpdateStepProgress(ctx context.Context, id primitive.ObjectID, stepIndex int, completed bool, completedAt *time.Time, updatedAt time.Time) (*models.Checklist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	checklist, ok := s.checklists[id]
	if !ok {
		return nil, fmt.Errorf("failed to update step: %w", apperrors.ErrNotFound)
	}

	checklist.Progress[stepIndex].Completed = completed
	checklist.Progress[stepIndex].CompletedAt = completedAt
	checklist.UpdatedAt = updatedAt
	return cloneChecklist(checklist), nil
}

func (s *stubChecklistStore) ListChecklistsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Checklist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Checklist
	for i := len(s.order) - 1; i >= 0; i-- {
		if checklist := s.checklists[s.order[i]]; checklist != nil && checklist.UserID == userID {
			out = append(out, *cloneChecklist(checklist))
		}
	}
	return out, nil
}

func (s *stubChecklistStore) DeleteChecklist(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.checklists[id]; !ok {
		return fmt.Errorf("failed to delete checklist: %w", apperrors.ErrNotFound)
	}
	delete(s.checklists, id)
	return nil
}

func (s *stubChecklistStore) GetAllChecklists(ctx context.Context, limit int64) ([]models.Checklist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Checklist
	for i := len(s.order) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if checklist := s.checklists[s.order[i]]; checklist != nil {
			out = append(out, *cloneChecklist(checklist))
		}
	}
	return out, nil
}

type stubActivityStore struct {
	mu         sync.Mutex
	activities []models.Activity
}

func (s *stubActivityStore) InsertActivity(ctx context.Context, activity *models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities = append(s.activities, *activity)
	return nil
}

func (s *stubActivityStore) ListUserActivities(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Activity
	for i := len(s.activities) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if s.activities[i].UserID == userID {
			out = append(out, s.activities[i])
		}
	}
	return out, nil
}

func (s *stubActivityStore) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for _, activity := range s.activities {
		out = append(out, activity.Type)
	}
	return out
}

type checklistTestEnv struct {
	router     *mux.Router
	template   *models.Template
	activities *stubActivityStore
}

func newChecklistTestEnv(t *testing.T) *checklistTestEnv {
	t.Helper()

	template := &models.Template{
		ID:          primitive.NewObjectID(),
		Title:       "Open a bank account",
		Description: "From picking a branch to mobile banking",
		LocationTag: "CN",
		Steps: []models.TemplateStep{
			{Title: "Gather documents", Order: 0},
			{Title: "Visit the branch", Order: 1},
			{Title: "Activate mobile banking", Order: 2},
		},
	}

	activities := &stubActivityStore{}
	checklistService := services.NewChecklistService(
		&stubTemplateStore{templates: map[primitive.ObjectID]*models.Template{template.ID: template}},
		newStubChecklistStore(),
		nil,
	)
	handler := NewChecklistHandler(checklistService, services.NewActivityService(activities))

	router := mux.NewRouter()
	protected := router.PathPrefix("/checklists").Subrouter()
	protected.Use(middleware.AuthMiddleware(testSecret))
	protected.HandleFunc("", handler.ForkChecklistHandler).Methods("POST")
	protected.HandleFunc("", handler.GetChecklistsHandler).Methods("GET")
	protected.HandleFunc("/{id}", handler.GetChecklistHandler).Methods("GET")
	protected.HandleFunc("/{id}", handler.DeleteChecklistHandler).Methods("DELETE")
	protected.HandleFunc("/{id}/progress", handler.GetChecklistProgressHandler).Methods("GET")
	protected.HandleFunc("/{id}/steps", handler.UpdateStepHandler).Methods("PATCH")

	return &checklistTestEnv{router: router, template: template, activities: activities}
}

func tokenFor(t *testing.T, userID primitive.ObjectID) string {
	t.Helper()
	token, err := jwtutil.GenerateToken(userID.Hex(), "user@example.com", "user", testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func (env *checklistTestEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(payload)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func (env *checklistTestEnv) fork(t *testing.T, token string) models.ChecklistResponse {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/checklists", token, map[string]string{"template_id": env.template.ID.Hex()})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var response models.ChecklistResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	return response
}

func TestForkChecklistEndpoint(t *testing.T) {
	env := newChecklistTestEnv(t)
	userID := primitive.NewObjectID()
	token := tokenFor(t, userID)

	response := env.fork(t, token)

	assert.Equal(t, env.template.Title, response.Checklist.Title)
	assert.Equal(t, userID, response.Checklist.UserID)
	assert.Equal(t, 3, response.Progress.TotalSteps)
	assert.Equal(t, 0, response.Progress.CompletedSteps)
	assert.Equal(t, 0.0, response.Progress.ProgressPercentage)

	assert.Contains(t, env.activities.types(), "checklist_forked")
}

func TestForkChecklistEndpointErrors(t *testing.T) {
	env := newChecklistTestEnv(t)
	token := tokenFor(t, primitive.NewObjectID())

	t.Run("no token", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/checklists", "", map[string]string{"template_id": env.template.ID.Hex()})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown template", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/checklists", token, map[string]string{"template_id": primitive.NewObjectID().Hex()})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed template id", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/checklists", token, map[string]string{"template_id": "nope"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateStepEndpoint(t *testing.T) {
	env := newChecklistTestEnv(t)
	userID := primitive.NewObjectID()
	token := tokenFor(t, userID)

	forked := env.fork(t, token)
	stepsPath := "/checklists/" + forked.Checklist.ID.Hex() + "/steps"

	rec := env.do(t, http.MethodPatch, stepsPath, token, map[string]interface{}{"step_index": 0, "completed": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var response models.ChecklistResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.True(t, response.Checklist.Progress[0].Completed)
	assert.NotNil(t, response.Checklist.Progress[0].CompletedAt)
	assert.Equal(t, 1, response.Progress.CompletedSteps)
	assert.InDelta(t, 33.33, response.Progress.ProgressPercentage, 0.01)

	assert.Contains(t, env.activities.types(), "step_updated")

	t.Run("missing fields", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, stepsPath, token, map[string]interface{}{"step_index": 1})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("index out of range", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, stepsPath, token, map[string]interface{}{"step_index": 9, "completed": true})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("someone else's checklist", func(t *testing.T) {
		strangerToken := tokenFor(t, primitive.NewObjectID())
		rec := env.do(t, http.MethodPatch, stepsPath, strangerToken, map[string]interface{}{"step_index": 0, "completed": true})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing checklist", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, "/checklists/"+primitive.NewObjectID().Hex()+"/steps", token,
			map[string]interface{}{"step_index": 0, "completed": true})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGetChecklistProgressEndpoint(t *testing.T) {
	env := newChecklistTestEnv(t)
	userID := primitive.NewObjectID()
	token := tokenFor(t, userID)

	forked := env.fork(t, token)
	base := "/checklists/" + forked.Checklist.ID.Hex()

	rec := env.do(t, http.MethodPatch, base+"/steps", token, map[string]interface{}{"step_index": 1, "completed": true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, base+"/progress", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var progress models.ChecklistProgress
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&progress))
	assert.Equal(t, 3, progress.TotalSteps)
	assert.Equal(t, 1, progress.CompletedSteps)
	assert.InDelta(t, 33.33, progress.ProgressPercentage, 0.01)
	require.Len(t, progress.Steps, 3)
	assert.True(t, progress.Steps[1].Completed)
}

func TestListChecklistsEndpoint(t *testing.T) {
	env := newChecklistTestEnv(t)
	userID := primitive.NewObjectID()
	token := tokenFor(t, userID)

	env.fork(t, token)
	env.fork(t, token)
	env.fork(t, tokenFor(t, primitive.NewObjectID()))

	rec := env.do(t, http.MethodGet, "/checklists", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var responses []models.ChecklistResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&responses))
	assert.Len(t, responses, 2)
}

func TestDeleteChecklistEndpoint(t *testing.T) {
	env := newChecklistTestEnv(t)
	userID := primitive.NewObjectID()
	token := tokenFor(t, userID)

	forked := env.fork(t, token)
	path := "/checklists/" + forked.Checklist.ID.Hex()

	rec := env.do(t, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

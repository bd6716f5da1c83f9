package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/primerapp/primer/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Version is the reported service version. Overridable at build time with
// -ldflags "-X github.com/primerapp/primer/internal/handlers.Version=...".
var Version = "dev"

type HealthHandler struct {
	db *mongo.Database
}

func NewHealthHandler(db *mongo.Database) *HealthHandler {
	return &HealthHandler{db: db}
}

// GET /health
func (h *HealthHandler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Client().Ping(ctx, readpref.Primary()); err != nil {
		logger.Log.Errorf("Health check failed to reach MongoDB: %v", err)
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  status,
		"service": "primer-api",
		"version": Version,
	})
}

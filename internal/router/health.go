package router

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/saulo-duarte/edugen-api/internal/config"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Model    string `json:"model"`
}

// Health reports the database reachability and the configured model.
func Health(db *gorm.DB, model string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{Status: "ok", Database: "ok", Model: model}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			config.WithContext(r.Context()).WithError(err).Error("Health check failed")
			resp.Status = "degraded"
			resp.Database = "unreachable"
			config.JSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		config.JSON(w, http.StatusOK, resp)
	}
}

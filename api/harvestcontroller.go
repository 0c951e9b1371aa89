package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"harvestbot/orchestrator"
	"harvestbot/storage"
	"harvestbot/types"
)

// harvestTimeout bounds one manually triggered harvest.
const harvestTimeout = 30 * time.Minute

// RegisterHarvestRoutes registers the manual harvest trigger.
func RegisterHarvestRoutes(r *gin.Engine, orch *orchestrator.Orchestrator) {
	h := &harvestController{orch: orch}
	r.POST("/api/harvest", h.handleTrigger)
}

type harvestController struct {
	orch *orchestrator.Orchestrator
}

// handleTrigger accepts a work-item payload and starts the harvest in the
// background. Validation mirrors the Kafka work-item path: both url and
// journal_key are required.
func (h *harvestController) handleTrigger(c *gin.Context) {
	var item types.WorkItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid JSON payload"})
		return
	}
	if item.URL == "" || item.JournalKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "url and journal_key are required"})
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), harvestTimeout)
		defer cancel()
		if err := h.orch.HandleWorkItem(ctx, &item); err != nil {
			log.Printf("Manual harvest failed for %s: %v", item.JournalKey, err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"success": true, "message": "harvest started", "journalKey": item.JournalKey})
}

// RegisterHealthRoutes registers the health endpoint. The S3 check is
// best-effort: a failing bucket turns the response degraded but still 200,
// so orchestration platforms do not restart the service on AWS blips.
func RegisterHealthRoutes(r *gin.Engine, store *storage.Store) {
	r.GET("/api/health", func(c *gin.Context) {
		status := "healthy"
		s3Status := "ok"
		if store != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				status = "degraded"
				s3Status = err.Error()
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": status, "s3": s3Status})
	})
}

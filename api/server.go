package api

import (
	"github.com/gin-gonic/gin"

	"harvestbot/orchestrator"
	"harvestbot/storage"
)

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(orch *orchestrator.Orchestrator, store *storage.Store) *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())

	RegisterHarvestRoutes(r, orch)
	RegisterHealthRoutes(r, store)
	return r
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/obunabot/obuna_go_server/internal/pkg/response"
	"github.com/obunabot/obuna_go_server/internal/service"
)

type StatsHandler struct {
	stats *service.StatsService
}

func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Get returns the dashboard overview counters.
// GET /api/v1/stats
func (h *StatsHandler) Get(c *gin.Context) {
	overview, err := h.stats.Overview()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, overview)
}

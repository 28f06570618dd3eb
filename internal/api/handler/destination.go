package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/obunabot/obuna_go_server/internal/model"
	"github.com/obunabot/obuna_go_server/internal/model/dto"
	"github.com/obunabot/obuna_go_server/internal/pkg/response"
	"github.com/obunabot/obuna_go_server/internal/repository"
)

type DestinationHandler struct {
	destRepo *repository.DestinationRepository
}

func NewDestinationHandler(destRepo *repository.DestinationRepository) *DestinationHandler {
	return &DestinationHandler{destRepo: destRepo}
}

// List returns the active destinations.
// GET /api/v1/destinations
func (h *DestinationHandler) List(c *gin.Context) {
	dests, err := h.destRepo.ListActive()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, dests)
}

// Create registers a protected chat.
// POST /api/v1/destinations
func (h *DestinationHandler) Create(c *gin.Context) {
	var req dto.CreateDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	title := req.Title
	if title == "" {
		title = strconv.FormatInt(req.ChatID, 10)
	}
	dest := &model.Destination{ChatID: req.ChatID, Title: title, IsActive: true}
	if err := h.destRepo.Create(dest); err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, dest)
}

// Delete soft-deletes a destination.
// DELETE /api/v1/destinations/:id
func (h *DestinationHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid id")
		return
	}
	if err := h.destRepo.Deactivate(id); err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, nil)
}

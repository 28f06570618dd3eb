package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/obunabot/obuna_go_server/internal/model"
	"github.com/obunabot/obuna_go_server/internal/model/dto"
	"github.com/obunabot/obuna_go_server/internal/pkg/response"
	"github.com/obunabot/obuna_go_server/internal/repository"
)

type CardHandler struct {
	cardRepo *repository.CardRepository
}

func NewCardHandler(cardRepo *repository.CardRepository) *CardHandler {
	return &CardHandler{cardRepo: cardRepo}
}

// List returns the active payment cards.
// GET /api/v1/cards
func (h *CardHandler) List(c *gin.Context) {
	cards, err := h.cardRepo.ListActive()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, cards)
}

// Create adds a payment card.
// POST /api/v1/cards
func (h *CardHandler) Create(c *gin.Context) {
	var req dto.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	card := &model.Card{CardNumber: req.CardNumber, CardHolder: req.CardHolder, IsActive: true}
	if err := h.cardRepo.Create(card); err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, card)
}

// Delete deactivates a card.
// DELETE /api/v1/cards/:id
func (h *CardHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid id")
		return
	}
	if err := h.cardRepo.Deactivate(id); err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, nil)
}

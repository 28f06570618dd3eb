package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/obunabot/obuna_go_server/internal/api/middleware"
	"github.com/obunabot/obuna_go_server/internal/model"
	"github.com/obunabot/obuna_go_server/internal/model/dto"
	"github.com/obunabot/obuna_go_server/internal/pkg/response"
	"github.com/obunabot/obuna_go_server/internal/repository"
	"github.com/obunabot/obuna_go_server/internal/service"
)

type PaymentHandler struct {
	paymentRepo    *repository.PaymentRepository
	paymentService *service.PaymentService
}

func NewPaymentHandler(paymentRepo *repository.PaymentRepository, paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentRepo:    paymentRepo,
		paymentService: paymentService,
	}
}

// List returns payments, newest first, optionally filtered by status.
// GET /api/v1/payments?status=pending&page=1&page_size=20
func (h *PaymentHandler) List(c *gin.Context) {
	status := c.Query("status")
	switch status {
	case "", model.PaymentStatusPending, model.PaymentStatusApproved, model.PaymentStatusRejected:
	default:
		response.ParamError(c, "unknown status")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	payments, total, err := h.paymentRepo.List(status, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	items := make([]dto.PaymentItem, 0, len(payments))
	for i := range payments {
		items = append(items, toPaymentItem(&payments[i]))
	}
	response.SuccessPage(c, total, page, pageSize, items)
}

// Get returns one payment.
// GET /api/v1/payments/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid id")
		return
	}

	payment, err := h.paymentRepo.GetByID(id)
	if err != nil {
		response.NotFoundError(c, "payment not found")
		return
	}
	response.Success(c, toPaymentItem(payment))
}

// Decide approves or rejects a pending payment.
// POST /api/v1/payments/:id/decide
func (h *PaymentHandler) Decide(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid id")
		return
	}

	var req dto.DecidePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	adminID, _ := middleware.GetAdminID(c)
	payment, err := h.paymentService.Decide(c.Request.Context(), id, adminID, req.Outcome)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			response.NotFoundError(c, "payment not found")
		case errors.Is(err, service.ErrPaymentAlreadyDecided):
			response.AlreadyDecidedError(c, "payment already decided")
		case errors.Is(err, service.ErrInvalidOutcome):
			response.ParamError(c, "invalid outcome")
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, toPaymentItem(payment))
}

func toPaymentItem(p *model.Payment) dto.PaymentItem {
	return dto.PaymentItem{
		ID:        p.ID,
		UserID:    p.UserID,
		FullName:  p.User.FullName(),
		Phone:     p.User.Phone,
		Amount:    p.Amount,
		Status:    p.Status,
		DecidedBy: p.DecidedBy,
		CreatedAt: p.CreatedAt,
		DecidedAt: p.DecidedAt,
	}
}

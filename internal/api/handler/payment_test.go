package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/obunabot/obuna_go_server/internal/api/middleware"
	"github.com/obunabot/obuna_go_server/internal/model"
	"github.com/obunabot/obuna_go_server/internal/model/dto"
	"github.com/obunabot/obuna_go_server/internal/pkg/response"
	"github.com/obunabot/obuna_go_server/internal/repository"
	"github.com/obunabot/obuna_go_server/internal/service"
	"github.com/obunabot/obuna_go_server/internal/testutil"
)

// nopMessenger satisfies service.Messenger for handler tests; the
// notification path is covered in the service tests.
type nopMessenger struct{}

func (nopMessenger) SendMessage(ctx context.Context, chatID int64, text string) error { return nil }
func (nopMessenger) SendMessageWithMarkup(ctx context.Context, chatID int64, text string, markup interface{}) error {
	return nil
}
func (nopMessenger) SendPhoto(ctx context.Context, chatID int64, fileID, caption string, markup interface{}) error {
	return nil
}
func (nopMessenger) CreateInviteLink(ctx context.Context, chatID int64, name string) (string, error) {
	return "https://t.me/+test", nil
}
func (nopMessenger) BanThenUnban(ctx context.Context, chatID, userID int64) error { return nil }

// mockAuth stands in for the JWT middleware.
func mockAuth(adminID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.AdminIDKey, adminID)
		c.Next()
	}
}

func setupPaymentHandler(t *testing.T) (*PaymentHandler, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	cfg := testAPIConfig(t)
	paymentRepo := repository.NewPaymentRepository(db)
	subService := service.NewSubscriptionService(repository.NewSubscriptionRepository(db), cfg)
	paymentService := service.NewPaymentService(
		paymentRepo,
		repository.NewDestinationRepository(db),
		subService,
		nopMessenger{},
		nil,
		cfg,
	)
	return NewPaymentHandler(paymentRepo, paymentService), db
}

func paymentRouter(h *PaymentHandler) *gin.Engine {
	router := gin.New()
	router.Use(mockAuth(111))
	router.GET("/payments", h.List)
	router.GET("/payments/:id", h.Get)
	router.POST("/payments/:id/decide", h.Decide)
	return router
}

func TestPaymentHandler_List(t *testing.T) {
	handler, db := setupPaymentHandler(t)
	router := paymentRouter(handler)

	user := testutil.TestUser(t, db)
	testutil.TestPayment(t, db, user.ID)
	testutil.TestPayment(t, db, user.ID, testutil.WithStatus(model.PaymentStatusApproved))

	w := performRequest(router, "GET", "/payments?status=pending", nil)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), data["total"])
}

func TestPaymentHandler_List_BadStatus(t *testing.T) {
	handler, _ := setupPaymentHandler(t)
	router := paymentRouter(handler)

	w := performRequest(router, "GET", "/payments?status=wat", nil)
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestPaymentHandler_Get(t *testing.T) {
	handler, db := setupPaymentHandler(t)
	router := paymentRouter(handler)

	user := testutil.TestUser(t, db, testutil.WithName("Aziz", "Azizov"))
	payment := testutil.TestPayment(t, db, user.ID)

	w := performRequest(router, "GET", fmt.Sprintf("/payments/%d", payment.ID), nil)
	resp := parseResponse(t, w)

	require.Equal(t, response.CodeSuccess, resp.Code)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Aziz Azizov", data["full_name"])
	assert.Equal(t, "pending", data["status"])
}

func TestPaymentHandler_Get_NotFound(t *testing.T) {
	handler, _ := setupPaymentHandler(t)
	router := paymentRouter(handler)

	w := performRequest(router, "GET", "/payments/12345", nil)
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeResourceNotFound, resp.Code)
}

func TestPaymentHandler_Decide_Approve(t *testing.T) {
	handler, db := setupPaymentHandler(t)
	router := paymentRouter(handler)

	user := testutil.TestUser(t, db)
	payment := testutil.TestPayment(t, db, user.ID)

	w := performRequest(router, "POST", fmt.Sprintf("/payments/%d/decide", payment.ID),
		dto.DecidePaymentRequest{Outcome: "approve"})
	resp := parseResponse(t, w)

	require.Equal(t, response.CodeSuccess, resp.Code)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "approved", data["status"])
	assert.Equal(t, float64(111), data["decided_by"])

	// Approval granted a subscription.
	sub, err := repository.NewSubscriptionRepository(db).ActiveByUserID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, sub)
}

func TestPaymentHandler_Decide_AlreadyDecided(t *testing.T) {
	handler, db := setupPaymentHandler(t)
	router := paymentRouter(handler)

	user := testutil.TestUser(t, db)
	payment := testutil.TestPayment(t, db, user.ID)
	path := fmt.Sprintf("/payments/%d/decide", payment.ID)

	w := performRequest(router, "POST", path, dto.DecidePaymentRequest{Outcome: "approve"})
	require.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)

	w = performRequest(router, "POST", path, dto.DecidePaymentRequest{Outcome: "reject"})
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeAlreadyDecided, resp.Code)

	// First outcome stands.
	stored, err := repository.NewPaymentRepository(db).GetByID(payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusApproved, stored.Status)
}

func TestPaymentHandler_Decide_NotFound(t *testing.T) {
	handler, _ := setupPaymentHandler(t)
	router := paymentRouter(handler)

	w := performRequest(router, "POST", "/payments/12345/decide",
		dto.DecidePaymentRequest{Outcome: "approve"})
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeResourceNotFound, resp.Code)
}

func TestPaymentHandler_Decide_BadOutcome(t *testing.T) {
	handler, db := setupPaymentHandler(t)
	router := paymentRouter(handler)

	user := testutil.TestUser(t, db)
	payment := testutil.TestPayment(t, db, user.ID)

	w := performRequest(router, "POST", fmt.Sprintf("/payments/%d/decide", payment.ID),
		map[string]string{"outcome": "maybe"})
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeParamError, resp.Code)
}

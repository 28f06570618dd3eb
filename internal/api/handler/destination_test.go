package handler

import (
	"fmt"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/obunabot/obuna_go_server/internal/model/dto"
	"github.com/obunabot/obuna_go_server/internal/pkg/response"
	"github.com/obunabot/obuna_go_server/internal/repository"
	"github.com/obunabot/obuna_go_server/internal/testutil"
)

func setupDestinationRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	handler := NewDestinationHandler(repository.NewDestinationRepository(db))
	router := gin.New()
	router.Use(mockAuth(111))
	router.GET("/destinations", handler.List)
	router.POST("/destinations", handler.Create)
	router.DELETE("/destinations/:id", handler.Delete)
	return router, db
}

func TestDestinationHandler_Create(t *testing.T) {
	router, db := setupDestinationRouter(t)

	w := performRequest(router, "POST", "/destinations", dto.CreateDestinationRequest{
		ChatID: -1001234567890,
		Title:  "VIP Kanal",
	})
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	dests, err := repository.NewDestinationRepository(db).ListActive()
	require.NoError(t, err)
	require.Len(t, dests, 1)
	assert.Equal(t, int64(-1001234567890), dests[0].ChatID)
	assert.Equal(t, "VIP Kanal", dests[0].Title)
}

func TestDestinationHandler_Create_DefaultTitle(t *testing.T) {
	router, db := setupDestinationRouter(t)

	w := performRequest(router, "POST", "/destinations", dto.CreateDestinationRequest{
		ChatID: -100555,
	})
	require.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)

	dests, err := repository.NewDestinationRepository(db).ListActive()
	require.NoError(t, err)
	require.Len(t, dests, 1)
	assert.Equal(t, "-100555", dests[0].Title)
}

func TestDestinationHandler_Delete(t *testing.T) {
	router, db := setupDestinationRouter(t)

	dest := testutil.TestDestination(t, db)
	w := performRequest(router, "DELETE", fmt.Sprintf("/destinations/%d", dest.ID), nil)
	require.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)

	dests, err := repository.NewDestinationRepository(db).ListActive()
	require.NoError(t, err)
	assert.Empty(t, dests)
}

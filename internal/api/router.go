package api

import (
	"github.com/gin-gonic/gin"

	"github.com/obunabot/obuna_go_server/config"
	"github.com/obunabot/obuna_go_server/internal/api/handler"
	"github.com/obunabot/obuna_go_server/internal/api/middleware"
)

type Router struct {
	authHandler      *handler.AuthHandler
	paymentHandler   *handler.PaymentHandler
	statsHandler     *handler.StatsHandler
	destHandler      *handler.DestinationHandler
	cardHandler      *handler.CardHandler
	websocketHandler *handler.WebSocketHandler
	cfg              *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	paymentHandler *handler.PaymentHandler,
	statsHandler *handler.StatsHandler,
	destHandler *handler.DestinationHandler,
	cardHandler *handler.CardHandler,
	websocketHandler *handler.WebSocketHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:      authHandler,
		paymentHandler:   paymentHandler,
		statsHandler:     statsHandler,
		destHandler:      destHandler,
		cardHandler:      cardHandler,
		websocketHandler: websocketHandler,
		cfg:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		api.GET("/ws", r.websocketHandler.Handle)

		api.POST("/auth/login", r.authHandler.Login)

		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			authenticated.GET("/stats", r.statsHandler.Get)

			authenticated.GET("/payments", r.paymentHandler.List)
			authenticated.GET("/payments/:id", r.paymentHandler.Get)
			authenticated.POST("/payments/:id/decide", r.paymentHandler.Decide)

			authenticated.GET("/destinations", r.destHandler.List)
			authenticated.POST("/destinations", r.destHandler.Create)
			authenticated.DELETE("/destinations/:id", r.destHandler.Delete)

			authenticated.GET("/cards", r.cardHandler.List)
			authenticated.POST("/cards", r.cardHandler.Create)
			authenticated.DELETE("/cards/:id", r.cardHandler.Delete)
		}
	}

	return engine
}

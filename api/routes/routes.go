package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/ArowuTest/poolgame-backend/internal/config"
	"github.com/ArowuTest/poolgame-backend/internal/handlers"
	"github.com/ArowuTest/poolgame-backend/internal/metrics"
	"github.com/ArowuTest/poolgame-backend/internal/middleware"
	"github.com/ArowuTest/poolgame-backend/internal/services"
)

// Services are the dependencies of the HTTP layer
type Services struct {
	Draws       services.DrawService
	Settlements services.SettlementService
	Rounds      services.RoundService
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, svc Services, logger log.FieldLogger) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedHosts))
	router.Use(metrics.Middleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metrics.Handler())

	drawHandler := handlers.NewDrawHandler(svc.Draws)
	settlementHandler := handlers.NewSettlementHandler(svc.Settlements)
	roundHandler := handlers.NewRoundHandler(svc.Rounds)

	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg.JWT))
	{
		rounds := protected.Group("/rounds/:id")
		{
			rounds.GET("/status", roundHandler.GetStatus)
			rounds.GET("/draw", drawHandler.GetDraw)
			rounds.GET("/settlement", settlementHandler.GetResult)
			rounds.GET("/winners", settlementHandler.GetWinners)
			rounds.GET("/ledger", settlementHandler.GetLedger)

			writes := rounds.Group("")
			writes.Use(middleware.RequireRole(middleware.RoleOperator, middleware.RoleAdmin))
			{
				writes.POST("/draw", drawHandler.RecordDraw)
				writes.POST("/settle", settlementHandler.Settle)
				writes.POST("/close", roundHandler.Close)
			}

			admin := rounds.Group("")
			admin.Use(middleware.RequireRole(middleware.RoleAdmin))
			{
				admin.PUT("/premiation", roundHandler.UpdatePremiation)
			}
		}
	}

	return router
}

package routes

import (
	"net/http"

	"dealvalue_backend/internal/handlers"
	"dealvalue_backend/internal/logger"
	"dealvalue_backend/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StaticDir - каталог локального хранилища, раздаваемый как статика
type StaticDir struct {
	Prefix string
	Root   string
}

// RegisterRoutes регистрирует все HTTP и WebSocket маршруты.
// static == nil, если файлы лежат во внешнем хранилище.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	wsHandler *ws.WebSocketHandler,
	static *StaticDir,
) {
	root := ginRouter.Group("")
	{
		appHandlers.UserHandler.RegisterRoutes(root)
		appHandlers.PlanHandler.RegisterRoutes(root)
		appHandlers.PurchaseHandler.RegisterRoutes(root)
	}

	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	ginRouter.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if static != nil {
		ginRouter.Static(static.Prefix, static.Root)
		logger.Info("Static uploads registered", "prefix", static.Prefix, "root", static.Root)
	}

	// Регистрация WebSocket
	ginRouter.GET("/chat", wsHandler.ServeWS)
	logger.Info("WebSocket route /chat registered")
}

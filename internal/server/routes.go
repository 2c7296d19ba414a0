package server

import (
	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
)

func registerRoutes(e *echo.Echo, cfg config.Config, webhookH *handler.WebhookHandler, adminH *handler.AdminHandler) {
	webhookH.RegisterRoutes(e)
	adminH.RegisterRoutes(e, cfg)
}

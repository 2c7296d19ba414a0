package server

import (
	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Newはルーティング済みのechoインスタンスを返す
func New(cfg config.Config, webhookH *handler.WebhookHandler, adminH *handler.AdminHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	if cfg.GoEnv == "dev" {
		e.Use(echomw.Logger())
	}

	registerRoutes(e, cfg, webhookH, adminH)
	return e
}

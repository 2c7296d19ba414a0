package handler

import (
	"io"
	"log"
	"net/http"

	"app/internal/line"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type WebhookHandler struct {
	channelSecret string
	conv          *usecase.ConversationUsecase
	logger        *log.Logger
}

func NewWebhookHandler(channelSecret string, conv *usecase.ConversationUsecase, logger *log.Logger) *WebhookHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &WebhookHandler{channelSecret: channelSecret, conv: conv, logger: logger}
}

func (h *WebhookHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.health)
	e.POST("/callback", h.receive)
}

func (h *WebhookHandler) health(c echo.Context) error {
	return c.String(http.StatusOK, "HARDY BOT RUNNING")
}

func (h *WebhookHandler) receive(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	//署名が合わない配送は処理しない
	sig := c.Request().Header.Get("X-Line-Signature")
	if !line.ValidateSignature(h.channelSecret, sig, body) {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid signature"})
	}

	events, err := line.ParseWebhook(body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	//1イベントの失敗で配送全体を落とさない（LINE側の再送を招くため）
	ctx := c.Request().Context()
	for _, ev := range events {
		if err := h.conv.HandleEvent(ctx, ev); err != nil {
			h.logger.Printf("ERROR handle event from %s: %v", ev.CustomerID, err)
		}
	}
	return c.String(http.StatusOK, "OK")
}

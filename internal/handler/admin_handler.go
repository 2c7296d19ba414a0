package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// usecaseのHTTPErrorをstatusへ、それ以外は500へ
func writeError(c echo.Context, err error) error {
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// AdminHandlerは運用者向けのREST API。
// LINE上のCLOSE:コマンドと同じ操作をHTTPでも提供する。
type AdminHandler struct {
	uc *usecase.AdminUsecase
}

func NewAdminHandler(uc *usecase.AdminUsecase) *AdminHandler {
	return &AdminHandler{uc: uc}
}

func (h *AdminHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	e.POST("/admin/login", h.login)

	g := e.Group("/admin")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.AdminRoleGuard())

	g.GET("/orders", h.listOrders)
	g.POST("/orders/:order_id/close", h.closeOrder)
	g.GET("/stock", h.listStock)
	g.PUT("/stock", h.setStock)
}

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

func (h *AdminHandler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	token, err := h.uc.Login(c.Request().Context(), req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, LoginResponse{AccessToken: token})
}

func (h *AdminHandler) listOrders(c echo.Context) error {
	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = n
	}

	out, err := h.uc.ListOrders(c.Request().Context(), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) closeOrder(c echo.Context) error {
	orderID := c.Param("order_id")
	if err := h.uc.CloseOrder(c.Request().Context(), orderID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"order_id": orderID, "status": "CLOSED"})
}

func (h *AdminHandler) listStock(c echo.Context) error {
	out, err := h.uc.ListStock(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type SetStockRequest struct {
	Color string `json:"color"`
	Size  string `json:"size"`
	Stock int64  `json:"stock"`
	Price int64  `json:"price"`
}

func (h *AdminHandler) setStock(c echo.Context) error {
	var req SetStockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	err := h.uc.SetStock(c.Request().Context(), usecase.SetStockInput{
		Color: req.Color,
		Size:  req.Size,
		Stock: req.Stock,
		Price: req.Price,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

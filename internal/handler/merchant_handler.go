package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /merchant配下（注文の進行と在庫）
type MerchantHandler struct {
	orderUC *usecase.MerchantOrderUsecase
	invUC   *usecase.InventoryUsecase
}

func NewMerchantHandler(orderUC *usecase.MerchantOrderUsecase, invUC *usecase.InventoryUsecase) *MerchantHandler {
	return &MerchantHandler{orderUC: orderUC, invUC: invUC}
}

type OrderStatusUpdateRequest struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

type AddStockRequest struct {
	ProductID int64  `json:"product_id"`
	VariantID *int64 `json:"variant_id,omitempty"`
	Quantity  int64  `json:"quantity"`
	Location  string `json:"location,omitempty"`
}

func (h *MerchantHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/merchant")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.RoleGuard(string(model.RoleMerchant), string(model.RoleAdmin)))

	g.GET("/orders", h.listOrders)
	g.POST("/orders/:id/status", h.updateOrderStatus)

	g.POST("/inventory/add", h.addStock)
	g.GET("/inventory", h.listInventory)
	g.GET("/inventory/:id/logs", h.listInventoryLogs)
}

func (h *MerchantHandler) listOrders(c echo.Context) error {
	actorID, role, err := actor(c)
	if err != nil {
		return err
	}

	// page（default 1）
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return writeErrorCode(c, http.StatusBadRequest, usecase.CodeValidation, "invalid page")
		}
		page = p
	}

	// limit（default 20）
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return writeErrorCode(c, http.StatusBadRequest, usecase.CodeValidation, "invalid limit")
		}
		limit = l
	}

	out, ucErr := h.orderUC.List(c.Request().Context(), actorID, role, page, limit)
	if ucErr != nil {
		return writeError(c, ucErr)
	}
	return writeData(c, http.StatusOK, out)
}

func (h *MerchantHandler) updateOrderStatus(c echo.Context) error {
	actorID, role, err := actor(c)
	if err != nil {
		return err
	}

	orderID, parseErr := strconv.ParseInt(c.Param("id"), 10, 64)
	if parseErr != nil {
		return writeErrorCode(c, http.StatusBadRequest, usecase.CodeValidation, "invalid id")
	}

	var req OrderStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return writeErrorCode(c, http.StatusBadRequest, usecase.CodeValidation, "invalid body")
	}

	out, ucErr := h.orderUC.UpdateStatus(c.Request().Context(), actorID, role, orderID, usecase.UpdateOrderStatusInput{
		Status:         req.Status,
		TrackingNumber: req.TrackingNumber,
		Notes:          req.Notes,
	})
	if ucErr != nil {
		return writeError(c, ucErr)
	}
	return writeData(c, http.StatusOK, out)
}

func (h *MerchantHandler) addStock(c echo.Context) error {
	actorID, role, err := actor(c)
	if err != nil {
		return err
	}

	var req AddStockRequest
	if err := c.Bind(&req); err != nil {
		return writeErrorCode(c, http.StatusBadRequest, usecase.CodeValidation, "invalid body")
	}

	out, ucErr := h.invUC.AddStock(c.Request().Context(), actorID, role, usecase.AddStockInput{
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
		Location:  req.Location,
	})
	if ucErr != nil {
		return writeError(c, ucErr)
	}
	return writeData(c, http.StatusCreated, out)
}

func (h *MerchantHandler) listInventory(c echo.Context) error {
	actorID, role, err := actor(c)
	if err != nil {
		return err
	}

	out, ucErr := h.invUC.List(c.Request().Context(), actorID, role)
	if ucErr != nil {
		return writeError(c, ucErr)
	}
	return writeData(c, http.StatusOK, out)
}

func (h *MerchantHandler) listInventoryLogs(c echo.Context) error {
	actorID, role, err := actor(c)
	if err != nil {
		return err
	}

	inventoryID, parseErr := strconv.ParseInt(c.Param("id"), 10, 64)
	if parseErr != nil {
		return writeErrorCode(c, http.StatusBadRequest, usecase.CodeValidation, "invalid id")
	}

	out, ucErr := h.invUC.ListLogs(c.Request().Context(), actorID, role, inventoryID)
	if ucErr != nil {
		return writeError(c, ucErr)
	}
	return writeData(c, http.StatusOK, out)
}

// contextから(user_id, role)。無ければ401を書いてエラーを返す。
func actor(c echo.Context) (int64, model.Role, error) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return 0, "", writeErrorCode(c, http.StatusUnauthorized, usecase.CodeUnauthorized, "unauthorized")
	}
	role, ok := getUserRoleFromContext(c)
	if !ok {
		return 0, "", writeErrorCode(c, http.StatusUnauthorized, usecase.CodeUnauthorized, "unauthorized")
	}
	return userID, role, nil
}

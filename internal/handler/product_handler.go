package handler

import (
	"net/http"
	"strconv"
	"strings"

	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /products の公開API（カタログの読み取りのみ）
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/products", h.list)
	e.GET("/products/:id", h.detail)
}

func (h *ProductHandler) list(c echo.Context) error {
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

	q := repo.ProductListQuery{
		Page:  page,
		Limit: limit,
		Q:     strings.TrimSpace(c.QueryParam("q")),
		Sort:  c.QueryParam("sort"),
	}

	if v := c.QueryParam("merchant_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return writeErrorCode(c, http.StatusBadRequest, usecase.CodeValidation, "invalid merchant_id")
		}
		q.MerchantID = &id
	}
	if v := c.QueryParam("min_price"); v != "" {
		p, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return writeErrorCode(c, http.StatusBadRequest, usecase.CodeValidation, "invalid min_price")
		}
		q.MinPrice = &p
	}
	if v := c.QueryParam("max_price"); v != "" {
		p, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return writeErrorCode(c, http.StatusBadRequest, usecase.CodeValidation, "invalid max_price")
		}
		q.MaxPrice = &p
	}

	out, err := h.uc.ListPublic(c.Request().Context(), q)
	if err != nil {
		return writeError(c, err)
	}
	return writeData(c, http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return writeErrorCode(c, http.StatusBadRequest, usecase.CodeValidation, "invalid id")
	}

	out, ucErr := h.uc.Detail(c.Request().Context(), id)
	if ucErr != nil {
		return writeError(c, ucErr)
	}
	return writeData(c, http.StatusOK, out)
}

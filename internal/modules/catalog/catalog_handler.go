package catalog

import (
	"net/http"
	"strconv"

	"craft-storefront/internal/models"
	"craft-storefront/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for the product catalog.
type Handler struct {
	svc ServiceInterface
}

func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) ListProducts(c echo.Context) error {
	var f models.ProductFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &f); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters")
	}
	if f.Limit > utils.MaxPageLimit {
		f.Limit = utils.MaxPageLimit
	}

	products, pagination, err := h.svc.ListProducts(c.Request().Context(), f)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, models.ProductListResponse{Products: products, Pagination: pagination})
}

func (h *Handler) GetProduct(c echo.Context) error {
	product, err := h.svc.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, models.ProductResponse{Product: product})
}

func (h *Handler) Featured(c echo.Context) error {
	products, err := h.svc.Featured(c.Request().Context(), limitParam(c))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, models.ProductListResponse{Products: products})
}

func (h *Handler) TopRated(c echo.Context) error {
	products, err := h.svc.TopRated(c.Request().Context(), limitParam(c))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, models.ProductListResponse{Products: products})
}

func (h *Handler) Categories(c echo.Context) error {
	categories, err := h.svc.Categories(c.Request().Context())
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, models.CategoriesResponse{Categories: categories})
}

func limitParam(c echo.Context) int {
	n, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || n < 1 {
		return DefaultCollectionLimit
	}
	if n > utils.MaxPageLimit {
		return utils.MaxPageLimit
	}
	return n
}

package order

import (
	"net/http"

	"craft-storefront/internal/models"
	"craft-storefront/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for orders.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new order handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) CreateOrder(c echo.Context) error {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		return utils.RespondWithError(c, http.StatusUnauthorized, err.Error())
	}

	var req models.CreateOrderRequest
	if ok, err := utils.BindAndValidate(c, &req); !ok {
		return err
	}

	order, err := h.svc.CreateOrder(c.Request().Context(), userID, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusCreated, models.OrderResponse{Order: order})
}

func (h *Handler) ListMyOrders(c echo.Context) error {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		return utils.RespondWithError(c, http.StatusUnauthorized, err.Error())
	}

	page, limit := utils.GetPageLimit(c)
	orders, total, err := h.svc.ListUserOrders(c.Request().Context(), userID, page, limit)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, models.OrderListResponse{
		Orders:     orders,
		Pagination: models.NewPagination(page, limit, total),
	})
}

func (h *Handler) GetOrder(c echo.Context) error {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		return utils.RespondWithError(c, http.StatusUnauthorized, err.Error())
	}

	order, err := h.svc.GetOrder(c.Request().Context(), userID, c.Param("orderId"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, models.OrderResponse{Order: order})
}

func (h *Handler) PayOrder(c echo.Context) error {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		return utils.RespondWithError(c, http.StatusUnauthorized, err.Error())
	}

	var req models.PayOrderRequest
	if ok, err := utils.BindAndValidate(c, &req); !ok {
		return err
	}

	order, err := h.svc.PayOrder(c.Request().Context(), userID, c.Param("orderId"), req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, models.OrderResponse{Order: order})
}

func (h *Handler) CancelOrder(c echo.Context) error {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		return utils.RespondWithError(c, http.StatusUnauthorized, err.Error())
	}

	order, err := h.svc.CancelOrder(c.Request().Context(), userID, c.Param("orderId"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, models.OrderResponse{Order: order})
}

func (h *Handler) Invoice(c echo.Context) error {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		return utils.RespondWithError(c, http.StatusUnauthorized, err.Error())
	}

	invoice, err := h.svc.Invoice(c.Request().Context(), userID, c.Param("orderId"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, models.InvoiceResponse{Invoice: invoice})
}

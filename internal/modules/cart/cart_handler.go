package cart

import (
	"net/http"

	"craft-storefront/internal/models"
	"craft-storefront/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for the signed-in user's cart.
type Handler struct {
	svc ServiceInterface
}

func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) GetCart(c echo.Context) error {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		return utils.RespondWithError(c, http.StatusUnauthorized, err.Error())
	}
	cart, err := h.svc.GetCart(c.Request().Context(), userID)
	return respond(c, cart, err)
}

func (h *Handler) AddItem(c echo.Context) error {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		return utils.RespondWithError(c, http.StatusUnauthorized, err.Error())
	}
	var req models.AddToCartRequest
	if ok, err := utils.BindAndValidate(c, &req); !ok {
		return err
	}
	cart, err := h.svc.AddItem(c.Request().Context(), userID, req)
	return respond(c, cart, err)
}

func (h *Handler) UpdateItem(c echo.Context) error {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		return utils.RespondWithError(c, http.StatusUnauthorized, err.Error())
	}
	var req models.UpdateCartItemRequest
	if ok, err := utils.BindAndValidate(c, &req); !ok {
		return err
	}
	cart, err := h.svc.UpdateItem(c.Request().Context(), userID, c.Param("itemId"), req.Quantity)
	return respond(c, cart, err)
}

func (h *Handler) RemoveItem(c echo.Context) error {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		return utils.RespondWithError(c, http.StatusUnauthorized, err.Error())
	}
	cart, err := h.svc.RemoveItem(c.Request().Context(), userID, c.Param("itemId"))
	return respond(c, cart, err)
}

func (h *Handler) Clear(c echo.Context) error {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		return utils.RespondWithError(c, http.StatusUnauthorized, err.Error())
	}
	cart, err := h.svc.Clear(c.Request().Context(), userID)
	return respond(c, cart, err)
}

func (h *Handler) Count(c echo.Context) error {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		return utils.RespondWithError(c, http.StatusUnauthorized, err.Error())
	}
	count, err := h.svc.Count(c.Request().Context(), userID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, models.CartCountResponse{Count: count})
}

func respond(c echo.Context, cart *models.Cart, err error) error {
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, models.CartResponse{Cart: *cart})
}

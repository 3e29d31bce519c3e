package user

import (
	"net/http"
	"time"

	"craft-storefront/internal/models"
	"craft-storefront/pkg/utils"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	service ServiceInterface
}

// NewHandler creates a new user handler.
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if ok, err := utils.BindAndValidate(c, &req); !ok {
		return err
	}

	authResponse, err := h.service.Register(c.Request().Context(), req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusCreated, authResponse)
}

func (h *Handler) Login(c echo.Context) error {
	var req models.LoginRequest
	if ok, err := utils.BindAndValidate(c, &req); !ok {
		return err
	}

	authResponse, err := h.service.Login(c.Request().Context(), req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, authResponse)
}

// Logout revokes the bearer token the request was made with.
func (h *Handler) Logout(c echo.Context) error {
	tokenID, _ := c.Get("tokenID").(string)
	expiresAt, _ := c.Get("tokenExpiresAt").(time.Time)

	if err := h.service.Logout(c.Request().Context(), tokenID, expiresAt); err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, models.MessageResponse{Message: "Logged out successfully"})
}

// --- User Profile Routes ---
func (h *Handler) Me(c echo.Context) error {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		return utils.RespondWithError(c, http.StatusUnauthorized, err.Error())
	}

	user, err := h.service.GetUserProfile(c.Request().Context(), userID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, models.UserResponse{User: user})
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		return utils.RespondWithError(c, http.StatusUnauthorized, err.Error())
	}

	var req models.ProfileUpdateRequest
	if ok, err := utils.BindAndValidate(c, &req); !ok {
		return err
	}

	user, err := h.service.UpdateUserProfile(c.Request().Context(), userID, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, models.UserResponse{User: user})
}

func (h *Handler) ChangePassword(c echo.Context) error {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		return utils.RespondWithError(c, http.StatusUnauthorized, err.Error())
	}

	var req models.ChangePasswordRequest
	if ok, err := utils.BindAndValidate(c, &req); !ok {
		return err
	}

	if err := h.service.ChangePassword(c.Request().Context(), userID, req); err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, models.MessageResponse{Message: "Password updated successfully"})
}

// --- User Address Routes ---
// Every address route answers with the full, authoritative address list.

func (h *Handler) AddAddress(c echo.Context) error {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		return utils.RespondWithError(c, http.StatusUnauthorized, err.Error())
	}

	var req models.AddressRequest
	if ok, err := utils.BindAndValidate(c, &req); !ok {
		return err
	}

	addresses, err := h.service.AddAddress(c.Request().Context(), userID, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusCreated, models.AddressesResponse{Addresses: addresses})
}

func (h *Handler) UpdateAddress(c echo.Context) error {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		return utils.RespondWithError(c, http.StatusUnauthorized, err.Error())
	}

	var req models.AddressRequest
	if ok, err := utils.BindAndValidate(c, &req); !ok {
		return err
	}

	addresses, err := h.service.UpdateAddress(c.Request().Context(), userID, c.Param("addressId"), req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, models.AddressesResponse{Addresses: addresses})
}

func (h *Handler) DeleteAddress(c echo.Context) error {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		return utils.RespondWithError(c, http.StatusUnauthorized, err.Error())
	}

	addresses, err := h.service.DeleteAddress(c.Request().Context(), userID, c.Param("addressId"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, models.AddressesResponse{Addresses: addresses})
}

func (h *Handler) SetDefaultAddress(c echo.Context) error {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		return utils.RespondWithError(c, http.StatusUnauthorized, err.Error())
	}

	addresses, err := h.service.SetDefaultAddress(c.Request().Context(), userID, c.Param("addressId"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, models.AddressesResponse{Addresses: addresses})
}

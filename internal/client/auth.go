package client

import (
	"context"
	"net/http"

	"craft-storefront/internal/models"
)

// AuthAPI covers /auth.
type AuthAPI struct{ c *Client }

func (a *AuthAPI) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := a.c.do(ctx, "auth", http.MethodPost, "/auth/register", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AuthAPI) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := a.c.do(ctx, "auth", http.MethodPost, "/auth/login", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AuthAPI) Logout(ctx context.Context) error {
	return a.c.do(ctx, "auth", http.MethodPost, "/auth/logout", nil, nil, nil)
}

func (a *AuthAPI) Me(ctx context.Context) (*models.User, error) {
	var out models.UserResponse
	if err := a.c.do(ctx, "auth", http.MethodGet, "/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (a *AuthAPI) UpdateProfile(ctx context.Context, req models.ProfileUpdateRequest) (*models.User, error) {
	var out models.UserResponse
	if err := a.c.do(ctx, "auth", http.MethodPut, "/auth/profile", nil, req, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (a *AuthAPI) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	return a.c.do(ctx, "auth", http.MethodPut, "/auth/password", nil, req, nil)
}

// The address endpoints all answer with the user's complete address list.

func (a *AuthAPI) AddAddress(ctx context.Context, req models.AddressRequest) ([]models.Address, error) {
	return a.addresses(ctx, http.MethodPost, "/auth/addresses", req)
}

func (a *AuthAPI) UpdateAddress(ctx context.Context, id string, req models.AddressRequest) ([]models.Address, error) {
	return a.addresses(ctx, http.MethodPut, "/auth/addresses/"+escape(id), req)
}

func (a *AuthAPI) DeleteAddress(ctx context.Context, id string) ([]models.Address, error) {
	return a.addresses(ctx, http.MethodDelete, "/auth/addresses/"+escape(id), nil)
}

func (a *AuthAPI) SetDefaultAddress(ctx context.Context, id string) ([]models.Address, error) {
	return a.addresses(ctx, http.MethodPut, "/auth/addresses/"+escape(id)+"/default", nil)
}

func (a *AuthAPI) addresses(ctx context.Context, method, path string, in any) ([]models.Address, error) {
	var out models.AddressesResponse
	if err := a.c.do(ctx, "auth", method, path, nil, in, &out); err != nil {
		return nil, err
	}
	if out.Addresses == nil {
		out.Addresses = []models.Address{}
	}
	return out.Addresses, nil
}

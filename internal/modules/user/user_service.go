package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"craft-storefront/internal/models"
	emailSvc "craft-storefront/pkg/email"
	"craft-storefront/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTokenTTL is how long an issued access token stays valid.
const DefaultTokenTTL = 30 * 24 * time.Hour

// ServiceInterface defines methods for user business logic.
type ServiceInterface interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)

	GetUserProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, userID string, req models.ProfileUpdateRequest) (*models.User, error)
	ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest) error

	AddAddress(ctx context.Context, userID string, req models.AddressRequest) ([]models.Address, error)
	UpdateAddress(ctx context.Context, userID, addressID string, req models.AddressRequest) ([]models.Address, error)
	DeleteAddress(ctx context.Context, userID, addressID string) ([]models.Address, error)
	SetDefaultAddress(ctx context.Context, userID, addressID string) ([]models.Address, error)
}

type Service struct {
	userRepo        RepositoryInterface
	emailer         emailSvc.ServiceInterface
	templateManager *emailSvc.TemplateManager
	jwtSecret       string
	clientOrigin    string
	tokenTTL        time.Duration
	log             *logrus.Entry
}

func NewService(
	userRepo RepositoryInterface,
	emailer emailSvc.ServiceInterface,
	tm *emailSvc.TemplateManager,
	jwtSecret string,
	clientOrigin string,
	tokenTTL time.Duration,
) ServiceInterface {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &Service{
		userRepo:        userRepo,
		emailer:         emailer,
		templateManager: tm,
		jwtSecret:       jwtSecret,
		clientOrigin:    clientOrigin,
		tokenTTL:        tokenTTL,
		log:             logrus.WithField("module", "user"),
	}
}

func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	// 1. Check if user with that email already exists
	_, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("service.Register.FindByEmail: %w", err)
	}
	if err == nil {
		return nil, models.ErrConflict
	}

	// 2. Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("service.Register.HashPassword: %w", err)
	}

	// 3. Create the user
	now := time.Now().UTC()
	createdUser, err := s.userRepo.Create(ctx, &models.User{
		ID:           utils.NewID(),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		Phone:        req.Phone,
		PasswordHash: string(hashedPassword),
		Addresses:    []models.Address{},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("service.Register.Create: %w", err)
	}

	// 4. Welcome email, off the request path
	s.sendWelcome(createdUser)

	return s.generateAuthResponse(createdUser)
}

func (s *Service) sendWelcome(user *models.User) {
	if s.emailer == nil || s.templateManager == nil {
		return
	}
	htmlContent, err := s.templateManager.GenerateWelcomeEmailHTML(emailSvc.TemplateData{
		Name: user.Name,
		Link: s.clientOrigin + "/products",
	})
	if err != nil {
		s.log.WithError(err).Error("failed to render welcome email")
		return
	}
	plainText := fmt.Sprintf("Welcome, %s! Browse the collection at %s/products", user.Name, s.clientOrigin)

	go func() {
		if err := s.emailer.SendEmail(context.Background(), user.Email, "Welcome to the store", plainText, htmlContent); err != nil {
			s.log.WithError(err).WithField("to", user.Email).Warn("failed to send welcome email")
		}
	}()
}

// generateAuthResponse issues a signed access token for user.
func (s *Service) generateAuthResponse(user *models.User) (*models.AuthResponse, error) {
	tokenID, err := utils.GenerateSecureToken(16)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token id: %w", err)
	}
	claims := models.NewAccessClaims(user.ID, user.Email, tokenID, time.Now(), s.tokenTTL)

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := accessToken.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	user.PasswordHash = ""
	return &models.AuthResponse{Token: signed, User: user}, nil
}

func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	userWithHash, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("service.Login.FindByEmail: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userWithHash.PasswordHash), []byte(req.Password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	return s.generateAuthResponse(userWithHash)
}

// Logout revokes the token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return nil
	}
	if err := s.userRepo.RevokeToken(ctx, tokenID, expiresAt); err != nil {
		return fmt.Errorf("service.Logout: %w", err)
	}
	return nil
}

func (s *Service) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	return s.userRepo.IsTokenRevoked(ctx, tokenID)
}

func (s *Service) GetUserProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.GetUserProfile: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *Service) UpdateUserProfile(ctx context.Context, userID string, req models.ProfileUpdateRequest) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.UpdateUserProfile: %w", err)
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		user.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	user.UpdatedAt = time.Now().UTC()

	updated, err := s.userRepo.Update(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("service.UpdateUserProfile: %w", err)
	}
	updated.PasswordHash = ""
	return updated, nil
}

// ChangePassword reports a wrong current password as a field error, never as a
// credentials failure: the caller is already signed in.
func (s *Service) ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("service.ChangePassword: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return &models.ValidationError{Fields: []models.FieldError{
			{Field: "currentPassword", Message: "is incorrect"},
		}}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("service.ChangePassword.HashPassword: %w", err)
	}
	user.PasswordHash = string(hashed)
	user.UpdatedAt = time.Now().UTC()
	if _, err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("service.ChangePassword: %w", err)
	}
	return nil
}

// AddAddress appends an address. The first address always becomes the default.
func (s *Service) AddAddress(ctx context.Context, userID string, req models.AddressRequest) ([]models.Address, error) {
	return s.editAddresses(ctx, userID, func(u *models.User) error {
		addr := addressFromRequest(utils.NewID(), req)
		if len(u.Addresses) == 0 {
			addr.IsDefault = true
		}
		if addr.IsDefault {
			clearDefault(u.Addresses)
		}
		u.Addresses = append(u.Addresses, addr)
		return nil
	})
}

// UpdateAddress replaces an address. isDefault=true moves the default to it;
// false never removes the default flag from the current default.
func (s *Service) UpdateAddress(ctx context.Context, userID, addressID string, req models.AddressRequest) ([]models.Address, error) {
	return s.editAddresses(ctx, userID, func(u *models.User) error {
		i := findAddress(u.Addresses, addressID)
		if i < 0 {
			return models.ErrNotFound
		}
		updated := addressFromRequest(addressID, req)
		if updated.IsDefault {
			clearDefault(u.Addresses)
		} else {
			updated.IsDefault = u.Addresses[i].IsDefault
		}
		u.Addresses[i] = updated
		return nil
	})
}

// DeleteAddress removes an address. Deleting the default promotes the first remaining one.
func (s *Service) DeleteAddress(ctx context.Context, userID, addressID string) ([]models.Address, error) {
	return s.editAddresses(ctx, userID, func(u *models.User) error {
		i := findAddress(u.Addresses, addressID)
		if i < 0 {
			return models.ErrNotFound
		}
		wasDefault := u.Addresses[i].IsDefault
		u.Addresses = append(u.Addresses[:i], u.Addresses[i+1:]...)
		if wasDefault && len(u.Addresses) > 0 {
			u.Addresses[0].IsDefault = true
		}
		return nil
	})
}

func (s *Service) SetDefaultAddress(ctx context.Context, userID, addressID string) ([]models.Address, error) {
	return s.editAddresses(ctx, userID, func(u *models.User) error {
		i := findAddress(u.Addresses, addressID)
		if i < 0 {
			return models.ErrNotFound
		}
		clearDefault(u.Addresses)
		u.Addresses[i].IsDefault = true
		return nil
	})
}

// editAddresses loads the user, applies edit and returns the full address list.
func (s *Service) editAddresses(ctx context.Context, userID string, edit func(*models.User) error) ([]models.Address, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.editAddresses: %w", err)
	}
	if err := edit(user); err != nil {
		return nil, err
	}
	user.UpdatedAt = time.Now().UTC()
	updated, err := s.userRepo.Update(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("service.editAddresses: %w", err)
	}
	return updated.Addresses, nil
}

func addressFromRequest(id string, req models.AddressRequest) models.Address {
	return models.Address{
		ID:         id,
		Label:      req.Label,
		FullName:   req.FullName,
		Phone:      req.Phone,
		Street:     req.Street,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		IsDefault:  req.IsDefault,
	}
}

func findAddress(list []models.Address, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func clearDefault(list []models.Address) {
	for i := range list {
		list[i].IsDefault = false
	}
}

package stores

import (
	"context"
	"testing"
	"time"

	"craft-storefront/internal/client"
	"craft-storefront/internal/models"
	"craft-storefront/internal/session"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *models.User {
	return &models.User{
		ID:    "u1",
		Name:  "Meera",
		Email: "meera@example.com",
		Addresses: []models.Address{
			{ID: "a1", Label: "Home", FullName: "Meera", City: "Jaipur", IsDefault: true},
		},
	}
}

func validAddress() models.AddressRequest {
	return models.AddressRequest{
		Label:      "Studio",
		FullName:   "Meera Rao",
		Phone:      "9876543210",
		Street:     "12 Weavers Lane",
		City:       "Jaipur",
		State:      "Rajasthan",
		PostalCode: "302001",
	}
}

// signedInStore returns a store that has completed a successful login.
func signedInStore(t *testing.T, api *fakeAuthAPI) (*AuthStore, session.Storage) {
	t.Helper()
	ctx := context.Background()
	if api.login == nil {
		api.login = func(models.LoginRequest) (*models.AuthResponse, error) {
			return &models.AuthResponse{Token: "tok-1", User: testUser()}, nil
		}
	}
	storage := session.NewMemoryStorage()
	s := NewAuthStore(ctx, api, storage, nil)
	require.NoError(t, s.Login(ctx, models.LoginRequest{Email: "meera@example.com", Password: "secret-pass"}))
	return s, storage
}

func TestInitWithoutTokenMakesNoCall(t *testing.T) {
	api := &fakeAuthAPI{}
	s := NewAuthStore(context.Background(), api, session.NewMemoryStorage(), nil)

	require.NoError(t, s.Init(context.Background()))

	st := s.Snapshot()
	assert.False(t, st.Loading)
	assert.False(t, st.IsAuthenticated)
	assert.Zero(t, api.count("me"))
}

func TestInitRestoresSession(t *testing.T) {
	ctx := context.Background()
	storage := session.NewMemoryStorage()
	require.NoError(t, session.Save(ctx, storage, "opaque-token", &models.User{ID: "u1", Name: "Stale"}))

	api := &fakeAuthAPI{me: func() (*models.User, error) { return testUser(), nil }}
	s := NewAuthStore(ctx, api, storage, nil)

	st := s.Snapshot()
	assert.True(t, st.Loading, "a persisted token starts the store in loading")
	require.NotNil(t, st.CachedUser)
	assert.Equal(t, "Stale", st.CachedUser.Name)
	assert.False(t, st.IsAuthenticated)

	require.NoError(t, s.Init(ctx))

	st = s.Snapshot()
	assert.True(t, st.IsAuthenticated)
	assert.False(t, st.Loading)
	assert.Equal(t, "Meera", st.User.Name)
	assert.Nil(t, st.CachedUser)

	cached, err := session.CachedUser(ctx, storage)
	require.NoError(t, err)
	assert.Equal(t, "Meera", cached.Name)
}

func TestInitWithExpiredTokenDowngradesSilently(t *testing.T) {
	ctx := context.Background()
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	storage := session.NewMemoryStorage()
	require.NoError(t, session.Save(ctx, storage, expired, testUser()))

	api := &fakeAuthAPI{}
	s := NewAuthStore(ctx, api, storage, nil)
	require.NoError(t, s.Init(ctx))

	st := s.Snapshot()
	assert.False(t, st.IsAuthenticated)
	assert.Empty(t, st.Token)
	assert.Nil(t, st.User)
	assert.Empty(t, st.Error)
	assert.False(t, st.Loading)
	assert.Zero(t, api.count("me"), "an expired token is rejected without a call")
	assert.Empty(t, session.Token(ctx, storage))
}

func TestInitWithRejectedTokenDowngradesSilently(t *testing.T) {
	ctx := context.Background()
	storage := session.NewMemoryStorage()
	require.NoError(t, session.Save(ctx, storage, "revoked", testUser()))

	api := &fakeAuthAPI{me: func() (*models.User, error) {
		return nil, &client.APIError{Kind: client.KindUnauthorized, Status: 401, Message: "Token is not valid"}
	}}
	s := NewAuthStore(ctx, api, storage, nil)
	require.NoError(t, s.Init(ctx))

	st := s.Snapshot()
	assert.False(t, st.IsAuthenticated)
	assert.Empty(t, st.Token)
	assert.Empty(t, st.Error)
	assert.Equal(t, 1, api.count("me"))

	_, err := session.CachedUser(ctx, storage)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestLoginSuccessPersistsSession(t *testing.T) {
	s, storage := signedInStore(t, &fakeAuthAPI{})

	st := s.Snapshot()
	assert.True(t, st.IsAuthenticated)
	assert.Equal(t, "tok-1", st.Token)
	assert.Equal(t, StatusSucceeded, st.LoginStatus)
	assert.Empty(t, st.Error)
	assert.Equal(t, "tok-1", session.Token(context.Background(), storage))
}

func TestLoginWithWrongPassword(t *testing.T) {
	ctx := context.Background()
	api := &fakeAuthAPI{login: func(models.LoginRequest) (*models.AuthResponse, error) {
		return nil, &client.APIError{Kind: client.KindUnauthorized, Status: 401, Message: "Invalid email or password"}
	}}
	storage := session.NewMemoryStorage()
	s := NewAuthStore(ctx, api, storage, nil)

	err := s.Login(ctx, models.LoginRequest{Email: "meera@example.com", Password: "wrong"})
	require.Error(t, err)

	st := s.Snapshot()
	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.User)
	assert.Empty(t, st.Token)
	assert.Equal(t, "Invalid email or password", st.Error)
	assert.Equal(t, StatusFailed, st.LoginStatus)
	assert.Empty(t, session.Token(ctx, storage))
}

func TestLoginFailureWithoutMessageUsesFallback(t *testing.T) {
	ctx := context.Background()
	api := &fakeAuthAPI{login: func(models.LoginRequest) (*models.AuthResponse, error) {
		return nil, &client.APIError{Kind: client.KindNetwork, Message: client.MsgNetwork}
	}}
	s := NewAuthStore(ctx, api, session.NewMemoryStorage(), nil)

	require.Error(t, s.Login(ctx, models.LoginRequest{Email: "meera@example.com", Password: "pw"}))
	assert.Equal(t, client.MsgNetwork, s.Snapshot().Error)
}

func TestRegisterValidatesBeforeCalling(t *testing.T) {
	ctx := context.Background()
	api := &fakeAuthAPI{}
	s := NewAuthStore(ctx, api, session.NewMemoryStorage(), nil)

	err := s.Register(ctx, models.RegisterRequest{Name: "M", Email: "not-an-email", Password: "short"})
	require.Error(t, err)

	st := s.Snapshot()
	assert.Equal(t, StatusFailed, st.RegisterStatus)
	assert.Zero(t, api.count("register"))

	fields := map[string]bool{}
	for _, fe := range st.FieldErrors {
		fields[fe.Field] = true
	}
	assert.True(t, fields["email"])
	assert.True(t, fields["password"])
	assert.True(t, fields["name"])
}

func TestLogoutSignsOutEvenWhenRemoteFails(t *testing.T) {
	api := &fakeAuthAPI{logoutErr: errBoom}
	s, storage := signedInStore(t, api)

	notified := 0
	s.OnLogout(func() { notified++ })

	require.NoError(t, s.Logout(context.Background()))

	st := s.Snapshot()
	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.User)
	assert.Empty(t, st.Token)
	assert.Equal(t, 1, api.count("logout"))
	assert.Equal(t, 1, notified)

	ctx := context.Background()
	assert.Empty(t, session.Token(ctx, storage))
	_, err := session.CachedUser(ctx, storage)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestHandleUnauthorizedSignsOutWithoutError(t *testing.T) {
	s, _ := signedInStore(t, &fakeAuthAPI{})
	notified := false
	s.OnLogout(func() { notified = true })

	s.HandleUnauthorized()

	st := s.Snapshot()
	assert.False(t, st.IsAuthenticated)
	assert.Empty(t, st.Error)
	assert.True(t, notified)
}

func TestAddressFailureLeavesStateUnchanged(t *testing.T) {
	for _, op := range []string{"add", "update", "delete", "default"} {
		t.Run(op, func(t *testing.T) {
			api := &fakeAuthAPI{addresses: func(string) ([]models.Address, error) {
				return nil, businessErr("Address not found")
			}}
			s, _ := signedInStore(t, api)
			before := s.Snapshot()

			ctx := context.Background()
			var err error
			switch op {
			case "add":
				err = s.AddAddress(ctx, validAddress())
			case "update":
				err = s.UpdateAddress(ctx, "a1", validAddress())
			case "delete":
				err = s.DeleteAddress(ctx, "a1")
			case "default":
				err = s.SetDefaultAddress(ctx, "a1")
			}
			require.Error(t, err)

			after := s.Snapshot()
			assert.Equal(t, "Address not found", after.Error)
			after.Error = ""
			assert.Equal(t, before, after)
		})
	}
}

func TestAddressSuccessReplacesListWholesale(t *testing.T) {
	server := []models.Address{
		{ID: "a2", Label: "Studio", IsDefault: true},
		{ID: "a1", Label: "Home"},
	}
	api := &fakeAuthAPI{addresses: func(string) ([]models.Address, error) { return server, nil }}
	s, storage := signedInStore(t, api)

	require.NoError(t, s.SetDefaultAddress(context.Background(), "a2"))

	st := s.Snapshot()
	assert.Equal(t, server, st.User.Addresses)

	cached, err := session.CachedUser(context.Background(), storage)
	require.NoError(t, err)
	assert.Equal(t, server, cached.Addresses)
}

func TestAddressValidationErrorsAreSurfaced(t *testing.T) {
	api := &fakeAuthAPI{}
	s, _ := signedInStore(t, api)

	req := validAddress()
	req.PostalCode = ""
	require.Error(t, s.AddAddress(context.Background(), req))

	st := s.Snapshot()
	require.Len(t, st.FieldErrors, 1)
	assert.Equal(t, "postalCode", st.FieldErrors[0].Field)
	assert.Zero(t, api.count("add_address"))
}

func TestProfileOpsRequireSession(t *testing.T) {
	ctx := context.Background()
	api := &fakeAuthAPI{}
	s := NewAuthStore(ctx, api, session.NewMemoryStorage(), nil)

	name := "New Name"
	err := s.UpdateProfile(ctx, models.ProfileUpdateRequest{Name: &name})
	assert.ErrorIs(t, err, models.ErrNotAuthenticated)
	assert.Zero(t, api.count("update_profile"))
}

func TestUpdateProfileReplacesUser(t *testing.T) {
	api := &fakeAuthAPI{updateProfile: func(req models.ProfileUpdateRequest) (*models.User, error) {
		u := testUser()
		u.Name = *req.Name
		return u, nil
	}}
	s, _ := signedInStore(t, api)

	name := "Meera Rao"
	require.NoError(t, s.UpdateProfile(context.Background(), models.ProfileUpdateRequest{Name: &name}))
	assert.Equal(t, "Meera Rao", s.Snapshot().User.Name)
}

func TestChangePasswordServerErrorSetsSlot(t *testing.T) {
	api := &fakeAuthAPI{changePassword: func(models.ChangePasswordRequest) error {
		return &client.APIError{
			Kind:    client.KindValidation,
			Status:  400,
			Message: "Validation failed",
			Fields:  []models.FieldError{{Field: "currentPassword", Message: "Current password is incorrect"}},
		}
	}}
	s, _ := signedInStore(t, api)

	err := s.ChangePassword(context.Background(), models.ChangePasswordRequest{CurrentPassword: "old-pass-1", NewPassword: "new-pass-2"})
	require.Error(t, err)

	st := s.Snapshot()
	assert.Equal(t, "Validation failed", st.Error)
	assert.Equal(t, []models.FieldError{{Field: "currentPassword", Message: "Current password is incorrect"}}, st.FieldErrors)

	s.ClearError()
	assert.Empty(t, s.Snapshot().Error)
	assert.Empty(t, s.Snapshot().FieldErrors)
}

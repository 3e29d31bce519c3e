package user

import (
	"context"
	"sync"
	"testing"
	"time"

	"craft-storefront/internal/models"
	emailSvc "craft-storefront/pkg/email"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "user-secret"

type recordingEmailer struct {
	mu   sync.Mutex
	sent []string
}

func (r *recordingEmailer) SendEmail(_ context.Context, to, subject, _, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, to+"|"+subject)
	return nil
}

func (r *recordingEmailer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func newTestService(t *testing.T) (ServiceInterface, *recordingEmailer) {
	t.Helper()
	tm, err := emailSvc.NewTemplateManager()
	require.NoError(t, err)
	mailer := &recordingEmailer{}
	return NewService(NewRepository(), mailer, tm, testSecret, "http://localhost:5173", time.Hour), mailer
}

func registerUser(t *testing.T, svc ServiceInterface) *models.AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Name: " Asha Rao ", Email: "asha@example.com", Password: "handloom123",
	})
	require.NoError(t, err)
	return resp
}

var home = models.AddressRequest{
	Label: "Home", FullName: "Asha Rao", Phone: "9876543210", Street: "12 MG Road",
	City: "Bengaluru", State: "KA", PostalCode: "560001",
}

func TestRegisterIssuesToken(t *testing.T) {
	svc, mailer := newTestService(t)
	resp := registerUser(t, svc)

	assert.Equal(t, "Asha Rao", resp.User.Name)
	assert.Empty(t, resp.User.PasswordHash)

	claims := &models.JwtCustomClaims{}
	_, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (any, error) { return []byte(testSecret), nil })
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Len(t, claims.ID, 32, "token id is 16 random bytes, hex encoded")
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)

	assert.Eventually(t, func() bool { return mailer.count() == 1 }, time.Second, 5*time.Millisecond)

	_, err = svc.Register(context.Background(), models.RegisterRequest{Name: "Other", Email: "ASHA@example.com", Password: "handloom123"})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	registerUser(t, svc)
	ctx := context.Background()

	_, err := svc.Login(ctx, models.LoginRequest{Email: "asha@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	_, err = svc.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "handloom123"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	resp, err := svc.Login(ctx, models.LoginRequest{Email: "asha@example.com", Password: "handloom123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	revoked, err := svc.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, svc.Logout(ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err = svc.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t)
	resp := registerUser(t, svc)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, resp.User.ID, models.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "newpassword1"})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "currentPassword", verr.Fields[0].Field)

	require.NoError(t, svc.ChangePassword(ctx, resp.User.ID, models.ChangePasswordRequest{CurrentPassword: "handloom123", NewPassword: "newpassword1"}))
	_, err = svc.Login(ctx, models.LoginRequest{Email: "asha@example.com", Password: "newpassword1"})
	assert.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestService(t)
	resp := registerUser(t, svc)
	other, err := svc.Register(context.Background(), models.RegisterRequest{Name: "Ravi", Email: "ravi@example.com", Password: "handloom123"})
	require.NoError(t, err)

	name := "Asha R."
	updated, err := svc.UpdateUserProfile(context.Background(), resp.User.ID, models.ProfileUpdateRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Asha R.", updated.Name)
	assert.Equal(t, "asha@example.com", updated.Email)

	taken := "asha@example.com"
	_, err = svc.UpdateUserProfile(context.Background(), other.User.ID, models.ProfileUpdateRequest{Email: &taken})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestAddressDefaults(t *testing.T) {
	svc, _ := newTestService(t)
	userID := registerUser(t, svc).User.ID
	ctx := context.Background()

	addrs, err := svc.AddAddress(ctx, userID, home)
	require.NoError(t, err)
	require.Len(t, addrs, 1)
	assert.True(t, addrs[0].IsDefault, "the first address is the default")

	work := home
	work.Label = "Work"
	addrs, err = svc.AddAddress(ctx, userID, work)
	require.NoError(t, err)
	assert.True(t, addrs[0].IsDefault)
	assert.False(t, addrs[1].IsDefault)

	// Updating the default without the flag keeps it the default.
	homeEdit := home
	homeEdit.Street = "14 MG Road"
	addrs, err = svc.UpdateAddress(ctx, userID, addrs[0].ID, homeEdit)
	require.NoError(t, err)
	assert.True(t, addrs[0].IsDefault)
	assert.Equal(t, "14 MG Road", addrs[0].Street)

	workEdit := work
	workEdit.IsDefault = true
	addrs, err = svc.UpdateAddress(ctx, userID, addrs[1].ID, workEdit)
	require.NoError(t, err)
	assert.False(t, addrs[0].IsDefault)
	assert.True(t, addrs[1].IsDefault)

	addrs, err = svc.SetDefaultAddress(ctx, userID, addrs[0].ID)
	require.NoError(t, err)
	assert.True(t, addrs[0].IsDefault)
	assert.False(t, addrs[1].IsDefault)

	addrs, err = svc.DeleteAddress(ctx, userID, addrs[0].ID)
	require.NoError(t, err)
	require.Len(t, addrs, 1)
	assert.True(t, addrs[0].IsDefault, "the remaining address is promoted")

	_, err = svc.DeleteAddress(ctx, userID, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

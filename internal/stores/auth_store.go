package stores

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"craft-storefront/internal/client"
	"craft-storefront/internal/models"
	"craft-storefront/internal/session"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// AuthState is the session as seen by the view.
type AuthState struct {
	User            *models.User
	Token           string
	IsAuthenticated bool
	// CachedUser is the persisted user shown while the session is being verified.
	CachedUser *models.User

	Loading        bool
	Error          string
	FieldErrors    []models.FieldError
	LoginStatus    Status
	RegisterStatus Status
}

func (s AuthState) clone() AuthState {
	s.User = s.User.Clone()
	s.CachedUser = s.CachedUser.Clone()
	s.FieldErrors = append([]models.FieldError(nil), s.FieldErrors...)
	return s
}

// AuthStore owns the session, the profile and the address book.
type AuthStore struct {
	api     AuthAPI
	storage session.Storage
	log     *logrus.Entry
	now     func() time.Time

	// opMu serializes mutations so responses apply in issue order.
	opMu sync.Mutex

	mu        sync.RWMutex
	state     AuthState
	listeners []func()
}

// NewAuthStore builds the store. When a token is persisted the store starts in
// the loading state until Init has verified it.
func NewAuthStore(ctx context.Context, api AuthAPI, storage session.Storage, logger *logrus.Entry) *AuthStore {
	s := &AuthStore{
		api:     api,
		storage: storage,
		log:     componentLogger(logger, "auth_store"),
		now:     time.Now,
		state:   AuthState{LoginStatus: StatusIdle, RegisterStatus: StatusIdle},
	}
	if tok := session.Token(ctx, storage); tok != "" {
		s.state.Token = tok
		s.state.Loading = true
		if cached, err := session.CachedUser(ctx, storage); err == nil {
			s.state.CachedUser = cached
		}
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *AuthStore) Snapshot() AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// OnLogout registers fn to run after every logout, explicit or forced by a 401.
func (s *AuthStore) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *AuthStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = ""
	s.state.FieldErrors = nil
}

// Init verifies a persisted token against /auth/me. Any failure downgrades the
// session to logged out without surfacing an error.
func (s *AuthStore) Init(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	tok := session.Token(ctx, s.storage)
	if tok == "" {
		s.mu.Lock()
		s.state.Loading = false
		s.state.Token = ""
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	s.state.Token = tok
	s.state.Loading = true
	s.mu.Unlock()

	if s.tokenExpired(tok) {
		s.log.Info("persisted token has expired, starting signed out")
		s.downgrade(ctx)
		return nil
	}

	user, err := s.api.Me(ctx)
	if err != nil || user == nil {
		s.log.WithError(err).Info("could not restore session, starting signed out")
		s.downgrade(ctx)
		return nil
	}

	if err := session.SaveUser(ctx, s.storage, user); err != nil {
		s.log.WithError(err).Warn("failed to refresh cached user")
	}

	s.mu.Lock()
	s.state.User = user.Clone()
	s.state.CachedUser = nil
	s.state.IsAuthenticated = true
	s.state.Loading = false
	s.mu.Unlock()
	return nil
}

// tokenExpired reads the exp claim without verifying the signature. Tokens that
// are not JWTs are left for the server to judge.
func (s *AuthStore) tokenExpired(tok string) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(s.now())
}

func (s *AuthStore) downgrade(ctx context.Context) {
	if err := session.Clear(ctx, s.storage); err != nil {
		s.log.WithError(err).Warn("failed to clear persisted session")
	}
	s.mu.Lock()
	s.state.User = nil
	s.state.CachedUser = nil
	s.state.Token = ""
	s.state.IsAuthenticated = false
	s.state.Loading = false
	s.mu.Unlock()
}

func (s *AuthStore) Login(ctx context.Context, req models.LoginRequest) error {
	return s.authenticate(ctx, &s.state.LoginStatus, req, func() (*models.AuthResponse, error) {
		return s.api.Login(ctx, req)
	})
}

func (s *AuthStore) Register(ctx context.Context, req models.RegisterRequest) error {
	return s.authenticate(ctx, &s.state.RegisterStatus, req, func() (*models.AuthResponse, error) {
		return s.api.Register(ctx, req)
	})
}

// authenticate runs the idle -> pending -> succeeded|failed machine shared by
// login and register. status points into s.state and is only touched under s.mu.
func (s *AuthStore) authenticate(ctx context.Context, status *Status, req any, call func() (*models.AuthResponse, error)) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	*status = StatusPending
	s.state.Loading = true
	s.state.Error = ""
	s.state.FieldErrors = nil
	s.mu.Unlock()

	err := models.Validate(req)
	var resp *models.AuthResponse
	if err == nil {
		resp, err = call()
	}
	if err == nil && (resp == nil || resp.Token == "") {
		err = errors.New("empty authentication response")
	}
	if err == nil {
		if perr := session.Save(ctx, s.storage, resp.Token, resp.User); perr != nil {
			err = fmt.Errorf("could not save session: %w", perr)
		}
	}

	if err != nil {
		if cerr := session.Clear(ctx, s.storage); cerr != nil {
			s.log.WithError(cerr).Warn("failed to clear persisted session")
		}
		// Credential failures are this store's own result, even when they arrive as a 401.
		slot := errorSlot{Message: client.Message(err), Fields: client.FieldErrors(err)}
		s.mu.Lock()
		*status = StatusFailed
		s.state.User = nil
		s.state.CachedUser = nil
		s.state.Token = ""
		s.state.IsAuthenticated = false
		s.state.Loading = false
		s.state.Error = slot.Message
		s.state.FieldErrors = slot.Fields
		s.mu.Unlock()
		s.log.WithError(err).Info("authentication failed")
		return err
	}

	s.mu.Lock()
	*status = StatusSucceeded
	s.state.User = resp.User.Clone()
	s.state.CachedUser = nil
	s.state.Token = resp.Token
	s.state.IsAuthenticated = true
	s.state.Loading = false
	s.mu.Unlock()
	return nil
}

// Logout always ends signed out locally; the remote call is best effort.
func (s *AuthStore) Logout(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.api.Logout(ctx); err != nil {
		s.log.WithError(err).Warn("remote logout failed, clearing local session anyway")
	}
	s.signOut(ctx)
	return nil
}

// HandleUnauthorized is wired to the client's 401 hook. The client has already
// cleared persisted data; this resets in-memory state without an error.
// It must not take opMu: the hook fires while a store operation holds it.
func (s *AuthStore) HandleUnauthorized() {
	s.signOut(context.Background())
}

func (s *AuthStore) signOut(ctx context.Context) {
	if err := session.Clear(context.WithoutCancel(ctx), s.storage); err != nil {
		s.log.WithError(err).Error("failed to clear persisted session")
	}

	s.mu.Lock()
	s.state = AuthState{LoginStatus: StatusIdle, RegisterStatus: StatusIdle}
	listeners := append([]func(){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

func (s *AuthStore) UpdateProfile(ctx context.Context, req models.ProfileUpdateRequest) error {
	return s.mutate(ctx, "update_profile", req, func() error {
		user, err := s.api.UpdateProfile(ctx, req)
		if err != nil {
			return err
		}
		if user == nil {
			return errors.New("empty profile response")
		}
		return s.commit(ctx, func(st *AuthState) { st.User = user.Clone() })
	})
}

func (s *AuthStore) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	return s.mutate(ctx, "change_password", req, func() error {
		return s.api.ChangePassword(ctx, req)
	})
}

func (s *AuthStore) AddAddress(ctx context.Context, req models.AddressRequest) error {
	return s.mutate(ctx, "add_address", req, func() error {
		return s.replaceAddresses(ctx, func() ([]models.Address, error) { return s.api.AddAddress(ctx, req) })
	})
}

func (s *AuthStore) UpdateAddress(ctx context.Context, id string, req models.AddressRequest) error {
	return s.mutate(ctx, "update_address", req, func() error {
		return s.replaceAddresses(ctx, func() ([]models.Address, error) { return s.api.UpdateAddress(ctx, id, req) })
	})
}

func (s *AuthStore) DeleteAddress(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete_address", nil, func() error {
		return s.replaceAddresses(ctx, func() ([]models.Address, error) { return s.api.DeleteAddress(ctx, id) })
	})
}

func (s *AuthStore) SetDefaultAddress(ctx context.Context, id string) error {
	return s.mutate(ctx, "set_default_address", nil, func() error {
		return s.replaceAddresses(ctx, func() ([]models.Address, error) { return s.api.SetDefaultAddress(ctx, id) })
	})
}

// replaceAddresses swaps in the server's address list; nothing is merged.
func (s *AuthStore) replaceAddresses(ctx context.Context, call func() ([]models.Address, error)) error {
	list, err := call()
	if err != nil {
		return err
	}
	return s.commit(ctx, func(st *AuthState) {
		u := st.User.Clone()
		u.Addresses = append([]models.Address{}, list...)
		st.User = u
	})
}

// commit applies a successful mutation and refreshes the persisted user cache.
func (s *AuthStore) commit(ctx context.Context, apply func(*AuthState)) error {
	s.mu.Lock()
	if s.state.User == nil {
		// Signed out while the call was in flight.
		s.mu.Unlock()
		return models.ErrNotAuthenticated
	}
	apply(&s.state)
	user := s.state.User.Clone()
	s.mu.Unlock()

	if err := session.SaveUser(ctx, s.storage, user); err != nil {
		s.log.WithError(err).Warn("failed to refresh cached user")
	}
	return nil
}

// mutate runs a profile or address operation. On failure only the error slot
// changes.
func (s *AuthStore) mutate(ctx context.Context, op string, req any, run func() error) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	authed := s.state.IsAuthenticated && s.state.User != nil
	s.mu.RUnlock()

	err := models.ErrNotAuthenticated
	if authed {
		err = nil
		if req != nil {
			err = models.Validate(req)
		}
	}
	if err == nil {
		s.setLoading(true)
		err = run()
		s.setLoading(false)
	}

	if err != nil {
		s.log.WithError(err).WithField("op", op).Info("auth store operation failed")
		if slot, ok := slotFor(err); ok {
			s.mu.Lock()
			s.state.Error = slot.Message
			s.state.FieldErrors = slot.Fields
			s.mu.Unlock()
		}
		return err
	}

	s.mu.Lock()
	s.state.Error = ""
	s.state.FieldErrors = nil
	s.mu.Unlock()
	return nil
}

func (s *AuthStore) setLoading(v bool) {
	s.mu.Lock()
	s.state.Loading = v
	s.mu.Unlock()
}

package session

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/logiops360/logiops-cli/internal/model"
	"github.com/logiops360/logiops-cli/pkg/logiops"
)

var (
	// ErrMissingFields is returned when a required form field is empty.
	ErrMissingFields = eris.New("session: all fields are required")
	// ErrNoSession is returned when nobody is signed in.
	ErrNoSession = eris.New("session: not signed in")
)

// User is the profile persisted under KeyUser.
type User struct {
	ID         string        `json:"id"`
	Nom        string        `json:"nom"`
	Email      string        `json:"email"`
	TypeProfil model.Profile `json:"type_profil"`
}

// Session is the signed-in state.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Manager signs users in and out and persists the result.
type Manager struct {
	store  Store
	client logiops.Client
}

// NewManager creates a Manager.
func NewManager(store Store, client logiops.Client) *Manager {
	return &Manager{store: store, client: client}
}

// Login validates the form, authenticates, and persists the session.
func (m *Manager) Login(ctx context.Context, c logiops.Credentials) (*Session, error) {
	c.Email = strings.TrimSpace(c.Email)
	if c.Email == "" || c.Password == "" || strings.TrimSpace(c.TypeProfil) == "" {
		return nil, ErrMissingFields
	}
	p, err := model.ParseProfile(c.TypeProfil)
	if err != nil {
		return nil, err
	}
	c.TypeProfil = string(p)

	res, err := m.client.Login(ctx, c)
	if err != nil {
		return nil, eris.Wrap(err, "session: login")
	}
	return m.persist(ctx, res)
}

// Signup validates the form, creates the account, and persists the session.
func (m *Manager) Signup(ctx context.Context, r logiops.SignupRequest) (*Session, error) {
	r.Email = strings.TrimSpace(r.Email)
	r.Nom = strings.TrimSpace(r.Nom)
	if r.Email == "" || r.Password == "" || r.Nom == "" || strings.TrimSpace(r.TypeProfil) == "" {
		return nil, ErrMissingFields
	}
	p, err := model.ParseProfile(r.TypeProfil)
	if err != nil {
		return nil, err
	}
	r.TypeProfil = string(p)

	res, err := m.client.Signup(ctx, r)
	if err != nil {
		return nil, eris.Wrap(err, "session: signup")
	}
	return m.persist(ctx, res)
}

func (m *Manager) persist(ctx context.Context, res *logiops.AuthResponse) (*Session, error) {
	s := &Session{
		Token: res.Token,
		User: User{
			ID:         res.ID,
			Nom:        res.Nom,
			Email:      res.Email,
			TypeProfil: model.Profile(res.TypeProfil),
		},
	}
	raw, err := json.Marshal(s.User)
	if err != nil {
		return nil, eris.Wrap(err, "session: marshal user")
	}
	if err := m.store.Set(ctx, KeyToken, s.Token); err != nil {
		return nil, eris.Wrap(err, "session: persist token")
	}
	if err := m.store.Set(ctx, KeyUser, string(raw)); err != nil {
		return nil, eris.Wrap(err, "session: persist user")
	}
	zap.L().Info("session: signed in",
		zap.String("email", s.User.Email),
		zap.String("profile", string(s.User.TypeProfil)),
	)
	return s, nil
}

// Current reads the persisted session. Expiry is not checked.
func (m *Manager) Current(ctx context.Context) (*Session, error) {
	token, ok, err := m.store.Get(ctx, KeyToken)
	if err != nil {
		return nil, eris.Wrap(err, "session: read token")
	}
	if !ok || token == "" {
		return nil, ErrNoSession
	}
	s := &Session{Token: token}

	raw, ok, err := m.store.Get(ctx, KeyUser)
	if err != nil {
		return nil, eris.Wrap(err, "session: read user")
	}
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &s.User); err != nil {
			zap.L().Warn("session: discarding unreadable user record", zap.Error(err))
			s.User = User{}
		}
	}
	return s, nil
}

// Token returns the persisted token, or "" when signed out.
func (m *Manager) Token(ctx context.Context) string {
	s, err := m.Current(ctx)
	if err != nil {
		return ""
	}
	return s.Token
}

// Logout clears both persisted keys.
func (m *Manager) Logout(ctx context.Context) error {
	return eris.Wrap(m.store.Delete(ctx, KeyToken, KeyUser), "session: logout")
}

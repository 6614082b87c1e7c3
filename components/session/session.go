package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/goliatone/go-metrics-admin/components/metrics"
)

var (
	// ErrInvalidCredentials signals a username/password pair outside the
	// accepted demo set. The same error covers unknown users and wrong
	// passwords so the response leaks nothing about which part failed.
	ErrInvalidCredentials = errors.New("session: invalid credentials")

	// ErrMalformedToken signals a token that failed decoding or signature
	// verification. Callers must treat the bearer as unauthenticated.
	ErrMalformedToken = errors.New("session: malformed token")
)

// Credential is one accepted username/password pair and the role it grants.
type Credential struct {
	Password string
	Role     metrics.Role
}

// Options configures the session Manager.
type Options struct {
	// Secret signs session tokens. Required outside tests.
	Secret string
	// TokenTTL bounds session lifetime. Defaults to 12 hours.
	TokenTTL time.Duration
	// Credentials is the accepted set of demo logins. Defaults to the
	// built-in admin/admin and user/user pairs.
	Credentials map[string]Credential
	// Store tracks issued tokens so logout invalidates them server-side.
	Store TokenStore
	Clock func() time.Time
}

// Manager authenticates demo credentials and issues signed session tokens.
type Manager struct {
	opts Options
}

// DefaultCredentials returns the built-in demo logins.
func DefaultCredentials() map[string]Credential {
	return map[string]Credential{
		"admin": {Password: "admin", Role: metrics.RoleAdmin},
		"user":  {Password: "user", Role: metrics.RoleUser},
	}
}

// NewManager builds a Manager with safe defaults.
func NewManager(opts Options) *Manager {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 12 * time.Hour
	}
	if opts.Credentials == nil {
		opts.Credentials = DefaultCredentials()
	}
	if opts.Store == nil {
		opts.Store = NewMemoryTokenStore()
	}
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return time.Now().UTC() }
	}
	return &Manager{opts: opts}
}

// Authenticate resolves a username/password pair to a viewer context.
// Credentials are compared verbatim; there is no lockout or throttling.
func (m *Manager) Authenticate(username, password string) (metrics.ViewerContext, error) {
	cred, ok := m.opts.Credentials[username]
	if !ok || cred.Password != password {
		return metrics.ViewerContext{Role: metrics.RoleNone}, ErrInvalidCredentials
	}
	return metrics.ViewerContext{UserID: username, Role: cred.Role}, nil
}

// Claims is the signed session payload.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Login authenticates and issues a signed token for the viewer.
func (m *Manager) Login(ctx context.Context, username, password string) (string, metrics.ViewerContext, error) {
	viewer, err := m.Authenticate(username, password)
	if err != nil {
		return "", viewer, err
	}
	token, err := m.EncodeToken(viewer)
	if err != nil {
		return "", metrics.ViewerContext{Role: metrics.RoleNone}, err
	}
	return token, viewer, nil
}

// EncodeToken signs a session token for the viewer.
func (m *Manager) EncodeToken(viewer metrics.ViewerContext) (string, error) {
	now := m.opts.Clock()
	jti := uuid.NewString()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   viewer.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.opts.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        jti,
		},
		Role: string(viewer.Role),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.opts.Secret))
	if err != nil {
		return "", fmt.Errorf("session: sign token: %w", err)
	}
	if err := m.opts.Store.Save(jti, viewer.UserID); err != nil {
		return "", fmt.Errorf("session: track token: %w", err)
	}
	return signed, nil
}

// DecodeToken verifies a session token and returns the embedded viewer.
// Any failure yields an unauthenticated viewer; there is no partial trust.
func (m *Manager) DecodeToken(tokenString string) (metrics.ViewerContext, error) {
	anonymous := metrics.ViewerContext{Role: metrics.RoleNone}
	if tokenString == "" {
		return anonymous, ErrMalformedToken
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("session: unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(m.opts.Secret), nil
	})
	if err != nil {
		return anonymous, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return anonymous, ErrMalformedToken
	}
	active, err := m.opts.Store.Active(claims.ID)
	if err != nil {
		return anonymous, fmt.Errorf("session: token lookup: %w", err)
	}
	if !active {
		return anonymous, ErrMalformedToken
	}
	role := metrics.Role(claims.Role)
	switch role {
	case metrics.RoleUser, metrics.RoleAdmin:
	default:
		return anonymous, ErrMalformedToken
	}
	return metrics.ViewerContext{UserID: claims.Subject, Role: role}, nil
}

// Logout invalidates the token server-side. Unknown or malformed tokens
// are a no-op; logout never fails the user out of logging out.
func (m *Manager) Logout(tokenString string) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, &Claims{})
	if err != nil {
		return
	}
	if claims, ok := token.Claims.(*Claims); ok && claims.ID != "" {
		_ = m.opts.Store.Delete(claims.ID)
	}
}

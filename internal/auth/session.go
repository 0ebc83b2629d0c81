package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "poseidon"

var (
	// ErrNoSession is returned when the request carries no session cookie.
	ErrNoSession = errors.New("no session")
	// ErrInvalidSession wraps token parsing and validation failures.
	ErrInvalidSession = errors.New("invalid session")
)

// SessionConfig controls how session tokens are signed and stored.
type SessionConfig struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	Secure     bool
}

// Claims is the content of a verified session token.
type Claims struct {
	Username  string
	Role      string
	ExpiresAt time.Time
}

// Sessions issues and verifies HS256 session tokens carried in a cookie.
type Sessions struct {
	cfg SessionConfig
	now func() time.Time
}

func NewSessions(cfg SessionConfig) *Sessions {
	return &Sessions{cfg: cfg, now: time.Now}
}

func (s *Sessions) CookieName() string {
	return s.cfg.CookieName
}

// Issue signs a token for username valid for the configured TTL.
func (s *Sessions) Issue(username, role string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.cfg.TTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  username,
		"role": role,
		"iss":  issuer,
		"iat":  jwt.NewNumericDate(now),
		"exp":  jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session: %w", err)
	}
	return signed, exp, nil
}

// Parse validates token and returns its claims.
func (s *Sessions) Parse(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNoSession
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidSession
	}

	username, _ := claims["sub"].(string)
	if username == "" {
		return nil, ErrInvalidSession
	}
	role, _ := claims["role"].(string)

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidSession
	}

	return &Claims{Username: username, Role: role, ExpiresAt: exp.Time}, nil
}

// SetCookie issues a token and stores it in the session cookie.
func (s *Sessions) SetCookie(w http.ResponseWriter, username, role string) error {
	token, exp, err := s.Issue(username, role)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		MaxAge:   int(s.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *Sessions) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest verifies the session cookie on r.
func (s *Sessions) FromRequest(r *http.Request) (*Claims, error) {
	c, err := r.Cookie(s.cfg.CookieName)
	if err != nil {
		return nil, ErrNoSession
	}
	return s.Parse(c.Value)
}

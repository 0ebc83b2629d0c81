package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/vbonduro/poseidon/internal/domain"
)

// LoginPath is where anonymous requests for protected pages are sent.
const LoginPath = "/login"

// UserLookup loads the account named by a session.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// Resolver attaches the session's principal to each request. Requests
// without a valid session pass through anonymously. When the session's
// account cannot be loaded the request is handed to failed instead.
type Resolver struct {
	sessions *Sessions
	users    UserLookup
	failed   http.Handler
	logger   zerolog.Logger
}

func NewResolver(sessions *Sessions, users UserLookup, failed http.Handler, logger zerolog.Logger) *Resolver {
	return &Resolver{sessions: sessions, users: users, failed: failed, logger: logger}
}

func (m *Resolver) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.sessions.FromRequest(r)
		if err != nil {
			if errors.Is(err, ErrInvalidSession) {
				m.sessions.ClearCookie(w)
			}
			next.ServeHTTP(w, r)
			return
		}

		// The account is re-read so deletions and role changes apply immediately.
		u, err := m.users.GetByUsername(r.Context(), claims.Username)
		if err != nil {
			m.logger.Error().Err(err).Str("username", claims.Username).Msg("failed to load session user")
			m.failed.ServeHTTP(w, r)
			return
		}
		if u == nil {
			m.sessions.ClearCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		p := &Principal{ID: u.ID, Username: u.Username, Fullname: u.Fullname, Role: u.Role}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

// RequireRole admits principals holding one of roles. Anonymous requests are
// redirected to the login page; other principals get forbidden.
func RequireRole(forbidden http.Handler, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := FromContext(r.Context())
			if !ok {
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			}
			if !p.HasRole(roles...) {
				forbidden.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

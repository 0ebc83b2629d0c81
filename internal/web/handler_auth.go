package web

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/vbonduro/poseidon/internal/metrics"
	"github.com/vbonduro/poseidon/internal/service"
)

const (
	msgBadLogin  = "Invalid username or password."
	msgLoggedOut = "You have been logged out."
	msgThrottled = "Too many login attempts. Please wait and try again."
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, map[string]any{"Title": "Home"}, "base.html", "pages/home.html")
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{"Title": "Login"}
	q := r.URL.Query()
	if q.Has("error") {
		data["Error"] = msgBadLogin
	}
	if q.Has("logout") {
		data["Notice"] = msgLoggedOut
	}
	s.renderPage(w, r, http.StatusOK, data, "base.html", "pages/login.html")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	if !s.limiter.Allow(ip) {
		s.metrics.LoginAttempt(metrics.LoginThrottled)
		zerolog.Ctx(r.Context()).Warn().Str("client_ip", ip).Msg("login rate limit exceeded")
		s.renderPage(w, r, http.StatusTooManyRequests, map[string]any{
			"Title": "Login",
			"Error": msgThrottled,
		}, "base.html", "pages/login.html")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	u, err := s.services.Users.Authenticate(r.Context(), username, password)
	if errors.Is(err, service.ErrBadCredentials) {
		s.metrics.LoginAttempt(metrics.LoginFailure)
		zerolog.Ctx(r.Context()).Info().Str("username", username).Str("client_ip", ip).Msg("login failed")
		http.Redirect(w, r, "/login?error", http.StatusFound)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	if err := s.sessions.SetCookie(w, u.Username, u.Role); err != nil {
		s.serverError(w, r, err)
		return
	}
	s.metrics.LoginAttempt(metrics.LoginSuccess)
	zerolog.Ctx(r.Context()).Info().Str("username", u.Username).Msg("login succeeded")
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.ClearCookie(w)
	http.Redirect(w, r, "/login?logout", http.StatusFound)
}

package web

import (
	"net/http"

	"github.com/JonMunkholm/leads/internal/identity"
	"github.com/JonMunkholm/leads/internal/logging"
)

// sessionResponse is returned by the login and session endpoints. Token is
// set only on login, for clients that send Authorization headers instead
// of cookies.
type sessionResponse struct {
	Session identity.Session `json:"session"`
	Token   string           `json:"token,omitempty"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var cred identity.Credential
	if err := decodeJSON(r, &cred); err != nil {
		s.respondError(w, r, err)
		return
	}

	sess, token, err := s.identity.IssueSession(r.Context(), cred)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	logging.FromContext(r.Context()).Info("session issued",
		"user_id", sess.UserID,
		"demo", sess.Demo,
	)
	writeJSON(w, http.StatusOK, sessionResponse{Session: sess, Token: token})
}

// handleLogout clears the session cookie. Tokens are stateless, so a copied
// bearer token stays valid until it expires.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := identity.SessionFromContext(r.Context())
	if !ok {
		s.respondError(w, r, &identity.IdentityError{Op: "session", Err: identity.ErrNoSession})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: sess})
}

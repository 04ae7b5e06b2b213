package web

import (
	"net/http"

	"github.com/bnema/msgdash/internal/domain"
	"github.com/google/uuid"
)

const sessionCookieName = "msgdash_session"

// sessionID returns the session named by the request cookie, if it is valid.
func sessionID(r *http.Request) (domain.SessionID, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", false
	}

	parsed, err := uuid.Parse(cookie.Value)
	if err != nil {
		return "", false
	}

	return domain.SessionID(parsed.String()), true
}

// ensureSession reuses the request's session or starts a new one.
func (s *Server) ensureSession(w http.ResponseWriter, r *http.Request) domain.SessionID {
	if id, ok := sessionID(r); ok {
		return id
	}

	id := domain.SessionID(uuid.NewString())
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    string(id),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (s *Server) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

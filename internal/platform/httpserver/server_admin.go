package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	sessionerrors "ovation/contexts/identity-access/admin-session-service/domain/errors"
)

const sessionCookieName = "admin_session"

type adminLoginRequest struct {
	Password string `json:"password"`
}

type adminLoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

type adminErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAdminError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	result, err := s.sessions.Sessions.Login(r.Context(), req.Password)
	if err != nil {
		if errors.Is(err, sessionerrors.ErrInvalidCredentials) {
			writeAdminError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
			return
		}
		writeAdminError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, adminLoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	if token := resolveAdminToken(r); token != "" {
		if err := s.sessions.Sessions.Logout(r.Context(), token); err != nil {
			writeAdminError(w, http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// requireAdmin gates a route behind a live admin session. It writes the 401
// itself; callers just return on false.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	token := resolveAdminToken(r)
	if token == "" {
		writeAdminError(w, http.StatusUnauthorized, "missing_session", "admin session required")
		return false
	}
	if err := s.sessions.Sessions.Validate(r.Context(), token); err != nil {
		if errors.Is(err, sessionerrors.ErrInvalidSession) {
			writeAdminError(w, http.StatusUnauthorized, "invalid_session", "admin session is invalid or expired")
			return false
		}
		writeAdminError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return false
	}
	return true
}

func resolveAdminToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if raw, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(raw)
		}
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func writeAdminError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, adminErrorResponse{
		Code:    code,
		Message: message,
	})
}

package controller

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-jose/go-jose/v4/json"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const sessionCookieName = "adm_session"

// ValidateToken checks if the Authorization header contains a valid AdminToken
func (c *Controller) ValidateToken(r *http.Request) bool {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		token := strings.TrimPrefix(authHeader, "Bearer ")
		return token == c.AdminToken
	}
	return false
}

// ValidateSessionCookie checks if the session cookie is present and valid
func (c *Controller) ValidateSessionCookie(r *http.Request) bool {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return false
	}
	tok, err := jwt.Parse(cookie.Value, func(t *jwt.Token) (any, error) { return c.JWTSecret, nil })
	return err == nil && tok.Valid
}

// RequireAuth middleware
func (c *Controller) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c.ValidateToken(r) || c.ValidateSessionCookie(r) { // X-Session used by CSR fetches
			next.ServeHTTP(w, r)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
	})
}

// IssueSession issues a session cookie
func (c *Controller) IssueSession(w http.ResponseWriter, username string) {
	ttl := 8 * time.Hour
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  username,
		"role": "admin",
		"exp":  time.Now().Add(ttl).Unix(),
		"iat":  time.Now().Unix(),
	})
	ss, _ := token.SignedString(c.JWTSecret)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    ss,
		Path:     "/",
		HttpOnly: true,
		Secure:   os.Getenv("ENVIRONMENT") == "production",
		SameSite: http.SameSiteStrictMode,
		// Persist across admin restarts:
		MaxAge: int(ttl.Seconds()),
	})
}

// currentUser returns the username associated with the request when available.
// API tokens are treated as admin-equivalent and return "api-token".
func (c *Controller) currentUser(r *http.Request) string {
	// Check API token first (admin-equivalent)
	if c.ValidateToken(r) {
		return "api-token"
	}
	// Check session cookie
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if tok, err := jwt.Parse(cookie.Value, func(t *jwt.Token) (any, error) { return c.JWTSecret, nil }); err == nil && tok.Valid {
			if claims, ok := tok.Claims.(jwt.MapClaims); ok {
				if sub, _ := claims["sub"].(string); sub != "" {
					return sub
				}
			}
		}
	}
	return "unknown"
}

// HandleAdminLogin handles admin login
func (c *Controller) HandleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	u, ok := c.Users[in.Username]
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword(u.Hash, []byte(in.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	c.IssueSession(w, in.Username)
	writeJSON(w, http.StatusOK, map[string]string{"ok": "1"})
}

// HandleAdminLogout handles admin logout
func (c *Controller) HandleAdminLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
	w.WriteHeader(http.StatusNoContent)
}

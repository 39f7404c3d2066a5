package handler

import (
	"errors"
	"net/http"

	"github.com/coursedesk/coursedesk/internal/server/middleware"
	"github.com/coursedesk/coursedesk/internal/service"
)

// AuthHandler serves the admin authentication routes: login, verify,
// logout, and one-time setup.
type AuthHandler struct {
	authSvc *service.AuthService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates an admin and returns a session token.
// POST /api/v1/admin-auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	admin, token, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			// One message for unknown email, disabled account, and wrong
			// password — responses must not reveal which accounts exist.
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "Authentication error: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"token":      token,
		"token_type": "bearer",
		"expires_in": int(h.authSvc.TokenTTL().Seconds()),
		"admin":      adminSummary(admin),
	})
}

// Verify is a standalone check of the caller's token. The route runs
// behind the Authenticate middleware, which performs the full gate check
// and stashes the admin; this handler just reports the result.
// GET /api/v1/admin-auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetAdmin(r.Context())
	if admin == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"admin":   adminSummary(admin),
	})
}

// Logout acknowledges a logout. Tokens are stateless, so invalidation is
// the caller's responsibility: discard the token.
// POST /api/v1/admin-auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logged out",
	})
}

type setupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Setup bootstraps the first admin account. Succeeds exactly once: any
// existing admin makes this a conflict.
// POST /api/v1/admin-auth/setup
func (h *AuthHandler) Setup(w http.ResponseWriter, r *http.Request) {
	var req setupRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username, email, and password are required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	admin, token, err := h.authSvc.Setup(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAdminExists) {
			writeError(w, http.StatusConflict, "Setup has already been completed")
			return
		}
		writeError(w, http.StatusInternalServerError, "Setup failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":    true,
		"token":      token,
		"token_type": "bearer",
		"expires_in": int(h.authSvc.TokenTTL().Seconds()),
		"admin":      adminSummary(admin),
	})
}

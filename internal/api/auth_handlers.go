package api

import (
	"net/http"
	"time"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/domain/user"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	users      *user.Service
	jwtService *auth.JWTService
}

// NewAuthHandlers creates a new AuthHandlers instance
func NewAuthHandlers(users *user.Service, jwtService *auth.JWTService) *AuthHandlers {
	return &AuthHandlers{
		users:      users,
		jwtService: jwtService,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	User    *user.User `json:"user,omitempty"`
	Message string     `json:"message,omitempty"`
}

// Register handles user registration. The account cannot log in until the
// address is verified.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	newUser, err := h.users.Register(r.Context(), user.Registration{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, AuthResponse{
		User:    newUser,
		Message: "Registration successful. Please check your email to verify your account.",
	})
}

func (h *AuthHandlers) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	if _, err := h.users.VerifyEmail(r.Context(), r.PathValue("token")); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, AuthResponse{Message: "Email verified. You can now log in."})
}

type emailRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandlers) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.users.ResendVerification(r.Context(), req.Email); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, AuthResponse{Message: "A new verification email has been sent."})
}

// Login handles user login
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.setSessionCookie(w, r, u); err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, AuthResponse{User: u, Message: "Login successful"})
}

// Logout handles user logout
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	respondJSON(w, http.StatusOK, AuthResponse{Message: "Logout successful"})
}

// Me returns the current authenticated user's information
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Get(r.Context(), getUserID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

type profileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Password  *string `json:"password"`
}

func (h *AuthHandlers) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	u, err := h.users.UpdateProfile(r.Context(), getUserID(r), user.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

// ForgotPassword always reports success so addresses cannot be probed.
func (h *AuthHandlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.users.RequestPasswordReset(r.Context(), req.Email); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, AuthResponse{
		Message: "If an account exists for that address, a reset link has been sent.",
	})
}

type resetRequest struct {
	Password string `json:"password"`
}

func (h *AuthHandlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.users.ResetPassword(r.Context(), r.PathValue("token"), req.Password); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, AuthResponse{Message: "Password updated. You can now log in."})
}

type sessionResponse struct {
	LoggedIn  bool   `json:"logged_in"`
	UserID    string `json:"user_id,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	Role      string `json:"role,omitempty"`
}

// CheckSession reports the current session without requiring one.
func (h *AuthHandlers) CheckSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusOK, sessionResponse{})
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse{
		LoggedIn:  true,
		UserID:    claims.UserID,
		Email:     claims.Email,
		FirstName: claims.FirstName,
		Role:      claims.Role,
	})
}

// Helper methods

func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, u *user.User) error {
	token, expiry, err := h.jwtService.GenerateSessionToken(auth.SessionUser{
		UserID:    u.UserID,
		Email:     u.Email,
		FirstName: u.FirstName,
		Role:      string(u.Role),
	})
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiry,
		MaxAge:   int(time.Until(expiry).Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

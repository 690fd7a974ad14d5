package api

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-backend/services"
)

type authHandler struct {
	responder     Responder
	logger        zerolog.Logger
	accounts      *services.AccountService
	resetLinkBase string
	apiPrefix     string
}

func newAuthHandler(accounts *services.AccountService, resetLinkBase, apiPrefix string) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder:     NewResponder(logger),
		logger:        logger,
		accounts:      accounts,
		resetLinkBase: resetLinkBase,
		apiPrefix:     apiPrefix,
	}
}

// register creates a user account
// @Summary Register
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "Account data"
// @Success 201 {object} MessageResponse
// @Failure 400 {object} ErrorResponse "Missing required fields"
// @Failure 409 {object} ErrorResponse "Email already exists"
// @Router /auth/register [post]
func (h authHandler) register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in services.RegisterInput
		if err := decodeJSON(w, r, "register request", &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if _, err := h.accounts.Register(r.Context(), in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteMessage(w, http.StatusCreated, "User registered successfully")
	}
}

// login exchanges credentials for a session token
// @Summary Login
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} loginResponse
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(w, r, "login request", &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		token, err := h.accounts.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, loginResponse{AccessToken: token})
	}
}

func (h authHandler) forgotPassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req forgotPasswordRequest
		if err := decodeJSON(w, r, "forgot password request", &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.accounts.ForgotPassword(r.Context(), req.Email, h.linkBase(r)); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteMessage(w, http.StatusOK, "Password reset link sent to your email")
	}
}

func (h authHandler) resetPassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetPasswordRequest
		if err := decodeJSON(w, r, "reset password request", &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.accounts.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteMessage(w, http.StatusOK, "Password reset successfully")
	}
}

// linkBase is the configured reset link base, or this server's auth routes.
func (h authHandler) linkBase(r *http.Request) string {
	if h.resetLinkBase != "" {
		return h.resetLinkBase
	}
	base := services.RequestBaseURL(r)
	if prefix := strings.Trim(h.apiPrefix, "/"); prefix != "" {
		base += prefix + "/"
	}
	return base + "auth/"
}

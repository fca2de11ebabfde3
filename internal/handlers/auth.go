package handlers

import (
	"net/http"
	"time"

	"github.com/nikhil/taskflow/internal/logger"
	"github.com/nikhil/taskflow/internal/models"
	"github.com/nikhil/taskflow/internal/service/auth"
)

type AuthHandler struct {
	Service *auth.AuthService
	Log     *logger.Logger
	Timeout time.Duration
}

// NewAuthHandler creates a new instance of AuthHandler
func NewAuthHandler(service *auth.AuthService, log *logger.Logger, timeout time.Duration) *AuthHandler {
	return &AuthHandler{Service: service, Log: log, Timeout: timeout}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Message string      `json:"message,omitempty"`
	Token   string      `json:"token"`
	User    models.User `json:"user_details"`
}

// Signup handles the user registration request
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	var req signupRequest
	if err := decode(r, &req); err != nil {
		respondWithError(w, log, err)
		return
	}

	ctx, cancel := requestContext(r, h.Timeout)
	defer cancel()

	user, token, err := h.Service.Signup(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		respondWithError(w, log, err)
		return
	}

	respondWithJSON(w, log, http.StatusCreated, authResponse{Message: "User created successfully", Token: token, User: user})
}

// Login handles the user authentication request
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	var req loginRequest
	if err := decode(r, &req); err != nil {
		respondWithError(w, log, err)
		return
	}

	ctx, cancel := requestContext(r, h.Timeout)
	defer cancel()

	token, user, err := h.Service.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondWithError(w, log, err)
		return
	}

	respondWithJSON(w, log, http.StatusOK, authResponse{Token: token, User: user})
}

// Profile returns the authenticated user.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	log := h.Log.WithContext(r.Context())

	id, err := currentUser(r)
	if err != nil {
		respondWithError(w, log, err)
		return
	}

	ctx, cancel := requestContext(r, h.Timeout)
	defer cancel()

	user, err := h.Service.Profile(ctx, id.UserID)
	if err != nil {
		respondWithError(w, log, err)
		return
	}
	respondWithJSON(w, log, http.StatusOK, map[string]interface{}{"user_details": user})
}

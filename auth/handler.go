package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type authResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
	Role    string `json:"role,omitempty"`
	ID      string `json:"id,omitempty"`
}

// Handler serves signup and login over HTTP.
type Handler struct {
	service *Service
}

// NewHandler returns the HTTP handler for account endpoints.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Signup handles POST /api/v1/user/signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "unsupported method "+r.Method, http.StatusBadRequest)
		return
	}

	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, authResponse{Message: "invalid request body"})
		return
	}

	user, token, err := h.service.Signup(creds.Username, creds.Password, creds.Role)
	switch {
	case errors.Is(err, ErrUserExists):
		writeJSON(w, http.StatusBadRequest, authResponse{Message: "User already exists"})
	case errors.Is(err, ErrInvalidCredentials):
		writeJSON(w, http.StatusBadRequest, authResponse{Message: "Username and password required"})
	case err != nil:
		log.Printf("[auth] signup %s: %v", creds.Username, err)
		writeJSON(w, http.StatusInternalServerError, authResponse{Message: err.Error()})
	default:
		writeJSON(w, http.StatusCreated, authResponse{
			Success: true,
			Message: "User created successfully",
			Token:   token,
			Role:    user.Role,
			ID:      user.ID,
		})
	}
}

// Login handles POST /api/v1/user/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "unsupported method "+r.Method, http.StatusBadRequest)
		return
	}

	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, authResponse{Message: "invalid request body"})
		return
	}

	user, token, err := h.service.Login(creds.Username, creds.Password)
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, authResponse{Message: "User not found"})
	case errors.Is(err, ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, authResponse{Message: "Invalid credentials"})
	case err != nil:
		log.Printf("[auth] login %s: %v", creds.Username, err)
		writeJSON(w, http.StatusInternalServerError, authResponse{Message: err.Error()})
	default:
		writeJSON(w, http.StatusOK, authResponse{
			Success: true,
			Message: "User logged in successfully",
			Token:   token,
			Role:    user.Role,
			ID:      user.ID,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[auth] write response: %v", err)
	}
}

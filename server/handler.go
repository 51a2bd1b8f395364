package server

import (
	"net/http"
	"strings"

	"resq.live/auth"
)

// ConnectHandler authenticates and upgrades socket connections. A missing
// or invalid token follows the anonymous policy: rejected with 401 when
// anonymous sockets are disallowed, otherwise the connection proceeds and
// identifies itself via the join event.
type ConnectHandler struct {
	relay          *Relay
	auth           *auth.Service
	allowAnonymous bool
}

// NewConnectHandler returns the websocket entry point.
func NewConnectHandler(relay *Relay, authService *auth.Service, allowAnonymous bool) *ConnectHandler {
	return &ConnectHandler{
		relay:          relay,
		auth:           authService,
		allowAnonymous: allowAnonymous,
	}
}

func (h *ConnectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !IsWebSocket(r) {
		http.Error(w, "websocket required", http.StatusBadRequest)
		return
	}

	if _, err := h.auth.Verify(BearerToken(r)); err != nil && !h.allowAnonymous {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ServeSocket(w, r, h.relay, NewSession())
}

// BearerToken pulls a token from the Authorization header or query string.
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// HealthHandler reports liveness.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// SetHeaders sets permissive CORS headers on a response.
func SetHeaders(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

// WithCors wraps a handler with CORS headers and OPTIONS short-circuit.
func WithCors(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		SetHeaders(w, r)

		// if options return immediately
		if r.Method == "OPTIONS" {
			return
		}

		h.ServeHTTP(w, r)
	})
}

package push

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"resq.live/auth"
	"resq.live/data"
)

// Handler manages push subscriptions over HTTP. Subscribers must present
// a valid auth token; the subscription is keyed by the token's identity.
type Handler struct {
	manager *Manager
	auth    *auth.Service
}

// NewHandler returns the subscription endpoint handler.
func NewHandler(manager *Manager, authService *auth.Service) *Handler {
	return &Handler{manager: manager, auth: authService}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.manager.Enabled() {
		http.Error(w, "push not configured", http.StatusServiceUnavailable)
		return
	}

	// the public key is not a secret, clients need it to subscribe
	if r.Method == http.MethodGet {
		writeJSON(w, map[string]interface{}{"key": h.manager.VAPIDPublicKey()})
		return
	}

	claims, err := h.auth.Verify(bearerToken(r))
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodPost:
		var sub data.Subscription
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil || sub.Endpoint == "" {
			http.Error(w, "invalid subscription", http.StatusBadRequest)
			return
		}
		if err := h.manager.Subscribe(claims.Identity, &sub); err != nil {
			log.Printf("[push] subscribe %s: %v", claims.Identity, err)
			http.Error(w, "could not save subscription", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]interface{}{"success": true})
	case http.MethodDelete:
		if err := h.manager.Unsubscribe(claims.Identity); err != nil {
			log.Printf("[push] unsubscribe %s: %v", claims.Identity, err)
			http.Error(w, "could not remove subscription", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]interface{}{"success": true})
	default:
		http.Error(w, "unsupported method "+r.Method, http.StatusBadRequest)
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[push] write response: %v", err)
	}
}

// Package server implements the session gateway for the relay. It owns
// the per-connection state machine (join, update, disconnect) and drives
// the presence store, the geospatial index and the proximity engine on
// every inbound event, fanning results back out over the connections.
//
// No event, malformed or otherwise, ever closes a connection or crashes
// the process from here: failures degrade to "this one update had no
// effect" and surface only in logs.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/go-playground/validator/v10"

	"resq.live/auth"
	"resq.live/presence"
	"resq.live/push"
	"resq.live/spatial"
)

// Relay is the session gateway.
type Relay struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	presence *presence.Store
	geo      *spatial.Index
	engine   *spatial.Engine
	push     *push.Manager

	validate *validator.Validate
}

// NewRelay wires a gateway to fresh stores. The push manager is optional;
// pass nil to disable the secondary alert channel.
func NewRelay(radiusKm float64, pm *push.Manager) *Relay {
	geo := spatial.NewIndex()
	return &Relay{
		sessions: make(map[string]*Session),
		presence: presence.New(),
		geo:      geo,
		engine:   spatial.NewEngine(geo, radiusKm),
		push:     pm,
		validate: validator.New(),
	}
}

// Presence exposes the presence store.
func (r *Relay) Presence() *presence.Store {
	return r.presence
}

// Geo exposes the geospatial index.
func (r *Relay) Geo() *spatial.Index {
	return r.geo
}

// Connect registers a new, not yet identified session.
func (r *Relay) Connect(s *Session) {
	r.mu.Lock()
	r.sessions[s.HandleID()] = s
	r.mu.Unlock()
}

// Disconnect tears a session down: the owning identity (if any) is removed
// from the presence store and the geospatial index. Cleanup keys off the
// connection handle, so a stale socket cannot evict a newer join by the
// same identity.
func (r *Relay) Disconnect(s *Session) {
	r.mu.Lock()
	delete(r.sessions, s.HandleID())
	r.mu.Unlock()

	s.Close()

	identity, ok := r.presence.ReverseLookup(s.HandleID())
	if !ok {
		// never joined, or already cleaned up
		return
	}
	r.presence.Remove(identity)
	r.geo.Remove(identity)
	log.Printf("[relay] user disconnected: %s", identity)
}

// HandleEvent processes one inbound frame from a connection. Malformed
// frames are logged and dropped; the connection stays open.
func (r *Relay) HandleEvent(s *Session, raw []byte) {
	var e Envelope
	if err := json.Unmarshal(raw, &e); err != nil {
		log.Printf("[relay] bad frame from %s: %v", s.HandleID(), err)
		return
	}

	switch e.Event {
	case EventJoin:
		r.handleJoin(s, e.Data)
	case EventUpdateLocation:
		r.handleUpdateLocation(e.Data)
	case EventJourneyEnd:
		// the client ends a trip without closing the socket
		r.handleJourneyEnd(s)
	default:
		log.Printf("[relay] unknown event %q from %s", e.Event, s.HandleID())
	}
}

// handleJoin moves a session from Unidentified to Identified. Joins are
// idempotent; a re-join from a new connection overwrites the old mapping
// (latest join wins). Police with a location enter the geospatial index;
// police without one are reachable for broadcasts but excluded from
// proximity queries until a location arrives. Drivers are never indexed:
// they trigger proximity checks, they are not targets of them.
func (r *Relay) handleJoin(s *Session, data json.RawMessage) {
	var p JoinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Printf("[relay] join: bad payload: %v", err)
		return
	}
	if err := r.validate.Struct(&p); err != nil {
		log.Printf("[relay] join: invalid payload: %v", err)
		return
	}

	role := auth.NormalizeRole(p.Role)
	s.Identify(p.UserID, role)
	r.presence.Register(p.UserID, s)
	log.Printf("[relay] user joined: %s with role %s", p.UserID, role)

	if role != auth.RolePolice || p.Location == nil {
		return
	}
	if err := r.geo.Upsert(p.UserID, *p.Location.Lat, *p.Location.Lng); err != nil {
		log.Printf("[relay] join %s: %v", p.UserID, err)
	}
}

// handleUpdateLocation broadcasts an ambulance position to every watcher,
// then alerts the watchers within the proximity radius individually. A
// watcher that disappears between the radius query and the handle lookup
// is silently skipped, never retried.
func (r *Relay) handleUpdateLocation(data json.RawMessage) {
	var p UpdateLocationPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Printf("[relay] updateLocation: bad payload: %v", err)
		return
	}
	if err := r.validate.Struct(&p); err != nil {
		log.Printf("[relay] updateLocation: invalid payload: %v", err)
		return
	}

	lat, lng := *p.Lat, *p.Lng

	r.BroadcastWatchers(NewEnvelope(EventPositionUpdate, PositionUpdate{
		AmbulanceID: p.AmbulanceID,
		Lat:         lat,
		Lng:         lng,
	}))

	nearby := r.engine.Evaluate(p.AmbulanceID, lat, lng)
	if len(nearby) == 0 {
		return
	}

	message := fmt.Sprintf("Ambulance %s is approaching your location!", p.AmbulanceID)
	alert := NewEnvelope(EventProximityAlert, ProximityAlert{
		AmbulanceID: p.AmbulanceID,
		Message:     message,
	})

	for _, identity := range nearby {
		h, ok := r.presence.Lookup(identity)
		if ok {
			if watcher, ok := h.(*Session); ok {
				watcher.Send(alert)
			}
		}
		if r.push != nil {
			r.push.Alert(identity, "Ambulance approaching", message)
		}
	}
	log.Printf("[relay] alerted %d watchers near ambulance %s", len(nearby), p.AmbulanceID)
}

// handleJourneyEnd clears the session's identity from both stores, like a
// disconnect, but leaves the socket open for the next journey.
func (r *Relay) handleJourneyEnd(s *Session) {
	identity, ok := r.presence.ReverseLookup(s.HandleID())
	if !ok {
		return
	}
	r.presence.Remove(identity)
	r.geo.Remove(identity)
	log.Printf("[relay] journey ended for %s", identity)
}

// BroadcastWatchers fans an envelope out to every identified police
// session. Returns how many sessions accepted the message.
func (r *Relay) BroadcastWatchers(e *Envelope) int {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	var sent int
	for _, s := range sessions {
		if _, ok := s.Identity(); !ok {
			continue
		}
		if s.Role() != auth.RolePolice {
			continue
		}
		if s.Send(e) {
			sent++
		}
	}
	return sent
}

package server

import "encoding/json"

// Wire event names. Inbound names match what the mobile and web clients
// already send; outbound names are what they already listen for.
const (
	EventJoin           = "join"
	EventUpdateLocation = "updateLocation"
	EventJourneyEnd     = "journey_end"

	EventPositionUpdate = "ambulancePositionUpdate"
	EventProximityAlert = "ambulanceProximityAlert"
)

// Envelope frames every message on the socket.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope wraps a payload for sending.
func NewEnvelope(event string, v interface{}) *Envelope {
	b, _ := json.Marshal(v)
	return &Envelope{Event: event, Data: b}
}

// JoinPayload identifies a connection and, for police, an optional
// starting location.
type JoinPayload struct {
	UserID   string  `json:"userId" validate:"required"`
	Role     string  `json:"role" validate:"required,oneof=driver police watcher"`
	Location *LatLng `json:"location,omitempty"`
}

// LatLng uses pointer fields so 0 decodes as a present, valid coordinate
// rather than a missing one. Equator and prime meridian are real places.
type LatLng struct {
	Lat *float64 `json:"lat" validate:"required,latitude"`
	Lng *float64 `json:"lng" validate:"required,longitude"`
}

// UpdateLocationPayload is an ambulance position report.
type UpdateLocationPayload struct {
	AmbulanceID string   `json:"ambulanceId" validate:"required"`
	Lat         *float64 `json:"lat" validate:"required,latitude"`
	Lng         *float64 `json:"lng" validate:"required,longitude"`
}

// PositionUpdate goes to every identified police watcher.
type PositionUpdate struct {
	AmbulanceID string  `json:"ambulanceId"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

// ProximityAlert goes to a single watcher within the alert radius.
type ProximityAlert struct {
	AmbulanceID string `json:"ambulanceId"`
	Message     string `json:"message"`
}

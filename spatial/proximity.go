package spatial

// DefaultAlertRadiusKm is the proximity alert radius: a watcher is alerted
// when an ambulance comes within 1 kilometer of their last known position.
const DefaultAlertRadiusKm = 1.0

// Engine decides which watchers get alerted for a vehicle position. It is
// a pure read over the index; the caller turns results into messages.
type Engine struct {
	index    *Index
	radiusKm float64
}

// NewEngine wires an engine to an index. A non-positive radius falls back
// to the default.
func NewEngine(index *Index, radiusKm float64) *Engine {
	if radiusKm <= 0 {
		radiusKm = DefaultAlertRadiusKm
	}
	return &Engine{index: index, radiusKm: radiusKm}
}

// Evaluate returns the watcher identities within the alert radius of the
// vehicle's reported position. An empty result means nobody is nearby.
// The vehicle's own identity is excluded even if it is somehow indexed.
func (e *Engine) Evaluate(vehicleID string, lat, lng float64) []string {
	return e.index.QueryRadius(lat, lng, e.radiusKm, vehicleID)
}

// RadiusKm returns the configured alert radius.
func (e *Engine) RadiusKm() float64 {
	return e.radiusKm
}

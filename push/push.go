// Package push delivers proximity alerts over web push as a secondary,
// best-effort channel. It stays disabled unless VAPID keys are configured.
package push

import (
	"encoding/json"
	"log"

	webpush "github.com/SherClockHolmes/webpush-go"

	"resq.live/data"
)

// Manager sends web push notifications to subscribed watchers.
type Manager struct {
	vapidPublic  string
	vapidPrivate string
	subject      string
}

// NewManager loads stored subscriptions and returns a manager. With empty
// VAPID keys the manager is inert: Alert becomes a no-op.
func NewManager(vapidPublic, vapidPrivate, subject string) *Manager {
	m := &Manager{
		vapidPublic:  vapidPublic,
		vapidPrivate: vapidPrivate,
		subject:      subject,
	}
	if !m.Enabled() {
		log.Printf("[push] VAPID keys not configured, push disabled")
		return m
	}
	if err := data.Subscriptions().Load(); err != nil {
		log.Printf("[push] load subscriptions: %v", err)
	}
	log.Printf("[push] web push enabled, %d subscriptions loaded", data.Subscriptions().Count())
	return m
}

// Enabled reports whether web push can be used.
func (m *Manager) Enabled() bool {
	return m != nil && m.vapidPublic != "" && m.vapidPrivate != ""
}

// VAPIDPublicKey returns the public key clients need to subscribe.
func (m *Manager) VAPIDPublicKey() string {
	return m.vapidPublic
}

// Subscribe stores a watcher's browser subscription.
func (m *Manager) Subscribe(identity string, sub *data.Subscription) error {
	data.Subscriptions().Set(identity, sub)
	return data.Subscriptions().Save()
}

// Unsubscribe drops a watcher's subscription.
func (m *Manager) Unsubscribe(identity string) error {
	data.Subscriptions().Delete(identity)
	return data.Subscriptions().Save()
}

// Alert pushes a notification to the identity's browser, if subscribed.
// Delivery is fire and forget: failures are logged, never propagated.
func (m *Manager) Alert(identity, title, body string) {
	if !m.Enabled() {
		return
	}
	sub, ok := data.Subscriptions().Get(identity)
	if !ok {
		return
	}
	go m.send(identity, sub, title, body)
}

func (m *Manager) send(identity string, sub *data.Subscription, title, body string) {
	payload, _ := json.Marshal(map[string]string{"title": title, "body": body})

	resp, err := webpush.SendNotification(payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}, &webpush.Options{
		VAPIDPublicKey:  m.vapidPublic,
		VAPIDPrivateKey: m.vapidPrivate,
		Subscriber:      m.subject,
		TTL:             60, // alerts are time-sensitive
	})
	if err != nil {
		log.Printf("[push] send to %s: %v", identity, err)
		return
	}
	defer resp.Body.Close()

	// endpoint gone, drop the subscription
	if resp.StatusCode == 404 || resp.StatusCode == 410 {
		data.Subscriptions().Delete(identity)
		if err := data.Subscriptions().Save(); err != nil {
			log.Printf("[push] save subscriptions: %v", err)
		}
	}
}

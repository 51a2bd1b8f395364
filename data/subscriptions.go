package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const subscriptionsFile = "push_subscriptions.json"

// Subscription is a browser push subscription for one identity.
type Subscription struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// SubscriptionsFile holds identity -> subscription, persisted as JSON.
type SubscriptionsFile struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscription
}

// Get returns the subscription for an identity.
func (f *SubscriptionsFile) Get(identity string) (*Subscription, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	sub, ok := f.subscribers[identity]
	return sub, ok
}

// Set stores a subscription for an identity, replacing any previous one.
func (f *SubscriptionsFile) Set(identity string, sub *Subscription) {
	f.mu.Lock()
	f.subscribers[identity] = sub
	f.mu.Unlock()
}

// Delete removes an identity's subscription. No-op if absent.
func (f *SubscriptionsFile) Delete(identity string) {
	f.mu.Lock()
	delete(f.subscribers, identity)
	f.mu.Unlock()
}

// Count returns the number of stored subscriptions.
func (f *SubscriptionsFile) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers)
}

// Load reads subscriptions from disk. A missing file is not an error.
func (f *SubscriptionsFile) Load() error {
	b, err := os.ReadFile(filepath.Join(DataDir(), subscriptionsFile))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read subscriptions: %w", err)
	}

	subscribers := make(map[string]*Subscription)
	if err := json.Unmarshal(b, &subscribers); err != nil {
		return fmt.Errorf("parse subscriptions: %w", err)
	}

	f.mu.Lock()
	f.subscribers = subscribers
	f.mu.Unlock()
	return nil
}

// Save writes subscriptions to disk.
func (f *SubscriptionsFile) Save() error {
	f.mu.RLock()
	b, err := json.MarshalIndent(f.subscribers, "", "  ")
	f.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal subscriptions: %w", err)
	}

	if err := os.WriteFile(filepath.Join(DataDir(), subscriptionsFile), b, 0644); err != nil {
		return fmt.Errorf("write subscriptions: %w", err)
	}
	return nil
}
